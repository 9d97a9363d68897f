package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/begonlabs/poligonos/internal/verify"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verifica los datos de contacto de los negocios descubiertos",
		Long: `Recorre los archivos negocios_*.json pendientes del directorio de datos,
visita el sitio web de cada negocio con un pool de navegadores y escribe un
archivo email_*.json con los emails y teléfonos verificados.`,

		RunE: runVerifyCommand,
	}
	cmd.Flags().String("file", "", "procesar un único archivo negocios_*.json")
	return cmd
}

func runVerifyCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	cfg, err := verify.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("cargar configuración de verificación: %w", err)
	}

	engine := verify.NewEngine(
		cfg,
		appInstance.Storage(),
		appInstance.Database(),
		appInstance.Publisher(),
		appInstance.Progress(),
		appInstance.Logger(),
	)

	if file, _ := cmd.Flags().GetString("file"); file != "" {
		summary, err := engine.ProcessFile(cmd.Context(), file)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("procesar %s: %w", file, err)
		}
		appInstance.Logger().Info("archivo procesado", zap.String("zona", summary.Zona))
		return nil
	}

	summaries, err := engine.ProcessAll(cmd.Context())
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("procesar archivos pendientes: %w", err)
	}
	appInstance.Logger().Info("verificación terminada", zap.Int("archivos", len(summaries)))
	return nil
}
