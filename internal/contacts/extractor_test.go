package contacts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFindsEmailsAndPhones(t *testing.T) {
	content := `<html><body>
	<p>Escríbenos a VENTAS@Acme.es o llama al 612345678.</p>
	<a href="mailto:contacto@acme.es">contacto@acme.es</a>
	<p>Fijo: 0034 912345678</p>
	</body></html>`

	got := Extract(content)
	require.Equal(t, []string{"ventas@acme.es", "contacto@acme.es"}, got.Emails)
	require.Equal(t, []string{"+34612345678", "+34912345678"}, got.Phones)
}

func TestExtractFiltersNoise(t *testing.T) {
	content := `<img src="logo@2x.png">
	<script src="https://browser.sentry-cdn.com/bundle.js"></script>
	o408587@ingest.sentry.io
	noreply@acme.es`

	got := Extract(content)
	require.Empty(t, got.Emails)
	require.Empty(t, got.Phones)
}

func TestExtractDeduplicatesPreservingOrder(t *testing.T) {
	content := `ventas@acme.es ... ventas@acme.es ... info@acme.es
	612345678 y otra vez 0034612345678`

	got := Extract(content)
	require.Equal(t, []string{"ventas@acme.es", "info@acme.es"}, got.Emails)
	require.Equal(t, []string{"+34612345678"}, got.Phones)
}

func TestExtractEmptyContent(t *testing.T) {
	got := Extract("")
	require.Empty(t, got.Emails)
	require.Empty(t, got.Phones)
}
