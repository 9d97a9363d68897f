package places

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/begonlabs/poligonos/internal/directorio"
	"github.com/begonlabs/poligonos/internal/storage"
)

func TestScanZoneWritesSentinelAndBusinesses(t *testing.T) {
	dir := t.TempDir()
	nearby := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","results":[{"place_id":"a","name":"Taller Paco","vicinity":"Calle Real 1","rating":4.5,"types":["car_repair","establishment"]}]}`)
	}
	details := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","result":{"formatted_phone_number":"612 345 678","website":"https://tallerpaco.es"}}`)
	}
	client := newTestClient(t, nearby, details)
	archive := storage.NewMemoryProvider()

	scanner, err := NewScanner(client, ScannerConfig{DataDir: dir}, archive, nil, nil)
	require.NoError(t, err)

	count, err := scanner.ScanZone(context.Background(), Zone{Nombre: "Los Olivos", Lat: 40.3, Lng: -3.8})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	path := filepath.Join(dir, "negocios_los_olivos.json")
	records, err := directorio.LoadOutput(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.True(t, records[0].IsSentinel())
	require.Equal(t, "Los Olivos", records[0].ReferenciaPoligono)
	require.Equal(t, "40.3,-3.8", records[0].CoordenadasPoligono)

	biz := records[1]
	require.Equal(t, "Taller Paco", biz.Nombre)
	require.Equal(t, "Calle Real 1", biz.Direccion)
	require.Equal(t, "https://www.google.com/maps/place/?q=place_id:a", biz.LinkGoogleMaps)
	require.NotNil(t, biz.Valoracion)
	require.InDelta(t, 4.5, *biz.Valoracion, 0.001)
	require.Equal(t, "car_repair, establishment", biz.Categorias)
	require.Equal(t, "612 345 678", biz.Telefono)
	require.Equal(t, "https://tallerpaco.es", biz.SitioWeb)

	require.Equal(t, 1, archive.Len())
	_, ok := archive.Object("discovery/negocios_los_olivos.json")
	require.True(t, ok)
}

func TestScanAllRecordsFailuresAndWritesSummary(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	nearby := func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"status":"OK","results":[{"place_id":"a","name":"Uno"}]}`)
			return
		}
		fmt.Fprint(w, `{"status":"OVER_QUERY_LIMIT","error_message":"quota"}`)
	}
	details := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","result":{}}`)
	}
	client := newTestClient(t, nearby, details)

	scanner, err := NewScanner(client, ScannerConfig{DataDir: dir}, nil, nil, nil)
	require.NoError(t, err)
	scanner.sleep = func(context.Context, time.Duration) {}

	results, err := scanner.ScanAll(context.Background(), []Zone{
		{Nombre: "Buena", Lat: 1, Lng: 2},
		{Nombre: "Mala", Lat: 3, Lng: 4},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, "completado", results[0].Estado)
	require.Equal(t, 1, results[0].NegociosEncontrados)
	require.Equal(t, "error", results[1].Estado)
	require.Contains(t, results[1].Error, "quota")

	data, err := os.ReadFile(filepath.Join(dir, "resumen_escaneo.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"poligono": "Buena"`)
	require.Contains(t, string(data), `"estado": "error"`)
}

func TestLoadZones(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zonas.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"zonas":[{"nombre":"Los Olivos","lat":40.3,"lng":-3.8}]}`), 0o600))

	zones, err := LoadZones(path)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	require.Equal(t, "Los Olivos", zones[0].Nombre)
	require.Equal(t, "40.3,-3.8", zones[0].Location())
}

func TestLoadZonesRejectsEmptyAndUnnamed(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "vacio.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"zonas":[]}`), 0o600))
	_, err := LoadZones(empty)
	require.Error(t, err)

	unnamed := filepath.Join(dir, "sin_nombre.json")
	require.NoError(t, os.WriteFile(unnamed, []byte(`{"zonas":[{"lat":1,"lng":2}]}`), 0o600))
	_, err = LoadZones(unnamed)
	require.Error(t, err)
}
