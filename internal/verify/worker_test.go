package verify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/begonlabs/poligonos/internal/browser"
	"github.com/begonlabs/poligonos/internal/directorio"
)

// fakeSession serves canned page content keyed by URL.
type fakeSession struct {
	pages  map[string]browser.FetchResult
	errs   map[string]error
	closed bool
}

func (s *fakeSession) Fetch(url string) (browser.FetchResult, error) {
	if err, ok := s.errs[url]; ok {
		return browser.FetchResult{}, err
	}
	if res, ok := s.pages[url]; ok {
		return res, nil
	}
	return browser.FetchResult{Status: 404}, nil
}

func (s *fakeSession) Close() { s.closed = true }

type fakeWorkerInstance struct {
	session *fakeSession
	err     error
}

func (i *fakeWorkerInstance) NewSession(_ browser.SessionOptions) (browser.Session, error) {
	if i.err != nil {
		return nil, i.err
	}
	return i.session, nil
}

func (i *fakeWorkerInstance) Close() error { return nil }

type fakeWorkerPool struct {
	instance browser.Instance
	acquires atomic.Int64
	releases atomic.Int64
}

func (p *fakeWorkerPool) Acquire(_ context.Context) (browser.Instance, error) {
	p.acquires.Add(1)
	return p.instance, nil
}

func (p *fakeWorkerPool) Release(_ browser.Instance) {
	p.releases.Add(1)
}

func testConfig() Config {
	return Config{
		ContactPaths: []string{"", "/contacto"},
	}
}

func newTestWorker(session *fakeSession) (*Worker, *fakeWorkerPool) {
	pool := &fakeWorkerPool{instance: &fakeWorkerInstance{session: session}}
	return NewWorker(pool, testConfig(), newDomainBudget(0), nil), pool
}

func TestVerifyConfirmsExistingEmail(t *testing.T) {
	session := &fakeSession{pages: map[string]browser.FetchResult{
		"https://acme.es":          {Status: 200, Content: "Bienvenidos"},
		"https://acme.es/contacto": {Status: 200, Content: "Escríbenos a info@acme.es"},
	}}
	worker, pool := newTestWorker(session)

	record := directorio.BusinessRecord{
		Nombre:   "Acme",
		SitioWeb: "https://acme.es",
		Email:    "info@acme.es",
	}
	out := worker.Verify(context.Background(), record, 0, 1)

	require.NotNil(t, out.Record.VerificationResults)
	require.True(t, out.Record.VerificationResults.EmailVerified)
	require.False(t, out.EmailAdopted)
	require.Equal(t, "info@acme.es", out.Record.Email)
	require.Equal(t, []string{"https://acme.es", "https://acme.es/contacto"}, out.Record.VerificationResults.PagesChecked)
	require.Equal(t, int64(1), pool.acquires.Load())
	require.Equal(t, int64(1), pool.releases.Load())
	require.True(t, session.closed)
}

func TestVerifyAdoptsFirstValidEmail(t *testing.T) {
	session := &fakeSession{pages: map[string]browser.FetchResult{
		"https://acme.es":          {Status: 200, Content: "Contacto: noreply@acme.es"},
		"https://acme.es/contacto": {Status: 200, Content: "ventas@acme.es y soporte@acme.es"},
	}}
	worker, _ := newTestWorker(session)

	record := directorio.BusinessRecord{Nombre: "Acme", SitioWeb: "https://acme.es"}
	out := worker.Verify(context.Background(), record, 0, 1)

	require.Equal(t, "ventas@acme.es", out.Record.Email)
	require.True(t, out.EmailAdopted)
	require.True(t, out.Record.VerificationResults.EmailVerified)
	require.Equal(t, []string{"ventas@acme.es", "soporte@acme.es"}, out.Record.VerificationResults.EmailsFound)
}

func TestVerifyWithoutWebsite(t *testing.T) {
	worker, pool := newTestWorker(&fakeSession{})

	record := directorio.BusinessRecord{Nombre: "Sin Web", Telefono: "612345678"}
	out := worker.Verify(context.Background(), record, 0, 1)

	require.Equal(t, "No hay website", out.Record.VerificationResults.Error)
	require.False(t, out.Record.VerificationResults.EmailVerified)
	require.Empty(t, out.Record.VerificationResults.PagesChecked)
	require.Equal(t, int64(0), pool.acquires.Load(), "no browser should be borrowed")
	require.Equal(t, "612345678", out.Record.Telefono, "record stays untouched")
}

func TestVerifyConfirmsNormalizedPhone(t *testing.T) {
	session := &fakeSession{pages: map[string]browser.FetchResult{
		"https://acme.es":          {Status: 200, Content: "Llámanos: 0034612345678"},
		"https://acme.es/contacto": {Status: 404},
	}}
	worker, _ := newTestWorker(session)

	record := directorio.BusinessRecord{
		Nombre:   "Acme",
		SitioWeb: "https://acme.es",
		Telefono: "612 34 56 78",
	}
	out := worker.Verify(context.Background(), record, 0, 1)

	require.True(t, out.Record.VerificationResults.PhoneVerified)
	require.Equal(t, []string{"+34612345678"}, out.Record.VerificationResults.PhonesFound)
}

func TestVerifyAdoptsPhoneWhenMissing(t *testing.T) {
	session := &fakeSession{pages: map[string]browser.FetchResult{
		"https://acme.es": {Status: 200, Content: "Tel: 698765432"},
	}}
	worker, _ := newTestWorker(session)

	record := directorio.BusinessRecord{Nombre: "Acme", SitioWeb: "https://acme.es"}
	out := worker.Verify(context.Background(), record, 0, 1)

	require.Equal(t, "+34698765432", out.Record.Telefono)
	require.True(t, out.Record.VerificationResults.PhoneVerified)
	require.False(t, out.EmailAdopted)
}

func TestVerifyPageFailureDoesNotAbortRemainingPaths(t *testing.T) {
	session := &fakeSession{
		pages: map[string]browser.FetchResult{
			"https://acme.es/contacto": {Status: 200, Content: "info@acme.es"},
		},
		errs: map[string]error{
			"https://acme.es": errors.New("net::ERR_TIMED_OUT"),
		},
	}
	worker, _ := newTestWorker(session)

	record := directorio.BusinessRecord{Nombre: "Acme", SitioWeb: "https://acme.es"}
	out := worker.Verify(context.Background(), record, 0, 1)

	require.Equal(t, "info@acme.es", out.Record.Email)
	require.Len(t, out.Record.VerificationResults.PagesChecked, 2)
}

func TestVerifyTrimsTrailingSlash(t *testing.T) {
	session := &fakeSession{pages: map[string]browser.FetchResult{
		"https://acme.es":          {Status: 200, Content: ""},
		"https://acme.es/contacto": {Status: 200, Content: ""},
	}}
	worker, _ := newTestWorker(session)

	record := directorio.BusinessRecord{Nombre: "Acme", SitioWeb: "https://acme.es/"}
	out := worker.Verify(context.Background(), record, 0, 1)

	require.Equal(t, []string{"https://acme.es", "https://acme.es/contacto"}, out.Record.VerificationResults.PagesChecked)
}

func TestVerifySessionFailureBecomesOutcomeError(t *testing.T) {
	pool := &fakeWorkerPool{instance: &fakeWorkerInstance{err: errors.New("browser crashed")}}
	worker := NewWorker(pool, testConfig(), newDomainBudget(0), nil)

	record := directorio.BusinessRecord{Nombre: "Acme", SitioWeb: "https://acme.es"}
	out := worker.Verify(context.Background(), record, 0, 1)

	require.Equal(t, "browser crashed", out.Record.VerificationResults.Error)
	require.Equal(t, int64(1), pool.releases.Load(), "instance must go back to the pool")
}

func TestResolvePath(t *testing.T) {
	require.Equal(t, "https://acme.es", resolvePath("https://acme.es", ""))
	require.Equal(t, "https://acme.es/contacto", resolvePath("https://acme.es", "/contacto"))
	require.Equal(t, "https://acme.es/contacto", resolvePath("https://acme.es/tienda", "/contacto"))
}

func TestOrderedSetKeepsFirstSeenOrder(t *testing.T) {
	s := newOrderedSet()
	s.addAll([]string{"b", "a", "b", "c", "a"})

	require.Equal(t, []string{"b", "a", "c"}, s.list())
	require.Equal(t, "b", s.first())
	require.True(t, s.contains("c"))
	require.False(t, s.contains("z"))
}
