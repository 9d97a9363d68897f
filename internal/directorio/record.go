// Package directorio defines the business-directory data model and the JSON
// file contracts shared by the discover and verify subsystems.
package directorio

// SentinelName marks the zone-metadata record that occupies index 0 of every
// negocios file. Upstream files always carry one; the loader drops it before
// any business is processed.
const SentinelName = "__zona__"

// BusinessRecord is one business discovered inside an industrial zone. Field
// names follow the upstream Spanish JSON convention.
type BusinessRecord struct {
	Nombre               string               `json:"nombre"`
	Direccion            string               `json:"direccion,omitempty"`
	LinkGoogleMaps       string               `json:"link_google_maps,omitempty"`
	Valoracion           *float64             `json:"valoracion,omitempty"`
	Categorias           string               `json:"categorias,omitempty"`
	Telefono             string               `json:"telefono,omitempty"`
	SitioWeb             string               `json:"sitio_web,omitempty"`
	ReferenciaPoligono   string               `json:"referencia_poligono,omitempty"`
	CoordenadasPoligono  string               `json:"coordenadas_poligono,omitempty"`
	PrecisionUbicacion   string               `json:"precision_ubicacion,omitempty"`
	Email                string               `json:"email,omitempty"`
	VerificationResults  *VerificationOutcome `json:"verification_results,omitempty"`
}

// IsSentinel reports whether the record is the index-0 zone marker.
func (r BusinessRecord) IsSentinel() bool {
	return r.Nombre == SentinelName
}

// VerificationOutcome records what a single verification run observed for one
// business. A worker creates it, fills it, and attaches it exactly once; it is
// never mutated afterwards.
type VerificationOutcome struct {
	EmailsFound   []string `json:"emails_found"`
	PhonesFound   []string `json:"phones_found"`
	EmailVerified bool     `json:"email_verified"`
	PhoneVerified bool     `json:"phone_verified"`
	PagesChecked  []string `json:"pages_checked"`
	Error         string   `json:"error,omitempty"`
}

// NewOutcome returns an outcome with allocated (empty, non-nil) collections so
// the persisted JSON always carries arrays rather than nulls.
func NewOutcome() *VerificationOutcome {
	return &VerificationOutcome{
		EmailsFound:  []string{},
		PhonesFound:  []string{},
		PagesChecked: []string{},
	}
}
