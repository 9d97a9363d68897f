// Package places wraps the Google Places web service calls the discovery
// command needs: nearby search with token pagination and a per-place details
// lookup.
package places

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Zone is a named industrial area with its anchor coordinates. Coordinates
// come from the zones file; no geocoding happens here.
type Zone struct {
	Nombre string  `json:"nombre"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// Location renders the zone anchor in the lat,lng form the web service and
// the output records use.
func (z Zone) Location() string {
	return fmt.Sprintf("%g,%g", z.Lat, z.Lng)
}

// LoadZones reads the zones file: {"zonas": [{"nombre": ..., "lat": ..., "lng": ...}]}.
func LoadZones(path string) ([]Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones file: %w", err)
	}
	var doc struct {
		Zonas []Zone `json:"zonas"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode zones file: %w", err)
	}
	if len(doc.Zonas) == 0 {
		return nil, fmt.Errorf("zones file %s holds no zones", path)
	}
	for i, z := range doc.Zonas {
		if strings.TrimSpace(z.Nombre) == "" {
			return nil, fmt.Errorf("zone %d has no name", i)
		}
	}
	return doc.Zonas, nil
}

// Place is one nearby-search result.
type Place struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Rating   *float64 `json:"rating"`
	Types    []string `json:"types"`
}

// Details is the subset of the place-details response the records use.
type Details struct {
	FormattedPhoneNumber string `json:"formatted_phone_number"`
	Website              string `json:"website"`
}

type nearbyResponse struct {
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message"`
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token"`
}

type detailsResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Result       Details `json:"result"`
}
