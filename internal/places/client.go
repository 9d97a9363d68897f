package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultNearbyURL  = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	defaultDetailsURL = "https://maps.googleapis.com/maps/api/place/details/json"

	// The web service needs a short beat before a next_page_token becomes
	// valid; requesting the page too early yields INVALID_REQUEST.
	defaultPageTokenDelay = 3 * time.Second
)

// ClientConfig carries the Places client knobs.
type ClientConfig struct {
	APIKey         string
	QPS            float64
	PageTokenDelay time.Duration

	// NearbyURL and DetailsURL override the endpoints, for tests.
	NearbyURL  string
	DetailsURL string
}

// Client calls the Places web service under a request-rate budget.
type Client struct {
	httpClient *http.Client
	cfg        ClientConfig
	limiter    *rate.Limiter
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration)
}

// NewClient builds a Client. A zero QPS disables the budget.
func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("places api key is required")
	}
	if cfg.NearbyURL == "" {
		cfg.NearbyURL = defaultNearbyURL
	}
	if cfg.DetailsURL == "" {
		cfg.DetailsURL = defaultDetailsURL
	}
	if cfg.PageTokenDelay <= 0 {
		cfg.PageTokenDelay = defaultPageTokenDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), 1)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cfg:        cfg,
		limiter:    limiter,
		logger:     logger,
		sleep:      sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// NearbySearch lists every place around the zone anchor, following page
// tokens until exhausted. Results are de-duplicated by place_id, keeping the
// first occurrence.
func (c *Client) NearbySearch(ctx context.Context, zone Zone, radiusMeters int) ([]Place, error) {
	params := url.Values{}
	params.Set("location", zone.Location())
	params.Set("radius", strconv.Itoa(radiusMeters))
	params.Set("key", c.cfg.APIKey)

	seen := make(map[string]struct{})
	var places []Place

	for {
		var resp nearbyResponse
		if err := c.get(ctx, c.cfg.NearbyURL, params, &resp); err != nil {
			return places, err
		}
		switch resp.Status {
		case "OK":
		case "ZERO_RESULTS":
			return places, nil
		default:
			return places, fmt.Errorf("nearby search status %s: %s", resp.Status, resp.ErrorMessage)
		}

		for _, place := range resp.Results {
			if place.PlaceID == "" {
				continue
			}
			if _, ok := seen[place.PlaceID]; ok {
				continue
			}
			seen[place.PlaceID] = struct{}{}
			places = append(places, place)
		}

		if resp.NextPageToken == "" {
			return places, nil
		}
		c.logger.Debug("cargando más resultados", zap.String("zona", zone.Nombre))
		c.sleep(ctx, c.cfg.PageTokenDelay)
		if ctx.Err() != nil {
			return places, ctx.Err()
		}
		params = url.Values{}
		params.Set("pagetoken", resp.NextPageToken)
		params.Set("key", c.cfg.APIKey)
	}
}

// PlaceDetails fetches phone and website for one place. Failures degrade to
// empty details so a single flaky lookup never sinks a whole zone scan.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) Details {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "formatted_phone_number,website")
	params.Set("key", c.cfg.APIKey)

	var resp detailsResponse
	if err := c.get(ctx, c.cfg.DetailsURL, params, &resp); err != nil {
		c.logger.Warn("detalles de lugar", zap.String("place_id", placeID), zap.Error(err))
		return Details{}
	}
	if resp.Status != "OK" {
		c.logger.Warn("detalles de lugar",
			zap.String("place_id", placeID),
			zap.String("status", resp.Status),
		)
		return Details{}
	}
	return resp.Result
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait request budget: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call places api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places api returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode places response: %w", err)
	}
	return nil
}
