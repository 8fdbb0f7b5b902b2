package localtonet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"proxy-manager/core/reconcile"
	"proxy-manager/core/retry"

	"go.uber.org/zap"
)

// ProviderName is the short code embedded in proxy rows synced from localtonet.
const ProviderName = "ltn"

// unlimitedPlan is what localtonet tunnels report as their tariff: the
// service has no per-tunnel plan, so expiry is pushed to the far future.
const unlimitedPlan = "Unlimited"

var unlimitedExpiry = time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)

// expiryLayout parses GetExpirationDateByTunnelId results, e.g.
// "2025-03-01 12:30:45.123456".
const expiryLayout = "2006-01-02 15:04:05.999999"

// Client is the localtonet.com tunnel adapter.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retry.Policy
	log   *zap.Logger
}

// NewClient creates an adapter for the localtonet API.
func NewClient(cfg Config, policy retry.Policy, log *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
		retry: policy,
		log:   log,
	}
}

// Name implements reconcile.Provider.
func (c *Client) Name() string { return ProviderName }

// wireTunnel is one entry of GET /GetTunnels.
type wireTunnel struct {
	ID                     int64  `json:"id"`
	AuthToken              string `json:"authToken"`
	AuthTokenName          string `json:"authTokenName"`
	AuthenticationUsername string `json:"authenticationUsername"`
	ExternalUserID         string `json:"externalUserId"`
	Status                 int    `json:"status"`
}

// wireEndpoint is one entry of GET /GetTunnelsByAuthToken/{token}.
type wireEndpoint struct {
	ID                     int64  `json:"id"`
	GuidID                 string `json:"guidId"`
	Name                   string `json:"name"`
	Description            string `json:"description"`
	ServerIP               string `json:"serverIp"`
	ServerPort             int    `json:"serverPort"`
	AuthenticationUsername string `json:"authenticationUsername"`
	AuthenticationPassword string `json:"authenticationPassword"`
	ProtocolType           string `json:"protocolType"`
	Status                 int    `json:"status"`
	CreatedTimestamp       int64  `json:"createdTimestamp"`
	UpdatedTimestamp       int64  `json:"updatedTimestamp"`
}

// FetchInventory implements reconcile.Provider. Tunnels map to proxies and
// their per-token endpoints to connections. The tunnel lease expiry comes
// from a separate endpoint; a failure there degrades to a zero expiry rather
// than aborting the fetch because the lease date is not a tracked field.
func (c *Client) FetchInventory(ctx context.Context) ([]reconcile.NormalizedProxy, error) {
	var tunnels []wireTunnel
	if err := c.getJSON(ctx, "/GetTunnels", &tunnels); err != nil {
		return nil, fmt.Errorf("list tunnels: %w", err)
	}

	proxies := make([]reconcile.NormalizedProxy, 0, len(tunnels))
	for _, t := range tunnels {
		id := strconv.FormatInt(t.ID, 10)

		leaseExpires, err := c.fetchExpiry(ctx, id)
		if err != nil {
			c.log.Warn("tunnel expiry lookup failed",
				zap.String("proxy_id", id),
				zap.Error(err))
		}

		name := t.AuthenticationUsername
		if name == "" {
			name = "N/A"
		}

		np := reconcile.NormalizedProxy{
			ID:              id,
			Name:            name,
			OwnerTag:        ownerFromExternalID(t.ExternalUserID),
			TariffPlan:      unlimitedPlan,
			TariffExpiresAt: unlimitedExpiry,
			LeaseExpiresAt:  leaseExpires,
			DeviceModel:     t.AuthTokenName,
			Active:          t.Status == 1,
		}

		var endpoints []wireEndpoint
		if err := c.getJSON(ctx, "/GetTunnelsByAuthToken/"+t.AuthToken, &endpoints); err != nil {
			return nil, fmt.Errorf("list endpoints of tunnel %s: %w", id, err)
		}
		for _, e := range endpoints {
			np.Connections = append(np.Connections, reconcile.NormalizedConnection{
				ID:          strconv.FormatInt(e.ID, 10),
				OwnerTag:    np.OwnerTag,
				Name:        e.Name,
				Description: e.Description,
				IP:          e.ServerIP,
				Port:        e.ServerPort,
				Login:       e.AuthenticationUsername,
				Password:    e.AuthenticationPassword,
				Type:        e.ProtocolType,
				Active:      e.Status == 1,
				CreatedAt:   time.UnixMilli(e.CreatedTimestamp),
				UpdatedAt:   time.UnixMilli(e.UpdatedTimestamp),
			})
		}

		proxies = append(proxies, np)
	}

	return proxies, nil
}

// fetchExpiry resolves the lease expiration of one tunnel.
func (c *Client) fetchExpiry(ctx context.Context, tunnelID string) (time.Time, error) {
	var result struct {
		ExpirationDate string `json:"expirationDate"`
	}
	if err := c.getJSON(ctx, "/GetExpirationDateByTunnelId/"+tunnelID, &result); err != nil {
		return time.Time{}, err
	}
	if result.ExpirationDate == "" {
		return time.Time{}, nil
	}
	return parseExpiry(result.ExpirationDate)
}

// parseExpiry parses the tunnel expiration timestamp. The API occasionally
// emits 27-character strings with a 7th fractional digit; the last character
// is trimmed to fit the layout.
func parseExpiry(s string) (time.Time, error) {
	if len(s) == 27 {
		s = s[:26]
	}
	t, err := time.Parse(expiryLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed expiration date %q: %w", s, err)
	}
	return t, nil
}

// ownerFromExternalID extracts the owner tag from an externalUserId of the
// form "<reference>---<tag>". Anything else carries no owner.
func ownerFromExternalID(externalID string) string {
	_, tag, found := strings.Cut(externalID, "---")
	if !found {
		return ""
	}
	return tag
}

// envelope is the common localtonet response wrapper.
type envelope struct {
	HasError bool            `json:"hasError"`
	Errors   []string        `json:"errors"`
	Result   json.RawMessage `json:"result"`
}

// getJSON performs an authenticated GET with the retry policy applied and
// unwraps the hasError/result envelope into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return retry.Permanent(fmt.Errorf("GET %s: status %d", path, resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
		}

		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return fmt.Errorf("GET %s: decode response: %w", path, err)
		}
		if env.HasError {
			return retry.Permanent(fmt.Errorf("GET %s: api error: %s", path, strings.Join(env.Errors, ", ")))
		}
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("GET %s: decode result: %w", path, err)
		}
		return nil
	})
}
