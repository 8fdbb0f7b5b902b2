package iproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"proxy-manager/core/reconcile"
	"proxy-manager/core/retry"

	"go.uber.org/zap"
)

// ProviderName is the short code embedded in proxy rows synced from iproxy.
const ProviderName = "ipr"

// Client is the iproxy.online inventory adapter.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retry.Policy
	log   *zap.Logger
}

// NewClient creates an adapter for the iproxy.online API.
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

// wireDevice is one entry of GET /connections.
type wireDevice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PlanDetails struct {
		Message string `json:"message"`
	} `json:"planDetails"`
	DeviceModel      string `json:"deviceModel"`
	Active           bool   `json:"active"`
	CreatedTimestamp int64  `json:"createdTimestamp"`
	UpdatedTimestamp int64  `json:"updatedTimestamp"`
}

// wireEndpoint is one entry of GET /connections/{id}/proxies.
type wireEndpoint struct {
	ID               string `json:"id"`
	UserID           string `json:"userId"`
	CreatedTimestamp int64  `json:"createdTimestamp"`
	UpdatedTimestamp int64  `json:"updatedTimestamp"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	IP               string `json:"ip"`
	Port             int    `json:"port"`
	Login            string `json:"login"`
	Password         string `json:"password"`
	Type             string `json:"type"`
	ConnectionID     string `json:"connectionId"`
	Active           bool   `json:"active"`
}

// FetchInventory implements reconcile.Provider. It lists all devices and
// their endpoints, normalizing the combined plan and name labels. A device
// with a malformed plan string is kept with default plan fields; only a
// failed request (after retries) aborts the fetch.
func (c *Client) FetchInventory(ctx context.Context) ([]reconcile.NormalizedProxy, error) {
	var devices struct {
		Result []wireDevice `json:"result"`
	}
	if err := c.getJSON(ctx, "/connections", &devices); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	proxies := make([]reconcile.NormalizedProxy, 0, len(devices.Result))
	for _, d := range devices.Result {
		plan, planExpires, err := parsePlanMessage(d.PlanDetails.Message)
		if err != nil {
			c.log.Warn("malformed plan details, using defaults",
				zap.String("proxy_id", d.ID),
				zap.Error(err))
		}
		name, leaseExpires := parseNameLabel(d.Name)

		np := reconcile.NormalizedProxy{
			ID:              d.ID,
			Name:            name,
			OwnerTag:        d.Description,
			TariffPlan:      plan,
			TariffExpiresAt: planExpires,
			LeaseExpiresAt:  leaseExpires,
			DeviceModel:     d.DeviceModel,
			Active:          d.Active,
		}

		var endpoints struct {
			Result []wireEndpoint `json:"result"`
		}
		if err := c.getJSON(ctx, "/connections/"+d.ID+"/proxies", &endpoints); err != nil {
			return nil, fmt.Errorf("list proxies of connection %s: %w", d.ID, err)
		}
		for _, e := range endpoints.Result {
			np.Connections = append(np.Connections, reconcile.NormalizedConnection{
				ID:          e.ID,
				OwnerTag:    e.Description,
				Name:        e.Name,
				Description: e.Description,
				IP:          e.IP,
				Port:        e.Port,
				Login:       e.Login,
				Password:    e.Password,
				Type:        e.Type,
				Active:      e.Active,
				CreatedAt:   time.UnixMilli(e.CreatedTimestamp),
				UpdatedAt:   time.UnixMilli(e.UpdatedTimestamp),
			})
		}

		proxies = append(proxies, np)
	}

	return proxies, nil
}

// getJSON performs an authenticated GET with the retry policy applied.
// Decode failures count as transient: a truncated body usually means the
// response was cut off mid-transfer.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Authorization", c.cfg.ApiKey)
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
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("GET %s: decode response: %w", path, err)
		}
		return nil
	})
}
