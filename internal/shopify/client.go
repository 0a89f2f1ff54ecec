package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"roasters-choice/internal/fault"
	"roasters-choice/internal/secrets"
)

// Refresh the admin token this long before its reported expiry.
const tokenSkew = 60 * time.Second

const defaultAPIVersion = "2026-01"

// tokenCache is the in-memory admin token for a warm instance. Not locked:
// concurrent refreshes cost at most a redundant token exchange.
type tokenCache struct {
	value  string
	expiry time.Time
}

// Client issues authenticated Admin API calls for one shop.
type Client struct {
	Shop         string // the *.myshopify.com subdomain
	APIVersion   string
	ClientID     string
	ClientSecret string

	// BaseURL overrides the https://<shop>.myshopify.com origin in tests.
	BaseURL string
	HTTP    *http.Client
	Now     func() time.Time

	token tokenCache
}

// NewFromEnv builds a client from SHOPIFY_* configuration. The client secret
// may come from SSM via SHOPIFY_CLIENT_SECRET_PARAM.
func NewFromEnv(ctx context.Context) (*Client, error) {
	shop := strings.TrimSpace(os.Getenv("SHOPIFY_SHOP"))
	clientID := strings.TrimSpace(os.Getenv("SHOPIFY_CLIENT_ID"))
	clientSecret, err := secrets.Resolve(ctx, "SHOPIFY_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}
	if shop == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("missing SHOPIFY_SHOP / SHOPIFY_CLIENT_ID / SHOPIFY_CLIENT_SECRET env vars")
	}

	apiVersion := strings.TrimSpace(os.Getenv("SHOPIFY_API_VERSION"))
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	return &Client{
		Shop:         shop,
		APIVersion:   apiVersion,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}, nil
}

func (c *Client) origin() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://%s.myshopify.com", c.Shop)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// AccessToken returns the cached admin token, refreshing it through the
// client-credentials exchange when it is within tokenSkew of expiry.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.token.value != "" && c.now().Before(c.token.expiry.Add(-tokenSkew)) {
		return c.token.value, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	}

	endpoint := c.origin() + "/admin/oauth/access_token"
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	req.Header.Set("content-type", "application/x-www-form-urlencoded")

	res, err := c.httpClient().Do(req)
	if err != nil {
		return "", fault.New(fault.Vendor, "token request failed: %v", err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fault.New(fault.Vendor, "token request failed: %d %s", res.StatusCode, string(raw))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &tok); err != nil || tok.AccessToken == "" {
		return "", fault.New(fault.Vendor, "invalid token response: %s", string(raw))
	}

	c.token = tokenCache{
		value:  tok.AccessToken,
		expiry: c.now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}
	return c.token.value, nil
}
