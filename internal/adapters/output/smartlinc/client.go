package smartlinc

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"smartlinc-bridge/internal/domain/model"
	"smartlinc-bridge/internal/ports"
	"strconv"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client talks to the gateway with a regular net/http client.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

func NewClient(cfg model.GatewayConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    "http://" + hostPort(cfg),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Fetch(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Close = true

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// NewGateway returns the transport selected by cfg.Transport.
func NewGateway(cfg model.GatewayConfig) (ports.GatewayPort, error) {
	switch cfg.Transport {
	case model.TransportRaw, "":
		return NewRawClient(cfg), nil
	case model.TransportHTTP:
		return NewClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown gateway transport %q", cfg.Transport)
	}
}

func hostPort(cfg model.GatewayConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 80
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(port))
}
