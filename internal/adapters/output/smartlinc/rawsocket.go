package smartlinc

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"smartlinc-bridge/internal/domain/model"
	"time"
)

// RawClient writes requests by hand. SmartLinc firmware answers Linux
// clients only after a multi-second stall unless the first TCP segment
// carries exactly one byte, so the "G" of GET goes out on its own.
type RawClient struct {
	addr     string
	username string
	password string
	timeout  time.Duration
	dialer   net.Dialer
}

func NewRawClient(cfg model.GatewayConfig) *RawClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RawClient{
		addr:     hostPort(cfg),
		username: cfg.Username,
		password: cfg.Password,
		timeout:  timeout,
	}
}

func (c *RawClient) Fetch(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return "", err
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	for _, chunk := range c.request(path) {
		if _, err := io.WriteString(conn, chunk); err != nil {
			return "", err
		}
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err != nil {
			return "", err
		}
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
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

// request returns the request split into the segments written to the socket.
func (c *RawClient) request(path string) []string {
	rest := fmt.Sprintf("ET %s HTTP/1.0\r\nHost: %s\r\n", path, c.addr)
	if c.username != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.password))
		rest += "Authorization: Basic " + cred + "\r\n"
	}
	rest += "\r\n"
	return []string{"G", rest}
}
