package ports

import "context"

// GatewayPort performs one GET against the gateway and returns the body.
// Any error means the exchange failed at the transport level.
type GatewayPort interface {
	Fetch(ctx context.Context, path string) (string, error)
}
