package parktrack

import (
	"context"
	"net/http"
)

// HealthResponse is the /health reply.
type HealthResponse struct {
	Status string `json:"status,omitempty"`
}

// VersionResponse is the /version reply.
type VersionResponse struct {
	Version string `json:"version,omitempty"`
}

// Health checks the API is reachable.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var h HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", "/health", nil, nil, &h)
	return h, err
}

// Version returns the API version string.
func (c *Client) Version(ctx context.Context) (VersionResponse, error) {
	var v VersionResponse
	err := c.do(ctx, http.MethodGet, "/version", "/version", nil, nil, &v)
	return v, err
}
