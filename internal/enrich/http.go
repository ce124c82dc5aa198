package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPGenerator calls the description generator service over HTTP.
type HTTPGenerator struct {
	url    string
	client *http.Client
}

// NewHTTPGenerator returns a generator posting to the given URL.
func NewHTTPGenerator(url string) *HTTPGenerator {
	return &HTTPGenerator{
		url:    url,
		client: &http.Client{},
	}
}

// describeRequest is the wire request of the description service.
type describeRequest struct {
	NodeID string            `json:"node_id"`
	Config map[string]string `json:"config"`
}

// describeResponse is the wire response of the description service.
type describeResponse struct {
	Description string `json:"description"`
}

// Describe implements Generator. The caller controls the deadline through
// the context.
func (g *HTTPGenerator) Describe(ctx context.Context, nodeID string, config map[string]string) (string, error) {
	payload, err := json.Marshal(describeRequest{NodeID: nodeID, Config: config})
	if err != nil {
		return "", fmt.Errorf("failed to encode describe request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create describe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("describe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("describe request returned status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read describe response: %w", err)
	}

	var decoded describeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode describe response: %w", err)
	}
	return decoded.Description, nil
}
