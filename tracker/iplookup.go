package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const ipLookupURL = "https://api.ipify.org?format=json"

var ipLookupClient = &http.Client{Timeout: 3 * time.Second}

// LookupClientIP resolves the client's public address via an external
// best-effort lookup. Any failure degrades to "unknown". The result is
// provenance metadata, not a reliable identity signal: proxies and VPNs
// routinely make it wrong.
func LookupClientIP(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ipLookupURL, nil)
	if err != nil {
		return "unknown"
	}

	resp, err := ipLookupClient.Do(req)
	if err != nil {
		return "unknown"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "unknown"
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.IP == "" {
		return "unknown"
	}
	return body.IP
}
