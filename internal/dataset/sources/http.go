package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"explorer/internal/dataset"
	"explorer/internal/domain"

	"github.com/spf13/cast"
)

// ── HTTP Source ─────────────────────────────────────────────
// Fetches the dataset from a REST endpoint returning a JSON array.

// DefaultURL is the public bike-station dataset used when no URL is set.
const DefaultURL = "https://app-media.noloco.app/noloco/dublin-bikes.json"

const defaultHTTPTimeout = 30 * time.Second

type httpSource struct{}

func init() { dataset.RegisterSource(&httpSource{}) }

func (s *httpSource) Spec() dataset.SourceSpec {
	return dataset.SourceSpec{
		Type:  "http",
		Label: "HTTP API",
		ConfigFields: []dataset.ConfigField{
			{Key: "url", Label: "URL", Type: "string", Required: false, Default: DefaultURL, Help: "Endpoint returning a JSON array of objects"},
			{Key: "method", Label: "Method", Type: "select", Required: false, Options: []string{"GET", "POST"}, Default: "GET"},
			{Key: "headers", Label: "Headers", Type: "textarea", Required: false, Help: "JSON object of headers (e.g., {\"Authorization\": \"Bearer xxx\"})"},
			{Key: "body", Label: "Body", Type: "textarea", Required: false, Help: "Request body (for POST)"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Required: false, Help: "Dot-separated path to the array in the response (e.g., 'data.items')"},
			{Key: "timeout", Label: "Timeout", Type: "duration", Required: false, Default: defaultHTTPTimeout.String()},
		},
	}
}

func (s *httpSource) Fetch(ctx context.Context, cfg dataset.SourceConfig) ([]domain.RawRow, error) {
	const source = "http"

	url := cfg.String("url")
	if url == "" {
		url = DefaultURL
	}
	method := strings.ToUpper(cfg.String("method"))
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if body := cfg.String("body"); body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	headers, err := parseHeaders(cfg["headers"])
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	timeout := defaultHTTPTimeout
	if t, err := cast.ToDurationE(cfg["timeout"]); err == nil && t > 0 {
		timeout = t
	}
	client := &http.Client{Timeout: timeout}

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, domain.NewFetchError(source, fmt.Sprintf("Failed to fetch dataset. HTTP status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", fmt.Errorf("read body: %w", err))
	}

	return dataset.DecodeRows(source, data, cfg.String("dataPath"))
}

// parseHeaders accepts either a map or a JSON object string.
func parseHeaders(v any) (map[string]string, error) {
	switch h := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(h) == "" {
			return nil, nil
		}
		var headers map[string]string
		if err := json.Unmarshal([]byte(h), &headers); err != nil {
			return nil, fmt.Errorf("parse headers: %w", err)
		}
		return headers, nil
	default:
		headers, err := cast.ToStringMapStringE(h)
		if err != nil {
			return nil, fmt.Errorf("parse headers: %w", err)
		}
		return headers, nil
	}
}
