// Package remote delegates reductions to an external UMAP service over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/stoplight-backend/internal/config"
	"github.com/yungbote/stoplight-backend/internal/embedding"
)

const Name = "remote"

type Reducer struct {
	baseURL    string
	path       string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

func New(cfg config.ReducerConfig) (*Reducer, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("remote reducer: base_url required")
	}
	p := strings.TrimSpace(cfg.Path)
	if p == "" {
		p = "/umap"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Reducer{
		baseURL:    baseURL,
		path:       p,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    timeout,
		httpClient: &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg config.ReducerConfig, httpClient *http.Client) (*Reducer, error) {
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		r.httpClient = httpClient
	}
	return r, nil
}

func (r *Reducer) Name() string { return Name }

type reduceRequest struct {
	Data        [][]float64 `json:"data"`
	Columns     []string    `json:"columns"`
	NNeighbors  int         `json:"n_neighbors"`
	MinDist     float64     `json:"min_dist"`
	Metric      string      `json:"metric"`
	RandomState int64       `json:"random_state"`
}

type reduceResponse struct {
	Embedding [][]float64 `json:"embedding"`
}

// Reduce posts the matrix and maps the response back to row indexes by
// position. Range checks are left to the service; a 4xx reply is reported as
// invalid input.
func (r *Reducer) Reduce(ctx context.Context, m embedding.Matrix, p embedding.Params) ([]embedding.Point, error) {
	p = p.Normalize()
	body := reduceRequest{
		Data:        make([][]float64, len(m.Rows)),
		Columns:     m.Columns,
		NNeighbors:  p.NNeighbors,
		MinDist:     p.MinDist,
		Metric:      p.Metric,
		RandomState: p.Seed,
	}
	for i, row := range m.Rows {
		body.Data[i] = row.Values
	}

	var resp reduceResponse
	if err := r.doJSON(ctx, http.MethodPost, r.path, body, &resp); err != nil {
		var he *HTTPError
		if errors.As(err, &he) && he.StatusCode >= 400 && he.StatusCode < 500 {
			return nil, fmt.Errorf("%w: %w", embedding.ErrInvalidParams, err)
		}
		return nil, err
	}
	if len(resp.Embedding) != len(m.Rows) {
		return nil, fmt.Errorf("%w: service returned %d points for %d rows", embedding.ErrMisaligned, len(resp.Embedding), len(m.Rows))
	}
	out := make([]embedding.Point, len(m.Rows))
	for i, xy := range resp.Embedding {
		if len(xy) != 2 {
			return nil, fmt.Errorf("%w: point %d has %d coordinates", embedding.ErrMisaligned, i, len(xy))
		}
		out[i] = embedding.Point{Index: m.Rows[i].Index, X: xy[0], Y: xy[1]}
	}
	return out, nil
}

func (r *Reducer) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, method, r.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
