package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/stoplight-backend/internal/config"
	"github.com/yungbote/stoplight-backend/internal/embedding"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, v any) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func testConfig() config.ReducerConfig {
	return config.ReducerConfig{
		Engine:  "remote",
		BaseURL: "http://reducer/",
		Path:    "/umap",
		APIKey:  "k",
		Timeout: config.Duration{Duration: 2 * time.Second},
	}
}

func testMatrix() embedding.Matrix {
	return embedding.Matrix{
		Columns: []string{"income", "housing"},
		Rows: []embedding.Vector{
			{Index: 4, Key: "F1|1", Values: []float64{3, 5}},
			{Index: 9, Key: "F2|1", Values: []float64{1, 2}},
		},
	}
}

func TestReduce(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.String() != "http://reducer/umap" {
				t.Fatalf("unexpected url: %s", req.URL)
			}
			if got := req.Header.Get("Authorization"); got != "Bearer k" {
				t.Fatalf("authorization=%q", got)
			}
			var in reduceRequest
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			if in.NNeighbors != 15 || in.Metric != "cosine" || in.RandomState != 42 || len(in.Data) != 2 {
				t.Fatalf("request=%+v", in)
			}
			return jsonResponse(http.StatusOK, reduceResponse{Embedding: [][]float64{{0.1, 0.2}, {0.3, 0.4}}}), nil
		}),
	}
	r, err := NewWithHTTPClient(testConfig(), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	pts, err := r.Reduce(context.Background(), testMatrix(), embedding.Params{NNeighbors: 15, Metric: "Cosine", MinDist: 0.1, Seed: 42})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(pts) != 2 || pts[0].Index != 4 || pts[1].Index != 9 || pts[1].Y != 0.4 {
		t.Fatalf("points=%+v", pts)
	}
}

func TestReduceUpstreamErrors(t *testing.T) {
	cases := map[string]struct {
		status  int
		body    any
		invalid bool
		aligned bool
	}{
		"bad request":  {status: http.StatusUnprocessableEntity, body: map[string]string{"detail": "n_neighbors"}, invalid: true},
		"server error": {status: http.StatusInternalServerError, body: map[string]string{"detail": "oom"}},
		"short reply":  {status: http.StatusOK, body: reduceResponse{Embedding: [][]float64{{1, 2}}}, aligned: true},
		"3d point":     {status: http.StatusOK, body: reduceResponse{Embedding: [][]float64{{1, 2, 3}, {1, 2}}}, aligned: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, tc.body), nil
			})}
			r, err := NewWithHTTPClient(testConfig(), client)
			if err != nil {
				t.Fatal(err)
			}
			_, err = r.Reduce(context.Background(), testMatrix(), embedding.DefaultParams(42))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, embedding.ErrInvalidParams); got != tc.invalid {
				t.Fatalf("invalid got=%v want=%v (%v)", got, tc.invalid, err)
			}
			if got := errors.Is(err, embedding.ErrMisaligned); got != tc.aligned {
				t.Fatalf("misaligned got=%v want=%v (%v)", got, tc.aligned, err)
			}
			var he *HTTPError
			if tc.status >= 300 && !errors.As(err, &he) {
				t.Fatalf("expected *HTTPError, got %T", err)
			}
		})
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(config.ReducerConfig{Engine: "remote"}); err == nil {
		t.Fatal("expected error")
	}
}
