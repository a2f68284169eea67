package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/stoplight-backend/internal/embedding"
	"github.com/yungbote/stoplight-backend/internal/http/response"
	"github.com/yungbote/stoplight-backend/internal/platform/apierr"
	"github.com/yungbote/stoplight-backend/internal/survey"
)

type EmbeddingService interface {
	Compute(ctx context.Context, req survey.Request) (*survey.Result, error)
	Recompute(ctx context.Context, req survey.Request) (*survey.EmbeddingResult, error)
}

type EmbeddingHandler struct {
	svc  EmbeddingService
	seed int64
}

// NewEmbeddingHandler serves both embedding routes. seed is the fixed random
// state every request runs with.
func NewEmbeddingHandler(svc EmbeddingService, seed int64) *EmbeddingHandler {
	return &EmbeddingHandler{svc: svc, seed: seed}
}

// flexString accepts a JSON string or number. Survey numbers arrive both ways.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

type embeddingRequest struct {
	Filename         string     `json:"filename"`
	NNeighbors       *int       `json:"n_neighbors"`
	MinDist          *float64   `json:"min_dist"`
	Metric           string     `json:"metric"`
	SelectedFeatures []string   `json:"selectedFeatures"`
	SelectedFeature  string     `json:"selectedFeature"`
	SurveyNumber     flexString `json:"surveyNumber"`
}

func (h *EmbeddingHandler) bind(c *gin.Context) (survey.Request, bool) {
	var body embeddingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondAPIError(c, toAPIError(err))
			return survey.Request{}, false
		}
		response.RespondAPIError(c, apierr.BadRequest(fmt.Errorf("invalid body: %w", err)))
		return survey.Request{}, false
	}

	params := embedding.DefaultParams(h.seed)
	if body.NNeighbors != nil {
		params.NNeighbors = *body.NNeighbors
	}
	if body.MinDist != nil {
		params.MinDist = *body.MinDist
	}
	if m := strings.TrimSpace(body.Metric); m != "" {
		params.Metric = m
	}

	return survey.Request{
		File:             strings.TrimSpace(body.Filename),
		Params:           params,
		SelectedFeatures: body.SelectedFeatures,
		ExcludeFeature:   strings.TrimSpace(body.SelectedFeature),
		SurveyNumber:     strings.TrimSpace(string(body.SurveyNumber)),
	}, true
}

// POST /umap, POST /api/embeddings
func (h *EmbeddingHandler) Compute(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.svc.Compute(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, res)
}

// POST /recalculate-umap, POST /api/embeddings/recompute
func (h *EmbeddingHandler) Recompute(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.svc.Recompute(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, res)
}
