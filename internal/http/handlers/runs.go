package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/stoplight-backend/internal/http/response"
	"github.com/yungbote/stoplight-backend/internal/platform/apierr"
	"github.com/yungbote/stoplight-backend/internal/runlog"
)

type RunLister interface {
	Recent(ctx context.Context, limit int) ([]*runlog.Run, error)
}

type RunHandler struct {
	runs RunLister
}

// NewRunHandler accepts a nil lister when the ledger is disabled.
func NewRunHandler(runs RunLister) *RunHandler {
	return &RunHandler{runs: runs}
}

// GET /api/runs?limit=
func (h *RunHandler) List(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondAPIError(c, apierr.BadRequest(fmt.Errorf("invalid limit %q", raw)))
			return
		}
		limit = n
	}
	if h.runs == nil {
		response.RespondOK(c, gin.H{"runs": []*runlog.Run{}})
		return
	}
	runs, err := h.runs.Recent(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusInternalServerError, codeRunLog, err))
		return
	}
	if runs == nil {
		runs = []*runlog.Run{}
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
