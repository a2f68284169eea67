package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/stoplight-backend/internal/blob"
	"github.com/yungbote/stoplight-backend/internal/http/response"
	"github.com/yungbote/stoplight-backend/internal/platform/apierr"
)

type DatasetLister interface {
	Datasets(ctx context.Context) ([]blob.Info, error)
}

type DatasetHandler struct {
	datasets DatasetLister
}

func NewDatasetHandler(datasets DatasetLister) *DatasetHandler {
	return &DatasetHandler{datasets: datasets}
}

type datasetView struct {
	Name         string    `json:"name"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// GET /api/datasets
func (h *DatasetHandler) List(c *gin.Context) {
	infos, err := h.datasets.Datasets(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusBadGateway, codeDataSource, err))
		return
	}
	out := make([]datasetView, 0, len(infos))
	for _, info := range infos {
		out = append(out, datasetView{Name: info.Key, SizeBytes: info.Size, LastModified: info.LastModified})
	}
	response.RespondOK(c, gin.H{"datasets": out})
}
