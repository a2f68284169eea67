// Package runlog keeps a ledger of embedding runs: who asked for what and how
// it went. Results are never stored.
package runlog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	KindCompute   = "compute"
	KindRecompute = "recompute"
)

type Run struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind         string         `gorm:"column:kind;not null;index" json:"kind"`
	File         string         `gorm:"column:file;not null;index" json:"file"`
	SurveyNumber string         `gorm:"column:survey_number" json:"survey_number,omitempty"`
	Engine       string         `gorm:"column:engine;not null" json:"engine"`
	Metric       string         `gorm:"column:metric;not null" json:"metric"`
	NNeighbors   int            `gorm:"column:n_neighbors" json:"n_neighbors"`
	MinDist      float64        `gorm:"column:min_dist" json:"min_dist"`
	Seed         int64          `gorm:"column:seed" json:"seed"`
	Rows         int            `gorm:"column:rows" json:"rows"`
	Features     datatypes.JSON `gorm:"column:features" json:"features"`
	Success      bool           `gorm:"column:success;not null" json:"success"`
	Error        string         `gorm:"column:error" json:"error,omitempty"`
	DurationMS   int64          `gorm:"column:duration_ms" json:"duration_ms"`
	RequestID    string         `gorm:"column:request_id" json:"request_id,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Run) TableName() string {
	return "embedding_run"
}

func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// FeatureList encodes the feature names used by a run.
func FeatureList(names []string) datatypes.JSON {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}
