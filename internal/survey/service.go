package survey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/stoplight-backend/internal/blob"
	"github.com/yungbote/stoplight-backend/internal/embedding"
	"github.com/yungbote/stoplight-backend/internal/platform/ctxutil"
	"github.com/yungbote/stoplight-backend/internal/platform/logger"
	"github.com/yungbote/stoplight-backend/internal/runlog"
)

// Submitter runs one reduction through the shared execution slot.
type Submitter interface {
	Submit(ctx context.Context, m embedding.Matrix, p embedding.Params) ([]embedding.Point, error)
	Engine() string
}

type RunRecorder interface {
	Record(ctx context.Context, run *runlog.Run) error
}

type Request struct {
	File             string
	Params           embedding.Params
	SelectedFeatures []string
	// ExcludeFeature drops one feature after the allow-list is applied.
	ExcludeFeature string
	SurveyNumber   string
}

// Result is the full payload. FeatureNames is always the complete feature
// set, which is also what each record's features map holds; SelectedFeatures
// is what the reduction used.
type Result struct {
	FeatureNames     []string       `json:"featureNames"`
	SelectedFeatures []string       `json:"selectedFeatures"`
	Data             []MergedRecord `json:"data"`
}

type EmbeddingResult struct {
	Embedding [][2]float64 `json:"embedding"`
}

type Service struct {
	loader *Loader
	exec   Submitter
	runs   RunRecorder
	log    *logger.Logger
}

// NewService wires the pipeline. runs may be nil.
func NewService(loader *Loader, exec Submitter, runs RunRecorder, baseLog *logger.Logger) *Service {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Service{loader: loader, exec: exec, runs: runs, log: baseLog.With("service", "SurveyService")}
}

func (s *Service) Datasets(ctx context.Context) ([]blob.Info, error) {
	return s.loader.Datasets(ctx)
}

// Compute loads the workbook, reduces the selected features and merges
// embeddings, tooltips and household attributes into one record per row.
func (s *Service) Compute(ctx context.Context, req Request) (res *Result, err error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	start := time.Now()
	var (
		selected []string
		rows     int
	)
	defer func() { s.record(ctx, runlog.KindCompute, req, selected, rows, start, err) }()

	ds, err := s.loader.Load(ctx, req.File)
	if err != nil {
		return nil, err
	}
	ind, err := filtered(ds.Indicators, req)
	if err != nil {
		return nil, err
	}
	rows = len(ind.Rows)
	selected = s.selection(ind.Features, req)

	pts, err := s.exec.Submit(ctx, BuildMatrix(ind.Rows, selected), req.Params)
	if err != nil {
		return nil, err
	}
	records, err := Merge(MergeInput{
		Rows:     ind.Rows,
		Features: ind.Features,
		Points:   pts,
		Tooltips: BuildTooltips(ds.Priorities),
		Families: ds.Families,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		FeatureNames:     append([]string(nil), ind.Features...),
		SelectedFeatures: selected,
		Data:             records,
	}, nil
}

// Recompute re-runs only the reduction. Points come back in the same row
// order Compute uses for the same file and survey filter.
func (s *Service) Recompute(ctx context.Context, req Request) (res *EmbeddingResult, err error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	start := time.Now()
	var (
		selected []string
		rows     int
	)
	defer func() { s.record(ctx, runlog.KindRecompute, req, selected, rows, start, err) }()

	all, err := s.loader.LoadIndicators(ctx, req.File)
	if err != nil {
		return nil, err
	}
	ind, err := filtered(all, req)
	if err != nil {
		return nil, err
	}
	rows = len(ind.Rows)
	selected = s.selection(ind.Features, req)

	pts, err := s.exec.Submit(ctx, BuildMatrix(ind.Rows, selected), req.Params)
	if err != nil {
		return nil, err
	}
	out := &EmbeddingResult{Embedding: make([][2]float64, len(pts))}
	for i, p := range pts {
		out.Embedding[i] = p.Pair()
	}
	return out, nil
}

func validate(req Request) error {
	if strings.TrimSpace(req.File) == "" {
		return fmt.Errorf("%w: filename is required", ErrInvalidRequest)
	}
	return nil
}

func filtered(all *Indicators, req Request) (*Indicators, error) {
	ind := all.FilterSurvey(req.SurveyNumber)
	if len(ind.Rows) == 0 {
		if req.SurveyNumber != "" {
			return nil, &DataSourceError{File: req.File, Sheet: SheetIndicators, Err: fmt.Errorf("%w for survey %q", ErrNoRows, req.SurveyNumber)}
		}
		return nil, &DataSourceError{File: req.File, Sheet: SheetIndicators, Err: ErrNoRows}
	}
	return ind, nil
}

// selection applies the allow-list, then the legacy single exclusion. Either
// step emptying the set falls back to the full base set.
func (s *Service) selection(base []string, req Request) []string {
	selected, fellBack := SelectFeatures(base, req.SelectedFeatures)
	if fellBack {
		s.log.Warn("no requested feature matched; using all features",
			"file", req.File,
			"requested", strings.Join(req.SelectedFeatures, ","),
		)
	}
	if req.ExcludeFeature != "" {
		if rest := ExcludeFeature(selected, req.ExcludeFeature); len(rest) > 0 {
			selected = rest
		} else {
			s.log.Warn("excluding feature would leave none; using all features", "file", req.File, "feature", req.ExcludeFeature)
			selected = append([]string(nil), base...)
		}
	}
	return selected
}

// record writes a ledger entry. Ledger failures are logged and swallowed.
func (s *Service) record(ctx context.Context, kind string, req Request, selected []string, rows int, start time.Time, runErr error) {
	if s.runs == nil {
		return
	}
	if errors.Is(runErr, ErrInvalidRequest) {
		return
	}
	p := req.Params.Normalize()
	run := &runlog.Run{
		Kind:         kind,
		File:         req.File,
		SurveyNumber: req.SurveyNumber,
		Engine:       s.exec.Engine(),
		Metric:       p.Metric,
		NNeighbors:   p.NNeighbors,
		MinDist:      p.MinDist,
		Seed:         p.Seed,
		Rows:         rows,
		Features:     runlog.FeatureList(selected),
		Success:      runErr == nil,
		DurationMS:   time.Since(start).Milliseconds(),
		RequestID:    ctxutil.RequestID(ctx),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.runs.Record(recCtx, run); err != nil {
		s.log.Warn("run ledger write failed", "error", err, "kind", kind, "file", req.File)
	}
}
