package survey

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/stoplight-backend/internal/blob"
	"github.com/yungbote/stoplight-backend/internal/observability"
	"github.com/yungbote/stoplight-backend/internal/platform/logger"
	"github.com/yungbote/stoplight-backend/internal/sheets"
)

// Loader reads survey workbooks. Nothing is cached: every call re-reads the
// source.
type Loader struct {
	reader  *sheets.Reader
	metrics *observability.Metrics
	log     *logger.Logger
}

func NewLoader(reader *sheets.Reader, metrics *observability.Metrics, baseLog *logger.Logger) *Loader {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Loader{reader: reader, metrics: metrics, log: baseLog.With("component", "SurveyLoader")}
}

// Datasets lists the workbook ids available in the source store.
func (l *Loader) Datasets(ctx context.Context) ([]blob.Info, error) {
	return l.reader.List(ctx)
}

// Load reads all three sheets concurrently and normalizes survey numbers in
// each before any join.
func (l *Loader) Load(ctx context.Context, file string) (ds *Dataset, err error) {
	defer func() { l.observe(file, ds, err) }()

	wb, err := l.reader.Open(ctx, file)
	if err != nil {
		return nil, sourceErr(file, "", err)
	}
	defer wb.Close()

	var ind, pri, fam *sheets.Table
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range []struct {
		name string
		dst  **sheets.Table
		cols []string
	}{
		{SheetIndicators, &ind, []string{ColFamilyCode, ColSurveyNumber}},
		{SheetPriorities, &pri, []string{ColFamilyCode, ColSurveyNumber, ColLevel, ColIndicator}},
		{SheetFamilies, &fam, []string{ColFamilyCode, ColSurveyNumber}},
	} {
		s := s
		g.Go(func() error {
			t, err := readSheet(gctx, wb, file, s.name, s.cols)
			if err != nil {
				return err
			}
			*s.dst = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	indicators, err := indicatorRows(file, ind)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		File:       file,
		Indicators: indicators,
		Priorities: priorityRows(pri),
		Families:   familyRows(fam),
	}, nil
}

// LoadIndicators reads only the Indicators sheet.
func (l *Loader) LoadIndicators(ctx context.Context, file string) (*Indicators, error) {
	t, err := l.reader.ReadSheet(ctx, file, SheetIndicators)
	if err != nil {
		return nil, sourceErr(file, SheetIndicators, err)
	}
	if err := prepareSheet(file, SheetIndicators, t, []string{ColFamilyCode, ColSurveyNumber}); err != nil {
		return nil, err
	}
	return indicatorRows(file, t)
}

func (l *Loader) observe(file string, ds *Dataset, err error) {
	driver := string(l.reader.Driver())
	if err != nil {
		l.metrics.ObserveDatasetLoad(driver, "error", 0)
		l.log.Warn("dataset load failed", "file", file, "error", err)
		return
	}
	rows := len(ds.Indicators.Rows)
	l.metrics.ObserveDatasetLoad(driver, "ok", rows)
	l.log.Debug("dataset loaded",
		"file", file,
		"rows", rows,
		"features", len(ds.Indicators.Features),
		"priorities", len(ds.Priorities),
		"families", len(ds.Families),
	)
}

func readSheet(ctx context.Context, wb sheets.Workbook, file, name string, required []string) (*sheets.Table, error) {
	t, err := wb.Sheet(ctx, name)
	if err != nil {
		return nil, sourceErr(file, name, err)
	}
	if err := prepareSheet(file, name, t, required); err != nil {
		return nil, err
	}
	return t, nil
}

// prepareSheet checks required columns and normalizes survey numbers in place.
func prepareSheet(file, name string, t *sheets.Table, required []string) error {
	if err := t.Require(required...); err != nil {
		return sourceErr(file, name, err)
	}
	for _, rec := range t.Records() {
		rec.Set(ColSurveyNumber, NormalizeSurveyNumber(rec.Value(ColSurveyNumber)))
	}
	return nil
}

func keyOf(rec sheets.Record) Key {
	return Key{FamilyCode: rec.Value(ColFamilyCode), SurveyNumber: rec.Value(ColSurveyNumber)}
}

func indicatorRows(file string, t *sheets.Table) (*Indicators, error) {
	cols := t.Columns()
	out := &Indicators{
		Columns:  cols,
		Features: BaseFeatures(cols),
		Rows:     make([]IndicatorRow, 0, t.Len()),
	}
	for i, rec := range t.Records() {
		row := IndicatorRow{Index: i, Key: keyOf(rec), Values: make(map[string]int, len(out.Features))}
		for _, f := range out.Features {
			v, err := FeatureValue(rec.Value(f))
			if err != nil {
				return nil, sourceErr(file, SheetIndicators, fmt.Errorf("row %d column %q: %w", i+2, f, err))
			}
			row.Values[f] = v
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func priorityRows(t *sheets.Table) []PriorityRow {
	out := make([]PriorityRow, 0, t.Len())
	for _, rec := range t.Records() {
		out = append(out, PriorityRow{
			Key:        keyOf(rec),
			Level:      rec.Value(ColLevel),
			Indicator:  rec.Value(ColIndicator),
			ReasonWhy:  rec.Value(ColReasonWhy),
			ActionWhat: rec.Value(ColActionWhat),
		})
	}
	return out
}

// familyRows indexes the Families sheet by key; the first row for a key wins.
func familyRows(t *sheets.Table) map[Key]FamilyRow {
	out := make(map[Key]FamilyRow, t.Len())
	for _, rec := range t.Records() {
		k := keyOf(rec)
		if _, dup := out[k]; dup {
			continue
		}
		out[k] = FamilyRow{Key: k, Fields: rec.Map()}
	}
	return out
}
