package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/stoplight-backend/internal/observability"
	"github.com/yungbote/stoplight-backend/internal/platform/ctxutil"
	"github.com/yungbote/stoplight-backend/internal/platform/logger"
)

type Options struct {
	Lease   Lease
	Metrics *observability.Metrics
	Log     *logger.Logger
}

// Executor owns the only execution slot for reductions in the process. A
// single worker goroutine drains an unbuffered job channel, so at most one
// Reduce call is ever in flight.
type Executor struct {
	reducer Reducer
	lease   Lease
	metrics *observability.Metrics
	log     *logger.Logger
	tracer  trace.Tracer

	jobs      chan *job
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type job struct {
	ctx    context.Context
	matrix Matrix
	params Params
	res    chan result
}

type result struct {
	points []Point
	err    error
}

func NewExecutor(r Reducer, opts Options) *Executor {
	if opts.Lease == nil {
		opts.Lease = LocalLease{}
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	e := &Executor{
		reducer: r,
		lease:   opts.Lease,
		metrics: opts.Metrics,
		log:     opts.Log.With("component", "EmbeddingExecutor", "engine", r.Name()),
		tracer:  otel.Tracer("github.com/yungbote/stoplight-backend/internal/embedding"),
		jobs:    make(chan *job),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *Executor) Engine() string { return e.reducer.Name() }

// Submit blocks until the computation for m has run and returns one point per
// row in m.Rows order. If ctx ends while the job is still waiting for the slot
// the job is abandoned; once the worker has accepted it, it runs to completion
// regardless of ctx.
func (e *Executor) Submit(ctx context.Context, m Matrix, p Params) ([]Point, error) {
	if err := m.Validate(); err != nil {
		return nil, classify(e.reducer.Name(), err)
	}
	j := &job{
		ctx:    context.WithoutCancel(ctx),
		matrix: m,
		params: p.Normalize(),
		res:    make(chan result, 1),
	}

	e.metrics.EmbeddingQueued()
	enqueued := time.Now()
	select {
	case e.jobs <- j:
		e.metrics.EmbeddingDequeued(time.Since(enqueued), true)
	case <-ctx.Done():
		e.metrics.EmbeddingDequeued(time.Since(enqueued), false)
		return nil, ctx.Err()
	case <-e.quit:
		e.metrics.EmbeddingDequeued(time.Since(enqueued), false)
		return nil, &Error{Engine: e.reducer.Name(), Kind: KindUnavailable, Err: ErrClosed}
	}

	r := <-j.res
	return r.points, r.err
}

// Close stops accepting work and waits for the running computation, if any.
func (e *Executor) Close() {
	e.closeOnce.Do(func() { close(e.quit) })
	<-e.done
}

func (e *Executor) loop() {
	defer close(e.done)
	for {
		select {
		case <-e.quit:
			return
		case j := <-e.jobs:
			j.res <- e.run(j)
		}
	}
}

func (e *Executor) run(j *job) (res result) {
	engine := e.reducer.Name()
	ctx, span := e.tracer.Start(j.ctx, "embedding.reduce", trace.WithAttributes(
		attribute.String("embedding.engine", engine),
		attribute.Int("embedding.rows", j.matrix.Len()),
		attribute.Int("embedding.columns", len(j.matrix.Columns)),
		attribute.Int("embedding.n_neighbors", j.params.NNeighbors),
		attribute.Float64("embedding.min_dist", j.params.MinDist),
		attribute.String("embedding.metric", j.params.Metric),
	))
	defer span.End()

	release, err := e.lease.Acquire(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lease")
		e.log.Error("embedding slot lease failed", "error", err)
		return result{err: &Error{Engine: engine, Kind: KindUnavailable, Err: err}}
	}
	defer release()

	e.metrics.EmbeddingStarted()
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res = result{err: &Error{Engine: engine, Kind: KindEngine, Err: fmt.Errorf("reducer panic: %v", rec)}}
		}
		outcome := "ok"
		if res.err != nil {
			outcome = string(classify(engine, res.err).Kind)
			span.RecordError(res.err)
			span.SetStatus(codes.Error, outcome)
		}
		dur := time.Since(start)
		e.metrics.ObserveEmbeddingRun(engine, outcome, dur)
		e.log.Info("embedding computed",
			"rows", j.matrix.Len(),
			"columns", len(j.matrix.Columns),
			"metric", j.params.Metric,
			"outcome", outcome,
			"duration_ms", dur.Milliseconds(),
			"request_id", ctxutil.RequestID(ctx),
		)
	}()

	pts, err := e.reducer.Reduce(ctx, j.matrix, j.params)
	if err != nil {
		return result{err: classify(engine, err)}
	}
	aligned, err := Align(j.matrix, pts)
	if err != nil {
		return result{err: classify(engine, err)}
	}
	return result{points: aligned}
}
