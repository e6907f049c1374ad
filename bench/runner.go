package bench

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/hrtime"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/workload"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

var DefaultSizes = []int{10000, 40000, 70000, 100000, 130000}

// Scenario builds a tree of Size keys, searches the lowest Size/10
// keys and deletes the first half of the inserted keys.
type Scenario struct {
	Engine   tree.Engine
	Workload workload.Kind
	Size     int
}

func (sc Scenario) String() string {
	return fmt.Sprintf("%s/%s/%d", sc.Engine, sc.Workload, sc.Size)
}

type Result struct {
	Scenario
	Insert    time.Duration
	Search    time.Duration
	Delete    time.Duration
	Total     time.Duration
	Height    int
	LeafCount int
	Len       int64
	Valid     bool
}

type Config struct {
	Engines   []tree.Engine
	Workloads []workload.Kind
	Sizes     []int
	// Workers bounds the concurrent scenarios, GOMAXPROCS when not positive.
	Workers int
	// Validate checks the tree invariants after the delete phase.
	Validate bool
	Clock    hrtime.Clock
}

type Runner struct {
	cfg    Config
	logger xlog.XLogger
	stats  *observability.TreeStats
}

// NewRunner fills the zero fields of cfg with every engine, every
// workload and DefaultSizes. logger and stats are optional.
func NewRunner(cfg Config, logger xlog.XLogger, stats *observability.TreeStats) (*Runner, error) {
	if len(cfg.Engines) == 0 {
		cfg.Engines = tree.Engines()
	}
	if len(cfg.Workloads) == 0 {
		cfg.Workloads = workload.Kinds()
	}
	if len(cfg.Sizes) == 0 {
		cfg.Sizes = slices.Clone(DefaultSizes)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Clock == nil {
		cfg.Clock = hrtime.SysMonotonicClock
	}
	for _, size := range cfg.Sizes {
		if size <= 0 {
			return nil, infra.NewErrorStack(fmt.Sprintf("[bench] invalid scenario size %d", size))
		}
	}
	if logger == nil {
		logger = xlog.NewNopXLogger()
	}
	return &Runner{cfg: cfg, logger: logger, stats: stats}, nil
}

func (r *Runner) Scenarios() []Scenario {
	scenarios := make([]Scenario, 0, len(r.cfg.Engines)*len(r.cfg.Workloads)*len(r.cfg.Sizes))
	for _, e := range r.cfg.Engines {
		for _, w := range r.cfg.Workloads {
			for _, s := range r.cfg.Sizes {
				scenarios = append(scenarios, Scenario{Engine: e, Workload: w, Size: s})
			}
		}
	}
	return scenarios
}

// Run executes every scenario on a worker pool, one tree per task.
// The results of the finished scenarios keep the scenario order, the
// failures and the cancellation are combined into the error.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	pool, err := antsv2.NewPool(r.cfg.Workers, antsv2.WithLogger(xlog.NewAntsXLogger(r.logger)))
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bench] create worker pool")
	}
	defer pool.Release()

	var (
		scenarios = r.Scenarios()
		results   = make([]Result, len(scenarios))
		done      = make([]bool, len(scenarios))
		wg        sync.WaitGroup
		lock      sync.Mutex
		merr      error
	)
	appendErr := func(err error) {
		lock.Lock()
		merr = multierr.Append(merr, err)
		lock.Unlock()
	}

	r.logger.Info("bench started",
		zap.Int("scenarios", len(scenarios)),
		zap.Int("workers", r.cfg.Workers),
	)
	for i, sc := range scenarios {
		if ctx.Err() != nil {
			appendErr(ctx.Err())
			break
		}
		wg.Add(1)
		if err = pool.Submit(func() {
			defer wg.Done()
			res, err := r.runScenario(ctx, sc)
			if err != nil {
				appendErr(fmt.Errorf("scenario %s: %w", sc, err))
				return
			}
			results[i], done[i] = res, true
		}); err != nil {
			wg.Done()
			appendErr(infra.WrapErrorStackWithMessage(err, "[bench] submit "+sc.String()))
		}
	}
	wg.Wait()

	finished := make([]Result, 0, len(results))
	for i := range results {
		if done[i] {
			finished = append(finished, results[i])
		}
	}
	r.logger.Info("bench finished",
		zap.Int("finished", len(finished)),
		zap.Int("failed", len(multierr.Errors(merr))),
	)
	return finished, merr
}

func (r *Runner) runScenario(ctx context.Context, sc Scenario) (res Result, err error) {
	ctx = xlog.WithFields(ctx,
		zap.String("engine", string(sc.Engine)),
		zap.String("workload", sc.Workload.String()),
		zap.Int("size", sc.Size),
	)
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = infra.WrapErrorStackWithMessage(e, "tree assertion")
			} else {
				err = infra.NewErrorStack(fmt.Sprintf("tree assertion: %v", rec))
			}
			r.logger.ErrorStack(err, "bench scenario panicked", zap.String("scenario", sc.String()))
		}
	}()

	t, err := tree.New[int](sc.Engine, sc.Size)
	if err != nil {
		return res, err
	}
	defer t.Release()

	keys := workload.Keys(sc.Workload, sc.Size)
	lowest := slices.Sorted(slices.Values(keys))[:sc.Size/10]
	res.Scenario = sc

	sw := hrtime.NewStopwatch(r.cfg.Clock)
	for _, k := range keys {
		if !t.Insert(k) {
			return res, fmt.Errorf("insert %d rejected", k)
		}
	}
	res.Insert = sw.Lap(observability.PhaseInsert.String())
	if err = ctx.Err(); err != nil {
		return res, err
	}

	for _, k := range lowest {
		if !t.Contains(k) {
			return res, fmt.Errorf("search %d missed", k)
		}
	}
	res.Search = sw.Lap(observability.PhaseSearch.String())
	if err = ctx.Err(); err != nil {
		return res, err
	}

	for _, k := range keys[:sc.Size/2] {
		if !t.Delete(k) {
			return res, fmt.Errorf("delete %d missed", k)
		}
	}
	res.Delete = sw.Lap(observability.PhaseDelete.String())

	res.Height, res.LeafCount, res.Len = t.Height(), t.LeafCount(), t.Len()
	res.Valid = true
	if r.cfg.Validate {
		if verr := tree.TreeValidate[int](t); verr != nil {
			res.Valid = false
			r.logger.ErrorContext(ctx, verr, "tree invariants violated")
		}
	}

	engine, kind := string(sc.Engine), sc.Workload.String()
	r.stats.RecordPhase(ctx, engine, kind, observability.PhaseInsert, res.Insert)
	r.stats.RecordPhase(ctx, engine, kind, observability.PhaseSearch, res.Search)
	r.stats.RecordPhase(ctx, engine, kind, observability.PhaseDelete, res.Delete)
	r.stats.RecordScenario(ctx, engine, kind, res.Height, res.Valid)
	res.Total = sw.Total()
	fields := make([]zap.Field, 0, 5)
	for _, lap := range sw.Laps() {
		fields = append(fields, zap.Duration(lap.Name, lap.Elapsed))
	}
	fields = append(fields, zap.Duration("total", res.Total), zap.Int("height", res.Height))
	r.logger.DebugContext(ctx, "bench scenario done", fields...)
	return res, nil
}
