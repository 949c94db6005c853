package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"geotag/internal/backup"
	"geotag/internal/coords"
	"geotag/internal/exiftool"
	"geotag/internal/faults"
	"geotag/internal/imageloc"
	"geotag/internal/logging"
	"geotag/internal/metadata"
	"geotag/internal/services"
	"geotag/internal/store"
)

// Writer persists one location. *exiftool.Client satisfies it.
type Writer interface {
	Write(ctx context.Context, req exiftool.WriteRequest) error
}

// Recorder receives every finished batch, e.g. the history journal.
type Recorder interface {
	Record(ctx context.Context, result BatchResult) error
}

// Options tune a batch save.
type Options struct {
	// Concurrency caps simultaneous writes; 0 means runtime.NumCPU().
	Concurrency int
	Backup      backup.Policy
	// UpdateFileModTime sets the file modification date from DateTimeOriginal.
	UpdateFileModTime bool
	// UpdateGPSTimestamp writes the capture time as the GPS timestamp.
	UpdateGPSTimestamp bool
	// TimeZone interprets DateTimeOriginal; nil keeps the zone used at load.
	TimeZone *time.Location
	// LockPath enables the cross-process save lock when set.
	LockPath string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder registers a recorder for finished batches.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// Engine runs batch saves.
type Engine struct {
	writer   Writer
	opts     Options
	logger   *slog.Logger
	recorder Recorder
	busy     atomic.Bool
}

// New constructs an Engine around writer.
func New(writer Writer, opts Options, options ...Option) (*Engine, error) {
	if writer == nil {
		return nil, errors.New("persist: writer required")
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("persist: concurrency must be >= 0, got %d", opts.Concurrency)
	}
	e := &Engine{writer: writer, opts: opts, logger: logging.NewNop()}
	for _, opt := range options {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "persist")
	return e, nil
}

type job struct {
	index int
	rec   *imageloc.ImageLocation
	loc   coords.Location
}

// SaveAll writes every dirty record of s. The dirty set and each record's
// location are captured before any write starts; edits made while the batch
// runs stay dirty for the next save.
func (e *Engine) SaveAll(ctx context.Context, s *store.Store) (BatchResult, error) {
	var jobs []job
	for i, rec := range s.Dirty() {
		jobs = append(jobs, job{index: i, rec: rec, loc: rec.Snapshot()})
	}
	return e.run(ctx, jobs)
}

// Save writes the given records whether or not they are dirty.
func (e *Engine) Save(ctx context.Context, records []*imageloc.ImageLocation) (BatchResult, error) {
	jobs := make([]job, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			continue
		}
		jobs = append(jobs, job{index: i, rec: rec, loc: rec.Snapshot()})
	}
	return e.run(ctx, jobs)
}

func (e *Engine) run(ctx context.Context, jobs []job) (BatchResult, error) {
	result := BatchResult{ID: uuid.NewString(), Started: time.Now()}
	if !e.busy.CompareAndSwap(false, true) {
		return result, faults.Wrap(faults.ErrSaveInProgress, "save", "another batch is running", nil)
	}
	defer e.busy.Store(false)

	unlock, err := e.lock()
	if err != nil {
		return result, err
	}
	defer unlock()

	ctx = services.WithBatchID(ctx, result.ID)
	logger := logging.WithContext(ctx, e.logger)

	if len(jobs) == 0 {
		result.Finished = time.Now()
		logger.Debug("nothing to save")
		return result, nil
	}

	workers := e.workers(len(jobs))
	logger.Info("batch save started",
		logging.Int("images", len(jobs)),
		logging.Int("workers", workers),
		logging.String("backup_mode", string(e.opts.Backup.Mode)),
	)

	result.Outcomes = make([]Outcome, len(jobs))
	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		done     int
		progress = logging.NewProgressSampler(10)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				outcome := e.saveOne(ctx, jobs[i])
				result.Outcomes[i] = outcome

				mu.Lock()
				done++
				if progress.ShouldLog(done, len(jobs)) {
					logger.Info("batch save progress", logging.Int("completed", done), logging.Int("total", len(jobs)))
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	attempted, launchFailures := 0, 0
	var launchErr error
	for _, o := range result.Outcomes {
		if o.Status == StatusSaved {
			result.Saved++
		} else {
			result.Failed++
		}
		switch o.Kind {
		case "cancelled":
		case "launch_failed":
			attempted++
			launchFailures++
			launchErr = o.Err
		default:
			attempted++
		}
	}
	result.Finished = time.Now()

	logger.Info("batch save finished",
		logging.Int("saved", result.Saved),
		logging.Int("failed", result.Failed),
		logging.Int("cancelled", result.Cancelled()),
		logging.Duration("duration", result.Duration()),
	)

	e.record(ctx, logger, result)

	if attempted > 0 && launchFailures == attempted {
		logging.ErrorWithContext(logger, "exiftool could not be started for any image", "spawn_exhausted",
			logging.String(logging.FieldErrorHint, "check exiftool.binary or run 'geotag check'"),
		)
		return result, faults.Wrap(faults.ErrSpawnExhausted, "save", fmt.Sprintf("%d images", launchFailures), launchErr)
	}
	return result, nil
}

func (e *Engine) workers(n int) int {
	limit := e.opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return max(1, min(limit, n))
}

func (e *Engine) lock() (func(), error) {
	path := strings.TrimSpace(e.opts.LockPath)
	if path == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire save lock: %w", err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrSaveInProgress, "save", "lock held by another process: "+path, nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("failed to release save lock", logging.String("lock", path), logging.Error(err))
		}
	}, nil
}

// saveOne runs in exactly one worker per record, so the record is only ever
// marked saved by this call.
func (e *Engine) saveOne(ctx context.Context, j job) Outcome {
	started := time.Now()
	req := exiftool.WriteRequest{
		Path:              j.rec.Path(),
		Sidecar:           j.rec.SidecarPath(),
		Location:          j.loc,
		UpdateFileModTime: e.opts.UpdateFileModTime,
	}
	outcome := Outcome{
		Index:   j.index,
		Path:    j.rec.Path(),
		Target:  req.Target(),
		Written: j.loc,
	}
	ctx = services.WithPath(ctx, outcome.Path)
	logger := logging.WithContext(ctx, e.logger)

	fail := func(err error) Outcome {
		if ctx.Err() != nil && !errors.Is(err, faults.ErrCancelled) {
			err = faults.Wrap(faults.ErrCancelled, "save", "", err)
		}
		outcome.Status = StatusFailed
		outcome.Err = err
		outcome.Kind = faults.Kind(err)
		var exitErr *exiftool.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.Code
		}
		outcome.Duration = time.Since(started)
		attrs := []logging.Attr{
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldImpact, "image keeps its unsaved location"),
		}
		if outcome.ExitCode != 0 {
			attrs = append(attrs, logging.Int("exit_code", outcome.ExitCode))
		}
		if outcome.Kind == "cancelled" {
			logger.LogAttrs(ctx, slog.LevelDebug, "image save cancelled", attrs...)
		} else {
			logging.WarnWithContext(logger, "image save failed", "save_failed", attrs...)
		}
		return outcome
	}

	if err := ctx.Err(); err != nil {
		return fail(faults.Wrap(faults.ErrCancelled, "save", "batch cancelled before start", err))
	}
	if !j.rec.Writable() {
		return fail(faults.Wrap(faults.ErrUnsupported, "save", filepath.Ext(outcome.Path), nil))
	}
	if e.opts.UpdateGPSTimestamp && j.loc.IsSet() {
		req.GPSTimestamp = e.captureTime(j.rec.CapturedAt())
	}

	if e.opts.Backup.Enabled() {
		copied, err := e.opts.Backup.Backup(req.Target())
		if err != nil {
			return fail(err)
		}
		outcome.Backup = copied
	}

	if err := e.writer.Write(ctx, req); err != nil {
		return fail(err)
	}

	j.rec.MarkSavedAs(j.loc)
	outcome.Status = StatusSaved
	outcome.Duration = time.Since(started)
	logger.Debug("image saved",
		logging.String("location", j.loc.String()),
		logging.String("target", outcome.Target),
		logging.Duration("duration", outcome.Duration),
	)
	return outcome
}

func (e *Engine) captureTime(captured imageloc.CapturedAt) time.Time {
	if e.opts.TimeZone != nil && captured.Raw != "" {
		if t, err := metadata.ParseDateTime(captured.Raw, e.opts.TimeZone); err == nil {
			return t
		}
	}
	return captured.Time
}

func (e *Engine) record(ctx context.Context, logger *slog.Logger, result BatchResult) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(context.WithoutCancel(ctx), result); err != nil {
		logging.WarnWithContext(logger, "failed to record batch history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "batch is missing from 'geotag history'"),
		)
	}
}
