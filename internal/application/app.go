// Package application wires configuration, storage, lookups and handlers
// into import runs. It is the only place that knows which store and cache
// implementations are in use.
package application

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/JonMunkholm/importdata/internal/body"
	"github.com/JonMunkholm/importdata/internal/config"
	"github.com/JonMunkholm/importdata/internal/core"
	"github.com/JonMunkholm/importdata/internal/handlers"
	"github.com/JonMunkholm/importdata/internal/logging"
	"github.com/JonMunkholm/importdata/internal/metrics"
	"github.com/JonMunkholm/importdata/internal/resolver"
	"github.com/JonMunkholm/importdata/internal/sheet"
	"github.com/JonMunkholm/importdata/internal/store"
	"github.com/JonMunkholm/importdata/internal/store/memory"
	"github.com/JonMunkholm/importdata/internal/store/postgres"
)

// ErrStoreUnavailable marks failures to reach the record store or the
// shared cache.
var ErrStoreUnavailable = errors.New("store unavailable")

// App owns the long-lived collaborators of an import process.
type App struct {
	cfg      *config.Config
	store    store.Store
	redis    *redis.Client
	recorder *metrics.Recorder
	commands *core.CommandTable
	layout   *config.Layout
	bodies   *body.Loader
	progress func(entity string) core.ProgressFunc
	now      func() time.Time
}

// Option configures an App.
type Option func(*App)

// WithStore uses s instead of opening the configured store.
func WithStore(s store.Store) Option {
	return func(a *App) { a.store = s }
}

// WithLayout uses l instead of reading the configured layout file.
func WithLayout(l *config.Layout) Option {
	return func(a *App) { a.layout = l }
}

// WithBodies uses l to read document bodies.
func WithBodies(l *body.Loader) Option {
	return func(a *App) { a.bodies = l }
}

// WithProgress reports per-row progress for every sheet.
func WithProgress(f func(entity string) core.ProgressFunc) Option {
	return func(a *App) { a.progress = f }
}

// WithClock sets the clock used for registration dates.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New builds an App from cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, recorder: metrics.New(), now: time.Now}
	for _, o := range opts {
		o(a)
	}

	if a.layout == nil {
		l, err := config.LoadLayout(cfg.Import.LayoutFile)
		if err != nil {
			return nil, err
		}
		a.layout = l
	}

	if a.store == nil {
		s, err := openStore(ctx, cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		a.store = s
	}

	cache, err := a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	ropts := []resolver.Option{resolver.WithCache(cache)}
	if cfg.Resolver.Fuzzy {
		ropts = append(ropts, resolver.WithFuzzy(cfg.Resolver.FuzzyMaxDistance))
	}

	if a.bodies == nil {
		a.bodies = body.NewOsLoader(cfg.Body.Root, cfg.Body.MaxSize)
	}

	a.commands = handlers.NewCommandTable(&handlers.Deps{
		Store:    a.store,
		Resolver: resolver.New(ropts...),
		Bodies:   a.bodies,
		Now:      a.now,
	})
	return a, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	log := logging.WithFields(ctx, logrus.Fields{"driver": cfg.Driver})
	if cfg.Driver == "memory" {
		log.Warn("using the in-memory store, records are lost on exit")
		return memory.New(), nil
	}

	s, err := postgres.Open(ctx, cfg.Postgres())
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := postgres.Migrate(ctx, s.Pool()); err != nil {
			s.Close()
			return nil, err
		}
	}
	log.Info("connected to record store")
	return s, nil
}

func (a *App) openCache(ctx context.Context) (resolver.Cache, error) {
	if a.cfg.Redis.URL == "" {
		return resolver.NewMemoryCache(), nil
	}
	opts, err := redis.ParseURL(a.cfg.Redis.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parse REDIS_URL")
	}
	a.redis = redis.NewClient(opts)
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	logging.FromContext(ctx).WithField("addr", opts.Addr).Info("using shared lookup cache")
	return resolver.NewRedisCache(a.redis, a.cfg.Resolver.CacheTTL), nil
}

// Commands returns the action table.
func (a *App) Commands() *core.CommandTable {
	return a.commands
}

// Metrics returns the recorder fed by every run.
func (a *App) Metrics() *metrics.Recorder {
	return a.recorder
}

// Migrate applies pending migrations and returns the schema version.
func (a *App) Migrate(ctx context.Context) (int64, error) {
	pg, ok := a.store.(*postgres.Store)
	if !ok {
		return 0, errors.New("migrations need STORE_DRIVER=postgres")
	}
	if err := postgres.Migrate(ctx, pg.Pool()); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return postgres.MigrationVersion(ctx, pg.Pool())
}

// Close releases the store and cache connections.
func (a *App) Close() error {
	var err error
	if a.redis != nil {
		err = a.redis.Close()
	}
	if a.store != nil {
		if serr := a.store.Close(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// Request describes one import run.
type Request struct {
	Action        string
	File          string
	Supplement    bool
	Duplicates    core.DuplicatePolicy
	DocRegisterID string // Empty leaves documents unregistered
	ReportFile    string // JSON report destination, empty to skip
}

// Options returns the import options for req.
func (r Request) Options() core.ImportOptions {
	opts := core.ImportOptions{
		SupplementExisting: r.Supplement,
		Duplicates:         r.Duplicates,
		Extra:              map[string]string{},
	}
	if r.DocRegisterID != "" {
		opts.Extra[core.ExtraDocRegisterID] = r.DocRegisterID
	}
	return opts
}

// Run imports req.File with the command named by req.Action.
//
// An unknown action or an unreadable workbook fails the run before any row
// is processed. A step whose sheet cannot be read is recorded on the report
// and the next step still runs.
func (a *App) Run(ctx context.Context, req Request) (*core.BatchReport, error) {
	cmd, err := a.commands.Get(req.Action)
	if err != nil {
		return nil, err
	}

	wb, err := sheet.Open(req.File)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	if a.cfg.Import.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Import.Timeout)
		defer cancel()
	}

	ctx = logging.ContextWithRunID(ctx, uuid.NewString())
	ctx = logging.ContextWithAction(ctx, cmd.Name)
	log := logging.WithFields(ctx, logrus.Fields{"file": req.File, "steps": len(cmd.Steps)})
	log.Info("import started")

	driverOpts := []core.DriverOption{core.WithRecorder(a.recorder)}
	if a.progress != nil {
		driverOpts = append(driverOpts, core.WithProgress(a.progress))
	}
	driver := core.NewDriver(driverOpts...)

	report := core.NewBatchReport(cmd.Name)
	base := req.Options()
	for _, step := range cmd.Steps {
		entity := step.Entity()
		sl := a.layout.For(entity)

		sh, err := wb.Sheet(sl.Sheet)
		if err != nil {
			report.Fail(entity, core.FormatError(err))
			logging.WithFields(ctx, logrus.Fields{"entity": entity, "sheet": sl.Sheet}).
				WithError(err).Error("sheet could not be read")
			continue
		}
		driver.RunSheet(ctx, report, step.Handler, sh, sl.Shift, step.Options(base))
	}
	report.Finish()
	a.recorder.ObserveRun(cmd.Name, report.Elapsed())

	sum := report.Summary()
	log.WithFields(logrus.Fields{
		"processed":  sum.Processed,
		"created":    sum.Created,
		"updated":    sum.Updated,
		"rejected":   sum.Rejected,
		"warnings":   sum.Warnings,
		"errors":     sum.Errors,
		"elapsed_ms": report.Elapsed().Milliseconds(),
	}).Info("import finished")

	a.writeOutputs(ctx, report, req.ReportFile)
	return report, nil
}

// writeOutputs writes the optional report and metrics files. Failures are
// logged; the import itself already happened.
func (a *App) writeOutputs(ctx context.Context, report *core.BatchReport, reportFile string) {
	log := logging.FromContext(ctx)
	if reportFile != "" {
		if err := writeReport(reportFile, report); err != nil {
			log.WithError(err).Error("report not written")
		} else {
			log.WithField("path", reportFile).Info("report written")
		}
	}
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.recorder.WriteTextfile(path); err != nil {
			log.WithError(err).Error("metrics not written")
		}
	}
}

func writeReport(path string, report *core.BatchReport) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create report %s", path)
	}
	if err := report.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
