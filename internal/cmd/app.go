package cmd

import (
	"context"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/sakura-poetry/poetryctl/internal/api"
	"github.com/sakura-poetry/poetryctl/internal/config"
	"github.com/sakura-poetry/poetryctl/internal/errors"
	"github.com/sakura-poetry/poetryctl/internal/gateway"
	"github.com/sakura-poetry/poetryctl/internal/log"
	"github.com/sakura-poetry/poetryctl/internal/session"
	"github.com/sakura-poetry/poetryctl/internal/telemetry"
	"github.com/sakura-poetry/poetryctl/internal/ux"
	"github.com/sakura-poetry/poetryctl/internal/version"
)

// Options are the global flags shared by every command.
type Options struct {
	ConfigPath string
	APIURL     string
	Format     string
	LogLevel   string
	NoColor    bool
	Trace      bool
}

// App holds the collaborators a command needs. It is built once per
// invocation, after flags are parsed.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Store     *session.Store
	Gateway   *gateway.Client
	Auth      *api.AuthAPI
	Catalog   *api.Catalog
	Navigator *ux.LoginNavigator
	Tracing   *telemetry.Provider
	Out       io.Writer
	Err       io.Writer

	formatter ux.Formatter
	format    string
	storage   session.TokenStorage
	redis     *redis.Client
	closers   []func() error
}

// NewApp loads configuration and wires the session store, gateway and
// resource clients together.
func NewApp(ctx context.Context, opts Options, stdout, stderr io.Writer) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.Logging.Level)
	logCfg.Format = log.ParseFormat(cfg.Logging.Format)
	logCfg.Output = stderr
	logCfg.ServiceVersion = version.Version
	if opts.LogLevel != "" {
		logCfg.Level = log.ParseLevel(opts.LogLevel)
	}
	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)

	formatter, err := ux.NewFormatter(opts.Format, &ux.FormatterOptions{Writer: stdout, NoColor: opts.NoColor})
	if err != nil {
		return nil, errors.NewValidationError(err.Error(), nil).
			WithSuggestion("Use --format text, json or yaml")
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Out:       stdout,
		Err:       stderr,
		formatter: formatter,
		format:    opts.Format,
	}

	storage, err := a.openStorage()
	if err != nil {
		return nil, err
	}
	a.storage = storage

	store, err := session.NewStore(ctx, storage, session.WithLogger(logger))
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = store

	a.Tracing = a.openTracing(opts.Trace, logCfg)

	a.Navigator = ux.NewLoginNavigator(stderr, opts.NoColor)
	gwOpts := []gateway.Option{
		gateway.WithLogger(logger),
		gateway.WithNotifier(ux.NewTerminalNotifier(stderr, opts.NoColor)),
		gateway.WithNavigator(a.Navigator),
		gateway.WithTracerProvider(a.Tracing.TracerProvider()),
	}
	if cfg.Breaker.Enabled {
		gwOpts = append(gwOpts, gateway.WithCircuitBreaker(gateway.BreakerConfig{
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		}))
	}

	client, err := gateway.New(gateway.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, store, gwOpts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Gateway = client

	a.Auth = api.NewAuthAPI(client)
	store.Bind(a.Auth)
	a.Catalog = api.NewCatalog(client)

	logger.Debug("app ready",
		"config", cfg.Source,
		"base_url", cfg.API.BaseURL,
		"storage", cfg.Storage.Backend,
		"logged_in", store.IsLoggedIn())
	return a, nil
}

// openTracing builds the span provider. Spans are logged at info, so they
// get their own logger that is not silenced by the configured level.
func (a *App) openTracing(force bool, logCfg log.Config) *telemetry.Provider {
	tc := telemetry.DefaultConfig()
	tc.Enabled = a.Config.Tracing.Enabled || force
	tc.SampleRate = a.Config.Tracing.SampleRate
	tc.ServiceVersion = version.Version
	if force {
		tc.SampleRate = 1
	}
	if !tc.Enabled {
		return telemetry.NewProvider(tc, nil)
	}

	logCfg.Level = log.LevelInfo
	p := telemetry.NewProvider(tc, log.New(logCfg))
	a.closers = append(a.closers, func() error {
		return p.Shutdown(context.Background())
	})
	return p
}

func (a *App) openStorage() (session.TokenStorage, error) {
	sc := a.Config.Storage
	switch sc.Backend {
	case config.BackendMemory:
		return session.NewMemoryStorage(), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		a.redis = rdb
		a.closers = append(a.closers, rdb.Close)
		return session.NewRedisStorage(rdb, sc.Redis.Key, sc.Redis.TTL), nil
	default:
		path := sc.Path
		if path == "" {
			p, err := session.DefaultFilePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return session.NewFileStorage(path), nil
	}
}

// Print renders data with the selected formatter.
func (a *App) Print(data any) error {
	return a.formatter.Format(data)
}

// Render prints t in text mode and data otherwise.
func (a *App) Render(data any, t ux.Table) error {
	if a.format == "" || a.format == ux.FormatText {
		return a.formatter.Format(t)
	}
	return a.formatter.Format(data)
}

// Close releases connections opened by NewApp.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
