package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trailgo/internal/api"
	"trailgo/pkg/clock"
	"trailgo/pkg/config"
	"trailgo/pkg/core"
	"trailgo/pkg/db"
	"trailgo/pkg/db/maintenance"
	"trailgo/pkg/logging"
	"trailgo/pkg/paths"
	"trailgo/pkg/probe"
	"trailgo/pkg/store"
	"trailgo/pkg/version"
	"trailgo/pkg/weather"
)

const defaultConfigPath = "configs/trailgo.yaml"

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
	envFile    = flag.String("env", ".env", "Optional .env file with TRAILGO_* overrides")
)

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := loadEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

// loadEnv reads the .env file if present. Variables already set in the
// environment win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("TrailGo Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	prov := config.NewProvider(appCfg, st)
	svcs := initServices(st, prov)

	if err := maintenance.Run(ctx, svcs.Paths, st, dbConn, appCfg.Maintenance.ImportDir); err != nil {
		return fmt.Errorf("maintenance failed: %w", err)
	}

	// Scheduler
	sched := setupScheduler(appCfg, prov, svcs, st)
	schedDone := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(schedDone)
	}()
	defer func() {
		cancel()
		<-schedDone
	}()

	// Startup Probes
	probes := []probe.Probe{
		probe.Database(dbConn),
		probe.WritableDir("Log Directory", filepath.Dir(appCfg.Log.Server.Path), false),
		probe.MagneticModel(time.Now),
	}
	results := probe.Run(ctx, probe.DefaultTimeout, probes)
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	return runServer(ctx, appCfg, prov, svcs, cancel)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// Services are the domain services shared by the scheduler and the API.
type Services struct {
	Paths   *paths.Service
	Weather *weather.Service
}

func initServices(st store.Store, prov config.Provider) *Services {
	clk := clock.System{}
	return &Services{
		Paths:   paths.NewService(st, st, st, prov, clk),
		Weather: weather.NewService(st, prov, clk),
	}
}

func setupScheduler(cfg *config.Config, prov config.Provider, svcs *Services, st store.StateStore) *core.Scheduler {
	clk := clock.System{}
	sched := core.NewScheduler(time.Duration(cfg.Maintenance.Tick), clk)
	sched.AddJob(core.NewCleanupJob(prov.CleanupInterval(), svcs.Paths, svcs.Weather, clk))
	if cfg.Maintenance.ImportDir != "" && cfg.Maintenance.ImportInterval > 0 {
		importer := &maintenance.Importer{Sink: svcs.Paths, State: st, Dir: cfg.Maintenance.ImportDir}
		sched.AddJob(core.NewImportJob(time.Duration(cfg.Maintenance.ImportInterval), importer))
	}
	return sched
}

func runServer(ctx context.Context, cfg *config.Config, prov config.Provider, svcs *Services, shutdown func()) error {
	srv := api.NewServer(cfg.Server.Address,
		api.NewPathHandler(svcs.Paths, prov),
		api.NewWeatherHandler(svcs.Weather),
		api.NewConfigHandler(prov),
		api.NewStreamHandler(svcs.Paths),
		shutdown,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
