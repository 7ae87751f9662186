package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diskwatch/internal/config"
	"diskwatch/internal/controllers"
	"diskwatch/internal/routes"
	"diskwatch/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	logger := newLogger(cfg)
	log := logger.WithField("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sampler services.Sampler
	switch cfg.Sampler {
	case config.SamplerPartitions:
		sampler = services.NewPartitionSampler(logger.WithField("component", "sampler"))
	default:
		sampler = services.NewDFSampler(cfg.DFBin, logger.WithField("component", "sampler"))
	}

	if cfg.APIEndpoint == "" {
		log.Warn("API_ENDPOINT is not set, warnings will fail to deliver")
	}

	monitor := services.NewMonitor(cfg, sampler, services.NewWebhookNotifier(cfg.APIEndpoint, nil),
		logger.WithField("component", "monitor"))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.HTTPAddr != "" {
		api, err := newAPI(cfg, monitor, logger)
		if err != nil {
			log.WithError(err).Fatal("failed to set up status API")
		}

		router, err := routes.NewRouter(cfg, api)
		if err != nil {
			log.WithError(err).Fatal("failed to set up status API")
		}

		if api.Hub != nil {
			g.Go(func() error { return api.Hub.Run(gCtx) })
		}
		g.Go(func() error { return serve(gCtx, cfg.HTTPAddr, router, log) })
	}

	g.Go(func() error { return monitor.Run(gCtx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("monitor failed")
	}

	log.Info("stopped")
}

// newAPI wires the status API observers into monitor. It must run before monitor.Run.
func newAPI(cfg *config.Config, monitor *services.Monitor, logger *logrus.Logger) (*controllers.API, error) {
	api := &controllers.API{
		Monitor:   monitor,
		History:   services.NewCycleHistory(cfg.HistorySize),
		Telemetry: services.NewTelemetry(nil),
		Log:       logger.WithField("component", "api"),
	}
	monitor.AddObserver(api.History)
	monitor.AddObserver(api.Telemetry)

	if cfg.AuthSecret == "" {
		return api, nil
	}

	auth, err := services.NewAuthService(cfg.AuthSecret, 0)
	if err != nil {
		return nil, err
	}
	if len(cfg.AuthSecret) < 32 {
		api.Log.Warn("DISKWATCH_AUTH_SECRET is shorter than 32 bytes")
	}

	token, err := auth.GenerateToken("viewer")
	if err != nil {
		return nil, err
	}
	api.Log.WithField("token", token).Info("live feed enabled at /ws")

	api.Auth = auth
	api.Hub = services.NewWebSocketHub(logger.WithField("component", "ws"))
	monitor.AddObserver(api.Hub)

	return api, nil
}

func serve(ctx context.Context, addr string, handler http.Handler, log *logrus.Entry) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("status API shutdown failed")
		}
	}()

	log.WithField("addr", addr).Info("status API listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "status API failed")
	}
	return nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	return logger
}
