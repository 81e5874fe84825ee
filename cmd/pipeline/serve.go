package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"videothingy/media-pipeline/internal/handlers"
	"videothingy/media-pipeline/internal/middleware"
	"videothingy/media-pipeline/internal/rpc"
	"videothingy/media-pipeline/internal/utils"
	"videothingy/media-pipeline/internal/worker"
)

const (
	httpShutdownTimeout = 10 * time.Second
	jobDrainTimeout     = 30 * time.Second
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var httpAddr string
	var grpcAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the job workers and the gRPC health service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if httpAddr != "" {
				cfg.HTTPAddr = httpAddr
			}
			if grpcAddr != "" {
				cfg.GRPCAddr = grpcAddr
			}
			log, err := ctx.logger(os.Stdout)
			if err != nil {
				return err
			}
			log.Info("Starting media pipeline...")

			processor := newProcessor(cfg, log)
			for _, depErr := range processor.CheckTools() {
				log.WithError(depErr).Warn("Dependency check failed")
			}

			store, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			// jobs outlive the signal so running ones can finish
			jobCtx, cancelJobs := context.WithCancel(context.Background())
			defer cancelJobs()
			dispatcher := worker.NewDispatcher(cfg.Workers, cfg.QueueSize, store, log)
			dispatcher.Run(jobCtx)

			var health *rpc.HealthServer
			if cfg.GRPCAddr != "" {
				health = rpc.NewHealthServer(log)
				go func() {
					if err := health.ListenAndServe(cfg.GRPCAddr); err != nil {
						log.WithError(err).Error("gRPC health service stopped")
					}
				}()
				health.SetServing(true)
			}

			app := newApp(handlers.NewApplicationHandler(processor, dispatcher, store, log), log)
			listenErr := make(chan error, 1)
			go func() {
				log.Infof("Starting HTTP API on %s", cfg.HTTPAddr)
				listenErr <- app.Listen(cfg.HTTPAddr)
			}()

			var runErr error
			select {
			case <-cmd.Context().Done():
			case runErr = <-listenErr:
			}

			log.Info("Shutting down media pipeline...")
			if health != nil {
				health.SetServing(false)
			}
			if err := app.ShutdownWithTimeout(httpShutdownTimeout); err != nil {
				log.WithError(err).Warn("HTTP shutdown did not complete cleanly")
			}
			drainJobs(dispatcher, cancelJobs, jobDrainTimeout, log)
			if health != nil {
				health.Stop()
			}
			log.Info("Media pipeline shut down gracefully.")
			return runErr
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "Override the HTTP listen address")
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "Override the gRPC health listen address")
	return cmd
}

// drainJobs stops the dispatcher, cancelling running jobs if they have not
// finished within timeout.
func drainJobs(d *worker.Dispatcher, cancel context.CancelFunc, timeout time.Duration, log *logrus.Logger) {
	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		log.Warn("Jobs still running after drain timeout; cancelling")
		cancel()
		<-stopped
	}
}

func newApp(h *handlers.ApplicationHandler, log *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "media-pipeline",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return utils.RespondWithError(c, code, err.Error())
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	app.Use(middleware.RequestLogger(log))

	h.RegisterRoutes(app)
	return app
}
