package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/madrasahub/apps/api/echo"
	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
	logsvc "github.com/trezcool/madrasahub/services/logger"
	syncsvc "github.com/trezcool/madrasahub/services/sync"
	uploadsvc "github.com/trezcool/madrasahub/services/upload"
	"github.com/trezcool/madrasahub/storage"
	"github.com/trezcool/madrasahub/storage/cache"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zapLogger, err := logsvc.NewZapLogger(conf.Env)
	if err != nil {
		log.Fatalf("setting up zap logger: %v", err)
	}
	defer zapLogger.Sync()

	var logger core.Logger = zapLogger
	if !conf.Debug {
		rollbarLogger := logsvc.NewRollbarLogger(zapLogger, conf)
		rollbarLogger.Enable(conf.RollbarToken != "")
		logger = rollbarLogger
	}

	ctx := context.Background()

	// set up settings store
	repo, closer, err := storage.OpenSettings(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening settings store: %v", err), err)
	}
	defer func() {
		if err = closer.Close(); err != nil {
			logger.Error("closing settings store", err)
		}
	}()

	// set up services
	uploader, mediaDir, err := setUpUploader(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up uploads: %v", err), err)
	}
	if closer, ok := uploader.(io.Closer); ok {
		defer func() {
			if err = closer.Close(); err != nil {
				logger.Error("closing uploader", err)
			}
		}()
	}
	svc := resource.NewService(repo, cache.NewFileCache(conf.CachePath), uploader, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	resource.RegisterValidators(validate, translator)

	if err = svc.Load(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("loading resources: %v", err), err)
	}
	if svc.FromCache() {
		logger.Warn("settings store unreachable, serving the cached resources")
	}

	refresher := syncsvc.NewRefresher(svc, logger)
	if err = refresher.Start(conf.SyncInterval); err != nil {
		logger.Fatal(fmt.Sprintf("starting refresher: %v", err), err)
	}
	defer refresher.Stop()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Service:    svc,
			Validate:   validate,
			Translator: translator,
			MediaDir:   mediaDir,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}

		if svc.Dirty() {
			logger.Warn("shutting down with unsaved resource changes")
		}
	}
}

// setUpUploader returns the configured uploader and, for local uploads, the directory to serve.
func setUpUploader(ctx context.Context, conf *core.Config) (resource.Uploader, string, error) {
	switch conf.Upload.Driver {
	case "local", "":
		return uploadsvc.NewLocalUploader(conf.Upload.Dir, conf.Upload.BaseURL), conf.Upload.Dir, nil
	case "gcs":
		u, err := uploadsvc.NewGCSUploader(ctx, conf.Upload.Bucket, conf.Upload.BaseURL)
		if err != nil {
			return nil, "", err
		}
		return u, "", nil
	}
	return nil, "", errors.Errorf("unknown upload driver %q", conf.Upload.Driver)
}
