// Package container wires the application's dependency graph.
package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go-dental-review/internal/appointment"
	"go-dental-review/internal/config"
	"go-dental-review/internal/detector"
	"go-dental-review/internal/identity"
	"go-dental-review/internal/logger"
	"go-dental-review/internal/notify"
	"go-dental-review/internal/quality"
	"go-dental-review/internal/repository"
	"go-dental-review/internal/service"
	"go-dental-review/internal/storage"
	"go-dental-review/internal/store"
	"go-dental-review/internal/transport"
	"go-dental-review/internal/workflow"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	store     store.Store
	payloads  storage.PayloadStore
	repos     *repository.Repositories
	inbox     *notify.Inbox
	workflow  *workflow.Workflow
	pipeline  *service.Pipeline
	pool      *service.WorkerPool
	identity  *identity.Service
	scheduler *appointment.Scheduler
	handler   http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	recordStore, err := newRecordStore(cfg)
	if err != nil {
		return nil, err
	}
	payloads, err := newPayloadStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repos := repository.New(recordStore)

	// Every emitted event lands in the inbox and the structured log.
	inbox := notify.NewInbox(repos.Notifications)
	dispatcher := notify.NewMultiDispatcher(inbox, notify.NewLoggingDispatcher(nil))

	wf := workflow.New(repos, dispatcher)

	pool := service.NewWorkerPool(cfg.DetectionWorkers)
	pool.Start()

	seed := time.Now().UnixNano()
	pipeline := service.NewPipeline(
		wf,
		quality.NewSimulatedEvaluator(seed),
		detector.NewSimulatedDetector(seed),
		payloads,
		pool,
		cfg.AnalysisTimeout,
	)

	id := identity.New(repos.Users)
	if err := id.Seed(ctx, identity.DefaultAccounts()); err != nil {
		return nil, fmt.Errorf("failed to seed accounts: %w", err)
	}

	scheduler := appointment.New(repos, dispatcher, seed)
	doctors, err := id.Doctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctors: %w", err)
	}
	if err := scheduler.EnsureCalendar(ctx, doctors); err != nil {
		return nil, fmt.Errorf("failed to build slot calendar: %w", err)
	}

	fetcher := storage.NewHTTPPayloadFetcher(cfg.MaxRequestBodySize)
	handler := transport.NewHandler(pipeline, wf, id, inbox, scheduler, fetcher, cfg)

	return &Container{
		config:    cfg,
		store:     recordStore,
		payloads:  payloads,
		repos:     repos,
		inbox:     inbox,
		workflow:  wf,
		pipeline:  pipeline,
		pool:      pool,
		identity:  id,
		scheduler: scheduler,
		handler:   handler,
	}, nil
}

func newRecordStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		s, err := store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

func newPayloadStore(ctx context.Context, cfg *config.Config) (storage.PayloadStore, error) {
	switch cfg.PayloadBackend {
	case config.PayloadAzure:
		s, err := storage.NewAzurePayloadStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure payload store: %w", err)
		}
		return s, nil
	case config.PayloadMinio:
		s, err := storage.NewMinioPayloadStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			Region:    cfg.MinioRegion,
			Bucket:    cfg.MinioBucket,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio payload store: %w", err)
		}
		return s, nil
	default:
		return storage.NewMemoryPayloadStore(), nil
	}
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close drains the worker pool and releases backend connections.
func (c *Container) Close() {
	c.pool.Close()
	c.pool.Wait()

	if closer, ok := c.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.WithError(err).Error("Failed to close record store")
		}
	}
}
