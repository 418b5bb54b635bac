package container

import (
	"net/http"

	"go-kyc-intake/internal/checks"
	"go-kyc-intake/internal/config"
	"go-kyc-intake/internal/factory"
	"go-kyc-intake/internal/logger"
	"go-kyc-intake/internal/observer"
	"go-kyc-intake/internal/ocr"
	"go-kyc-intake/internal/repository"
	"go-kyc-intake/internal/service"
	"go-kyc-intake/internal/transport"
	"go-kyc-intake/pkg/report"
)

// Container wires all application dependencies.
type Container struct {
	cfg      *config.Config
	counters *observer.CounterObserver
	svc      service.VerificationService
	handler  http.Handler
}

// NewContainer builds the dependency graph from the configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	fetcher, err := factory.NewStorageFactory().CreateFetcher(cfg)
	if err != nil {
		return nil, err
	}
	source := repository.NewFetcherImageSource(fetcher)

	detector := checks.NewHTTPFaceDetector(cfg.FaceDetectorEndpoint, cfg.FaceDetectTimeout)

	var engine ocr.Engine
	if cfg.OCREnabled {
		engine = ocr.NewTesseractEngine(cfg.OCRLanguage)
	}

	publisher := observer.NewPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	counters := observer.NewCounterObserver()
	publisher.Subscribe(counters)

	evaluator := checks.NewEvaluator(checks.DefaultThresholds())

	svc := service.NewVerificationService(
		source,
		evaluator,
		detector,
		engine,
		report.DefaultWeights(),
		cfg.NormalizeTargetSize,
		publisher,
	)

	return &Container{
		cfg:      cfg,
		counters: counters,
		svc:      svc,
		handler:  transport.NewHandler(svc, counters, cfg),
	}, nil
}

// Handler returns the HTTP API root handler.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Service returns the verification service, mainly for embedding callers.
func (c *Container) Service() service.VerificationService {
	return c.svc
}
