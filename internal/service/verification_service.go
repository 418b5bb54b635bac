package service

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-kyc-intake/internal/checks"
	apperrors "go-kyc-intake/internal/errors"
	"go-kyc-intake/internal/imaging"
	"go-kyc-intake/internal/observer"
	"go-kyc-intake/internal/ocr"
	"go-kyc-intake/internal/repository"
	"go-kyc-intake/internal/strategy"
	"go-kyc-intake/pkg/report"
)

// autoCropTolerance is the luminance spread under which a scan margin counts
// as uniform and gets trimmed.
const autoCropTolerance = 12.0

// VerifyRequest describes one submission.
type VerifyRequest struct {
	// ImageRef locates the submitted image (URL, blob ref or relative path,
	// depending on the configured storage backend).
	ImageRef string

	Type strategy.DocumentType

	// OCRText is back-side text already produced by an external OCR engine.
	// When empty and the embedded engine is configured, the service runs
	// recognition itself.
	OCRText string

	// ExpectedText carries the holder's declared details for cross-checking
	// against the recognized text. Optional.
	ExpectedText string
}

// BatchResult pairs one batch entry with its outcome.
type BatchResult struct {
	Index  int                      `json:"index"`
	Report *report.ValidationReport `json:"report,omitempty"`
	Err    error                    `json:"-"`
}

// VerificationService runs the intake pipeline for submitted images.
type VerificationService interface {
	Verify(ctx context.Context, req VerifyRequest) (*report.ValidationReport, error)
	VerifyBatch(ctx context.Context, reqs []VerifyRequest) []BatchResult
}

type verificationService struct {
	source        repository.ImageSource
	evaluator     *checks.Evaluator
	detector      checks.FaceDetector
	engine        ocr.Engine // nil when embedded OCR is disabled
	parser        *ocr.LicenceParser
	weights       report.Weights
	normalizeSize int
	publisher     observer.Subject
	pool          *WorkerPool
}

// NewVerificationService wires the pipeline. engine may be nil; the ocr check
// is then skipped unless the caller supplies pre-extracted text.
func NewVerificationService(
	source repository.ImageSource,
	evaluator *checks.Evaluator,
	detector checks.FaceDetector,
	engine ocr.Engine,
	weights report.Weights,
	normalizeSize int,
	publisher observer.Subject,
) VerificationService {
	pool := NewWorkerPool(0)
	pool.Start()
	return &verificationService{
		source:        source,
		evaluator:     evaluator,
		detector:      detector,
		engine:        engine,
		parser:        ocr.NewLicenceParser(),
		weights:       weights,
		normalizeSize: normalizeSize,
		publisher:     publisher,
		pool:          pool,
	}
}

// Verify runs the full pipeline for one submission: fetch, decode, optional
// geometric normalization, pixel statistics, the profile's checks, OCR
// extraction, then aggregation into a finalized report.
func (s *verificationService) Verify(ctx context.Context, req VerifyRequest) (*report.ValidationReport, error) {
	requestID := uuid.NewString()
	start := time.Now()
	s.notify(ctx, observer.VerificationEvent{
		EventType:    observer.VerificationStarted,
		Timestamp:    start,
		RequestID:    requestID,
		DocumentType: string(req.Type),
	})

	rep, err := s.verify(ctx, req)
	if err != nil {
		s.notify(ctx, observer.VerificationEvent{
			EventType:    observer.VerificationFailed,
			Timestamp:    time.Now(),
			RequestID:    requestID,
			DocumentType: string(req.Type),
			Elapsed:      time.Since(start),
			ErrorMessage: err.Error(),
		})
		return nil, err
	}

	s.notify(ctx, observer.VerificationEvent{
		EventType:    observer.VerificationCompleted,
		Timestamp:    time.Now(),
		RequestID:    requestID,
		DocumentType: string(req.Type),
		Score:        rep.Score,
		Status:       rep.Status,
		Elapsed:      time.Since(start),
	})
	return rep, nil
}

func (s *verificationService) verify(ctx context.Context, req VerifyRequest) (*report.ValidationReport, error) {
	profile, err := strategy.ProfileFor(req.Type)
	if err != nil {
		return nil, apperrors.NewValidationError("unsupported document type", err)
	}

	rep := &report.ValidationReport{TimingsMs: make(map[string]float64)}

	raw, err := s.timedFetch(ctx, rep, req.ImageRef)
	if err != nil {
		return nil, err
	}

	stageStart := time.Now()
	img, err := imaging.Decode(raw)
	if err != nil {
		return nil, err
	}
	img = s.preprocess(img, profile)
	sample := imaging.SampleFromImage(img)
	stats := imaging.ComputeStats(sample)
	rep.TimingsMs["analysis"] = msSince(stageStart)

	stageStart = time.Now()
	s.runChecks(ctx, rep, profile, req, raw, sample, stats)
	rep.TimingsMs["checks"] = msSince(stageStart)

	rep.Score = report.ComputeScore(rep, s.weights)
	report.FinalizeStatus(rep)
	rep.Suggestions = collectSuggestions(rep)
	return rep, nil
}

func (s *verificationService) timedFetch(ctx context.Context, rep *report.ValidationReport, ref string) ([]byte, error) {
	stageStart := time.Now()
	raw, err := s.source.Load(ctx, ref)
	rep.TimingsMs["fetch"] = msSince(stageStart)
	if err != nil {
		if err == repository.ErrInvalidImageRef {
			return nil, apperrors.NewValidationError("invalid image reference", err)
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	return raw, nil
}

func (s *verificationService) preprocess(img image.Image, profile strategy.Profile) image.Image {
	if profile.NormalizeSquare {
		normalized, _, _ := imaging.NormalizeSquare(img, s.normalizeSize)
		return normalized
	}
	if profile.AutoCropBorders {
		cropped, _ := imaging.AutoCropBorders(img, autoCropTolerance)
		return cropped
	}
	return img
}

func (s *verificationService) runChecks(
	ctx context.Context,
	rep *report.ValidationReport,
	profile strategy.Profile,
	req VerifyRequest,
	raw []byte,
	sample *imaging.ImageSample,
	stats imaging.ImageStats,
) {
	if profile.RunPhoto {
		result := s.evaluator.Photo(stats)
		rep.Photo = &result
	}
	if profile.RunFace {
		result := s.evaluator.Face(ctx, s.detector, raw)
		rep.Face = &result
	}
	if profile.RunSignature {
		result := s.evaluator.Signature(sample)
		rep.Signature = &result
	}
	if profile.RunFront {
		result := s.evaluator.DocumentSide(stats, "front")
		rep.Front = &result
	}
	if profile.RunBack {
		result := s.evaluator.DocumentSide(stats, "back")
		rep.Back = &result
	}
	if profile.RunOCR {
		if result, ok := s.runOCRCheck(ctx, rep, req, raw); ok {
			rep.OCR = &result
		}
	}
}

// runOCRCheck resolves the back-side text, preferring text supplied by the
// caller over running the embedded engine. With neither available the ocr
// check slot stays absent, which the scorer treats as out of scope rather
// than failed.
func (s *verificationService) runOCRCheck(ctx context.Context, rep *report.ValidationReport, req VerifyRequest, raw []byte) (report.CheckResult, bool) {
	text := req.OCRText
	if text == "" && s.engine != nil {
		stageStart := time.Now()
		recognized, err := s.engine.Recognize(ctx, raw)
		rep.TimingsMs["ocr"] = msSince(stageStart)
		if err != nil {
			return report.CheckResult{}, false
		}
		text = recognized
	}
	if text == "" {
		return report.CheckResult{}, false
	}

	extract := s.parser.Parse(text)
	return s.evaluator.OCRText(extract, text, req.ExpectedText), true
}

// VerifyBatch runs the submissions through the worker pool and returns the
// results in input order.
func (s *verificationService) VerifyBatch(ctx context.Context, reqs []VerifyRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		i, req := i, req
		wg.Add(1)
		s.pool.Submit(func() {
			defer wg.Done()
			rep, err := s.Verify(ctx, req)
			results[i] = BatchResult{Index: i, Report: rep, Err: err}
		})
	}
	wg.Wait()
	return results
}

func (s *verificationService) notify(ctx context.Context, event observer.VerificationEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

func collectSuggestions(rep *report.ValidationReport) []string {
	var out []string
	out = append(out, checks.Suggestion("photo", rep.Photo)...)
	out = append(out, checks.Suggestion("face", rep.Face)...)
	out = append(out, checks.Suggestion("signature", rep.Signature)...)
	out = append(out, checks.Suggestion("front", rep.Front)...)
	out = append(out, checks.Suggestion("back", rep.Back)...)
	out = append(out, checks.Suggestion("ocr", rep.OCR)...)
	return out
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
