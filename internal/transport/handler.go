package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-kyc-intake/internal/config"
	apperrors "go-kyc-intake/internal/errors"
	"go-kyc-intake/internal/logger"
	"go-kyc-intake/internal/observer"
	"go-kyc-intake/internal/service"
	"go-kyc-intake/internal/strategy"
)

// VerifyRequest is the JSON body of a single verification call.
type VerifyRequest struct {
	ImageRef     string `json:"image_ref" binding:"required"`
	DocumentType string `json:"document_type" binding:"required"`
	OCRText      string `json:"ocr_text,omitempty"`
	ExpectedText string `json:"expected_text,omitempty"`
}

// BatchRequest is the JSON body of a batch verification call.
type BatchRequest struct {
	Submissions []VerifyRequest `json:"submissions" binding:"required,min=1,max=32"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the HTTP API.
func NewHandler(svc service.VerificationService, counters *observer.CounterObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck(counters))
	v1 := r.Group("/api/v1")
	v1.POST("/verify", verify(svc, cfg))
	v1.POST("/verify/batch", verifyBatch(svc, cfg))

	return r
}

func verify(svc service.VerificationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		requestID := uuid.NewString()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": requestID,
			"ip":         c.ClientIP(),
		}).Info("Processing verification request")

		var req VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("request_id", requestID).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		rep, err := svc.Verify(ctx, toServiceRequest(req))
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": requestID,
				"image_ref":  req.ImageRef,
			}).Error("Verification failed")
			respondError(c, determineStatusCode(err), "verification failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"request_id":         requestID,
			"document_type":      req.DocumentType,
			"score":              rep.Score,
			"status":             rep.Status,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Verification completed")

		c.JSON(http.StatusOK, rep)
	}
}

func verifyBatch(svc service.VerificationService, cfg *config.Config) gin.HandlerFunc {
	type batchEntry struct {
		Index  int         `json:"index"`
		Report interface{} `json:"report,omitempty"`
		Error  string      `json:"error,omitempty"`
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		serviceReqs := make([]service.VerifyRequest, len(req.Submissions))
		for i, sub := range req.Submissions {
			serviceReqs[i] = toServiceRequest(sub)
		}

		results := svc.VerifyBatch(ctx, serviceReqs)
		entries := make([]batchEntry, len(results))
		for i, res := range results {
			entries[i] = batchEntry{Index: res.Index}
			if res.Err != nil {
				entries[i].Error = res.Err.Error()
			} else {
				entries[i].Report = res.Report
			}
		}
		c.JSON(http.StatusOK, gin.H{"results": entries})
	}
}

func toServiceRequest(req VerifyRequest) service.VerifyRequest {
	return service.VerifyRequest{
		ImageRef:     req.ImageRef,
		Type:         strategy.DocumentType(req.DocumentType),
		OCRText:      req.OCRText,
		ExpectedText: req.ExpectedText,
	}
}

func healthCheck(counters *observer.CounterObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "available",
			"version": "1.0.0",
			"time":    time.Now().UTC().Format(time.RFC3339),
		}
		if counters != nil {
			body["verifications"] = counters.Snapshot()
		}
		c.JSON(http.StatusOK, body)
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
