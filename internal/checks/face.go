package checks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrDetectorUnavailable signals that face detection was structurally
// impossible (service unreachable, not configured), as opposed to having run
// and found no face.
var ErrDetectorUnavailable = errors.New("face detector unavailable")

// FaceBox is the bounding box of the most confident detection, in pixels.
type FaceBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FaceDetection is the outcome reported by a face-detection collaborator.
type FaceDetection struct {
	Count      int     `json:"count"`
	Confidence float64 `json:"confidence"`
	Box        FaceBox `json:"box"`
}

// FaceDetector is the seam to the external face-detection collaborator.
type FaceDetector interface {
	Detect(ctx context.Context, imageBytes []byte) (*FaceDetection, error)
}

// HTTPFaceDetector calls a remote detection service over HTTP. Transport
// failures and gateway statuses surface as ErrDetectorUnavailable so callers
// can tell an outage apart from a negative detection.
type HTTPFaceDetector struct {
	endpoint string
	client   *http.Client
}

// NewHTTPFaceDetector builds a detector client. An empty endpoint yields a
// detector that always reports unavailability, which keeps the pipeline
// running in deployments without the face service.
func NewHTTPFaceDetector(endpoint string, timeout time.Duration) *HTTPFaceDetector {
	return &HTTPFaceDetector{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Detect posts the encoded image and decodes the detection response.
func (d *HTTPFaceDetector) Detect(ctx context.Context, imageBytes []byte) (*FaceDetection, error) {
	if d.endpoint == "" {
		return nil, ErrDetectorUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetectorUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusBadGateway:
		return nil, fmt.Errorf("%w: status %d", ErrDetectorUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("face detector returned status %d: %s", resp.StatusCode, body)
	}

	var detection FaceDetection
	if err := json.NewDecoder(resp.Body).Decode(&detection); err != nil {
		return nil, fmt.Errorf("decode detection response: %w", err)
	}
	return &detection, nil
}
