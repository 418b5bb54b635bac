// Package checks contains the per-check evaluators feeding the validation
// report: photo quality, face presence, signature presence, document
// legibility and OCR validity. Each evaluator reads already-computed image
// descriptors and returns an immutable CheckResult; none of them raises.
package checks

import (
	"context"
	"errors"
	"fmt"

	"go-kyc-intake/internal/imaging"
	"go-kyc-intake/internal/ocr"
	"go-kyc-intake/pkg/report"
)

// Thresholds are the fixed empirical limits the evaluators compare the image
// descriptors against.
type Thresholds struct {
	// Luminance band a usable photo must fall into (0-255).
	MinBrightness float64
	MaxBrightness float64

	// Minimum luminance spread; below this the frame is essentially flat.
	MinContrast float64

	// Laplacian-variance floors. Documents must be sharper than portraits
	// for the printed text to survive recognition.
	MinSharpness         float64
	MinDocumentSharpness float64

	// Border-ring spread above which the backdrop is considered cluttered.
	MaxBackgroundStdDev float64

	// Channel-mean spread above which a color cast is flagged (0-255).
	MaxChannelDelta float64

	// Minimum dimensions for a legible document face.
	MinDocumentWidth  int
	MinDocumentHeight int

	// Acceptable dark-ink coverage band for the signature zone.
	MinInkCoverage float64
	MaxInkCoverage float64

	// Minimum detector confidence for a face to count as present.
	MinFaceConfidence float64
}

// DefaultThresholds returns the production limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinBrightness:        80.0,
		MaxBrightness:        220.0,
		MinContrast:          15.0,
		MinSharpness:         100.0,
		MinDocumentSharpness: 300.0,
		MaxBackgroundStdDev:  60.0,
		MaxChannelDelta:      50.0,
		MinDocumentWidth:     600,
		MinDocumentHeight:    400,
		MinInkCoverage:       0.004,
		MaxInkCoverage:       0.35,
		MinFaceConfidence:    0.5,
	}
}

// Evaluator runs the individual checks against a submission.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

// Photo assesses general photographic quality of the submitted image.
func (e *Evaluator) Photo(stats imaging.ImageStats) report.CheckResult {
	var messages []string
	if stats.Width <= 0 || stats.Height <= 0 {
		messages = append(messages, "Image vide ou illisible. Reprenez la photo.")
	}
	if stats.Brightness < e.thresholds.MinBrightness {
		messages = append(messages, "Photo trop sombre. Reprenez la photo avec plus de lumière.")
	} else if stats.Brightness > e.thresholds.MaxBrightness {
		messages = append(messages, "Photo trop claire. Évitez le contre-jour et le flash direct.")
	}
	if stats.Contrast < e.thresholds.MinContrast {
		messages = append(messages, "Photo trop uniforme. Vérifiez que le sujet est bien visible.")
	}
	if stats.Blur < e.thresholds.MinSharpness {
		messages = append(messages, "Photo floue. Tenez l'appareil immobile et reprenez la photo.")
	}
	if stats.BackgroundStdDev > e.thresholds.MaxBackgroundStdDev {
		messages = append(messages, "Arrière-plan trop chargé. Placez-vous devant un fond uni.")
	}
	if stats.RGBBalanceDelta > e.thresholds.MaxChannelDelta {
		messages = append(messages, "Couleurs anormales. Désactivez les filtres et utilisez une lumière neutre.")
	}

	return report.CheckResult{
		OK:       len(messages) == 0,
		Messages: messages,
		Stats: report.Stats{
			"brightness":         report.Number(stats.Brightness),
			"contrast":           report.Number(stats.Contrast),
			"blur":               report.Number(stats.Blur),
			"background_std_dev": report.Number(stats.BackgroundStdDev),
			"rgb_balance_delta":  report.Number(stats.RGBBalanceDelta),
		},
	}
}

// DocumentSide assesses legibility of a document face. side is "front" or
// "back"; both use the stricter document sharpness floor.
func (e *Evaluator) DocumentSide(stats imaging.ImageStats, side string) report.CheckResult {
	var messages []string
	if stats.Width < e.thresholds.MinDocumentWidth || stats.Height < e.thresholds.MinDocumentHeight {
		messages = append(messages, "Image trop petite. Rapprochez-vous du document et vérifiez que les quatre coins sont visibles.")
	}
	if stats.Blur < e.thresholds.MinDocumentSharpness {
		messages = append(messages, "Document flou. Posez le document à plat et stabilisez l'appareil.")
	}
	if stats.Brightness < e.thresholds.MinBrightness {
		messages = append(messages, "Document trop sombre. Ajoutez de la lumière sans créer de reflet.")
	} else if stats.Brightness > e.thresholds.MaxBrightness {
		messages = append(messages, "Document surexposé. Éloignez la source de lumière directe.")
	}

	return report.CheckResult{
		OK:       len(messages) == 0,
		Messages: messages,
		Stats: report.Stats{
			"side":       report.String(side),
			"width":      report.Number(float64(stats.Width)),
			"height":     report.Number(float64(stats.Height)),
			"blur":       report.Number(stats.Blur),
			"brightness": report.Number(stats.Brightness),
		},
	}
}

// signatureInkThreshold is the luminance below which a pixel counts as ink.
const signatureInkThreshold = 90

// Signature checks for a handwritten signature by measuring dark-ink
// coverage over the bottom third of the luminance plane, where the signature
// zone sits on the supported documents.
func (e *Evaluator) Signature(sample *imaging.ImageSample) report.CheckResult {
	coverage := inkCoverage(sample)

	var messages []string
	switch {
	case coverage < e.thresholds.MinInkCoverage:
		messages = append(messages, "Signature absente ou trop pâle. Vérifiez que le document est signé.")
	case coverage > e.thresholds.MaxInkCoverage:
		messages = append(messages, "Zone de signature illisible. Évitez les ombres portées sur le document.")
	}

	return report.CheckResult{
		OK:       len(messages) == 0,
		Messages: messages,
		Stats: report.Stats{
			"ink_coverage": report.Number(coverage),
		},
	}
}

func inkCoverage(sample *imaging.ImageSample) float64 {
	if sample == nil || sample.Width <= 0 || sample.Height <= 0 {
		return 0
	}
	startY := sample.Height * 2 / 3
	total := 0
	dark := 0
	for y := startY; y < sample.Height; y++ {
		row := y * sample.Width
		for x := 0; x < sample.Width; x++ {
			total++
			if sample.Lum[row+x] < signatureInkThreshold {
				dark++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(dark) / float64(total)
}

// Face runs the external detector over the submitted image. Detector outages
// are reported with the documented unavailability marker so the scorer can
// compensate instead of counting a hard failure.
func (e *Evaluator) Face(ctx context.Context, detector FaceDetector, imageBytes []byte) report.CheckResult {
	detection, err := detector.Detect(ctx, imageBytes)
	if err != nil {
		result := report.CheckResult{
			OK:       false,
			Messages: []string{report.FaceUnavailableMarker},
		}
		if !errors.Is(err, ErrDetectorUnavailable) {
			result.Stats = report.Stats{"detector_error": report.String(err.Error())}
		}
		return result
	}

	var messages []string
	switch {
	case detection.Count == 0:
		messages = append(messages, "Aucun visage détecté. Cadrez votre visage au centre de la photo.")
	case detection.Count > 1:
		messages = append(messages, "Plusieurs visages détectés. La photo ne doit montrer que vous.")
	case detection.Confidence < e.thresholds.MinFaceConfidence:
		messages = append(messages, "Visage difficile à reconnaître. Retirez lunettes de soleil, masque ou couvre-chef.")
	}

	return report.CheckResult{
		OK:       len(messages) == 0,
		Messages: messages,
		Stats: report.Stats{
			"face_count": report.Number(float64(detection.Count)),
			"confidence": report.Number(detection.Confidence),
			"box_x":      report.Number(float64(detection.Box.X)),
			"box_y":      report.Number(float64(detection.Box.Y)),
			"box_width":  report.Number(float64(detection.Box.Width)),
			"box_height": report.Number(float64(detection.Box.Height)),
		},
	}
}

// OCRText assesses whether the recognized back-side text looks like a valid
// licence reverse: at least one vehicle category and both validity dates.
// When the caller supplied the holder's declared details, the recognized text
// is cross-checked against them.
func (e *Evaluator) OCRText(extract ocr.LicenceBackExtract, rawText, expectedText string) report.CheckResult {
	var messages []string
	if len(extract.Categories) == 0 {
		messages = append(messages, "Catégories de véhicules introuvables au verso du permis.")
	}
	if extract.IssueDate == "" || extract.ExpiryDate == "" {
		messages = append(messages, "Dates de validité introuvables au verso du permis.")
	}

	mrzFound, mrzValid := ocr.DetectMRZ(rawText)
	docType := "unknown"
	switch {
	case len(extract.Categories) > 0:
		docType = "licence_back"
	case mrzFound:
		docType = "passport"
	}

	stats := report.Stats{
		"docTypeDetected": report.String(docType),
		"mrzValid":        report.Bool(mrzValid),
		"categories":      report.Number(float64(len(extract.Categories))),
	}

	if expectedText != "" {
		similarity := ocr.TextSimilarity(expectedText, rawText)
		stats["text_similarity"] = report.Number(similarity)
		stats["word_error_rate"] = report.Number(ocr.WordErrorRate(expectedText, rawText))
		if similarity < 0.5 {
			messages = append(messages, "Le texte reconnu ne correspond pas aux informations déclarées.")
		}
	}

	return report.CheckResult{
		OK:       len(messages) == 0,
		Messages: messages,
		Stats:    stats,
	}
}

// Suggestion folds a failed check's messages into user-facing suggestions,
// prefixed by the check slot that produced them.
func Suggestion(slot string, result *report.CheckResult) []string {
	if result == nil || result.OK {
		return nil
	}
	out := make([]string, 0, len(result.Messages))
	for _, m := range result.Messages {
		out = append(out, fmt.Sprintf("[%s] %s", slot, m))
	}
	return out
}
