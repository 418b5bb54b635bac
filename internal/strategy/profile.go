// Package strategy maps a submission's document type to the set of checks
// and pre-processing steps that apply to it.
package strategy

import "fmt"

// DocumentType identifies what the submitted image is supposed to show.
type DocumentType string

const (
	// DocumentPortrait is a selfie/portrait photo of the holder.
	DocumentPortrait DocumentType = "portrait"
	// DocumentFront is the face of an identity document (photo + signature).
	DocumentFront DocumentType = "document_front"
	// DocumentBack is the reverse side carrying the printed licence data.
	DocumentBack DocumentType = "document_back"
)

// Profile selects the pre-processing and check slots for one document type.
type Profile struct {
	Type DocumentType

	// NormalizeSquare center-crops and resizes before analysis (portraits).
	NormalizeSquare bool
	// AutoCropBorders trims uniform scan margins before analysis (documents).
	AutoCropBorders bool

	RunPhoto     bool
	RunFace      bool
	RunSignature bool
	RunFront     bool
	RunBack      bool
	RunOCR       bool
}

// ProfileFor returns the profile for a document type.
func ProfileFor(t DocumentType) (Profile, error) {
	switch t {
	case DocumentPortrait:
		return Profile{
			Type:            t,
			NormalizeSquare: true,
			RunPhoto:        true,
			RunFace:         true,
		}, nil
	case DocumentFront:
		return Profile{
			Type:            t,
			AutoCropBorders: true,
			RunPhoto:        true,
			RunFace:         true,
			RunSignature:    true,
			RunFront:        true,
		}, nil
	case DocumentBack:
		return Profile{
			Type:            t,
			AutoCropBorders: true,
			RunBack:         true,
			RunOCR:          true,
		}, nil
	default:
		return Profile{}, fmt.Errorf("unknown document type: %q", t)
	}
}
