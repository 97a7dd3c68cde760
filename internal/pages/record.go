package pages

import (
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/panelbabel/panelbabel/internal/translate"
)

// Status is the translation lifecycle state of a page.
//
// Valid transitions: pending -> analyzing -> complete | error, plus
// error -> analyzing on retry and complete -> analyzing on explicit
// re-translation. Extractors always emit pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// PageRecord is one extracted page image plus its translation state.
type PageRecord struct {
	ID           string                  `json:"id"`
	ImageData    []byte                  `json:"-"`
	MIMEType     string                  `json:"mime_type"`
	Preview      string                  `json:"preview"`
	SourceName   string                  `json:"source_name"`
	Status       Status                  `json:"status"`
	Result       *translate.PageAnalysis `json:"result,omitempty"`
	ErrorMessage string                  `json:"error_message,omitempty"`
}

// NewRecord wraps a decoded image as a pending page. The preview is a
// data URL so the UI can render it without a second request.
func NewRecord(imageData []byte, mimeType, sourceName string) PageRecord {
	return PageRecord{
		ID:         uuid.NewString(),
		ImageData:  imageData,
		MIMEType:   mimeType,
		Preview:    "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(imageData),
		SourceName: sourceName,
		Status:     StatusPending,
	}
}

// PagePatch is a merge-patch update for a page record. Nil fields are
// left unchanged.
type PagePatch struct {
	Status       *Status
	Result       *translate.PageAnalysis
	ErrorMessage *string
}

func statusPtr(s Status) *Status { return &s }

// PatchStatus returns a patch that only changes the status.
func PatchStatus(s Status) PagePatch {
	return PagePatch{Status: statusPtr(s)}
}

// PatchComplete returns a patch recording a successful translation.
func PatchComplete(result *translate.PageAnalysis) PagePatch {
	empty := ""
	return PagePatch{Status: statusPtr(StatusComplete), Result: result, ErrorMessage: &empty}
}

// PatchError returns a patch recording a failed translation.
func PatchError(message string) PagePatch {
	return PagePatch{Status: statusPtr(StatusError), ErrorMessage: &message}
}
