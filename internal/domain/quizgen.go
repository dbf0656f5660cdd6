package domain

import (
	"context"
	"io"
)

// BackendCall is the payload for a single model request.
type BackendCall struct {
	Prompt string
	APIKey string
	Model  ModelDescriptor
}

// GenerationBackend performs exactly one request against one model and
// returns the raw text the model produced. Failures are reported as
// *BackendStatusError (HTTP answered with an error status) or
// *BackendTransportError (the request never got an answer).
type GenerationBackend interface {
	Call(ctx context.Context, call BackendCall) (string, error)
}

// BackendResolver picks the backend that speaks a model's wire protocol.
type BackendResolver interface {
	BackendFor(model ModelDescriptor) (GenerationBackend, error)
}

// UploadedFile is a document handed to the extraction service.
type UploadedFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// SupportedExtensions lists the document types the extraction service accepts.
var SupportedExtensions = []string{".pdf", ".docx", ".doc", ".pptx", ".ppt", ".txt"}

// TextExtractor turns uploaded documents into combined plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, files []UploadedFile) (string, error)
	Health(ctx context.Context) error
}
