package inspect

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Info describes an uploaded document after inspection
type Info struct {
	MimeType  string `json:"mime_type"`
	PageCount int    `json:"page_count"`
}

// Inspector derives document metadata (mime type, PDF page count) from
// uploaded content before it is persisted.
type Inspector struct {
	logger *zap.Logger
}

// NewInspector creates a new document inspector
func NewInspector(logger *zap.Logger) *Inspector {
	return &Inspector{logger: logger}
}

// Inspect examines uploaded content. PDFs are opened with mupdf to count
// pages; other supported types get a mime type and a zero page count.
func (i *Inspector) Inspect(fileName string, content []byte) (*Info, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	mime, ok := mimeTypes[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	info := &Info{MimeType: mime}
	if ext != ".pdf" {
		return info, nil
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		i.logger.Warn("Failed to open PDF for inspection",
			zap.String("file", fileName),
			zap.Error(err))
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	info.PageCount = doc.NumPage()

	i.logger.Debug("Inspected PDF",
		zap.String("file", fileName),
		zap.Int("page_count", info.PageCount))

	return info, nil
}

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".png":  "image/png",
}

// MimeForExtension returns the mime type the console serves for an
// extension, or an empty string when unsupported
func MimeForExtension(ext string) string {
	return mimeTypes[strings.ToLower(ext)]
}
