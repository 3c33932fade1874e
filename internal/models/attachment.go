package models

import "time"

// Attachment represents attachment metadata in database
type Attachment struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id,omitempty"` // empty until the request is saved
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	FileSize  int64     `json:"file_size"`
	MimeType  string    `json:"mime_type"`
	PageCount int       `json:"page_count,omitempty"` // PDFs only
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentFile represents uploaded file content before it hits storage
type AttachmentFile struct {
	Content  []byte
	FileName string
	MimeType string
	Size     int64
}
