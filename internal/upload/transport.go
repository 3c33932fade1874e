package upload

import "context"

// File is a candidate file handed to SelectFiles.
type File struct {
	Name    string
	Size    int64
	Content []byte
}

// Result is what the transport returns for a completed upload.
type Result struct {
	ID  string
	URL string
}

// ProgressFunc receives upload progress as a percentage, 0-100. The
// transport may call it any number of times; the manager keeps the latest
// value per task.
type ProgressFunc func(percent int)

// Transport is the injected upload/delete primitive. Implementations must
// be safe for concurrent use: the manager runs one upload goroutine per
// accepted file with no queue or throttle.
type Transport interface {
	// Upload sends the file and reports progress through onProgress.
	Upload(ctx context.Context, file File, onProgress ProgressFunc) (*Result, error)

	// Delete removes a previously uploaded file. The bool is the server's
	// explicit status; only true confirms the removal.
	Delete(ctx context.Context, id string) (bool, error)
}

// AttachedFile is a file that completed upload and belongs to the form.
type AttachedFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// TaskStatus describes one in-flight upload for progress rendering.
type TaskStatus struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Percent  int    `json:"percent"`
}
