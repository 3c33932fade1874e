package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/upload"
	"github.com/dmutombo/requestdesk/pkg/utils"
)

// LocalTransport implements upload.Transport against local disk storage.
// Files land in a staging folder until their request is saved and the
// attachment rows point at a request folder.
type LocalTransport struct {
	storage FileStorage
	baseDir string
	logger  *zap.Logger

	mu    sync.Mutex
	paths map[string]string // attachment id -> file path
}

// NewLocalTransport creates a transport that stages uploads under
// baseDir/staging
func NewLocalTransport(storage FileStorage, baseDir string, logger *zap.Logger) *LocalTransport {
	return &LocalTransport{
		storage: storage,
		baseDir: baseDir,
		logger:  logger,
		paths:   make(map[string]string),
	}
}

// Upload writes the file to the staging folder and returns its generated id
// and a file URL
func (t *LocalTransport) Upload(ctx context.Context, file upload.File, onProgress upload.ProgressFunc) (*upload.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	onProgress(0)

	id := uuid.NewString()
	safeName := utils.SanitizeFileName(file.Name)
	path := filepath.Join(t.baseDir, "staging", id+"_"+safeName)

	if err := t.storage.SaveFile(path, file.Content); err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	onProgress(100)

	t.mu.Lock()
	t.paths[id] = path
	t.mu.Unlock()

	t.logger.Debug("Staged upload",
		zap.String("id", id),
		zap.String("file", safeName))

	return &upload.Result{ID: id, URL: "file://" + path}, nil
}

// Delete removes a staged file. Unknown ids answer with a negative status
// rather than an error, matching the remote transport's contract.
func (t *LocalTransport) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	t.mu.Lock()
	path, ok := t.paths[id]
	t.mu.Unlock()
	if !ok {
		return false, nil
	}

	if err := t.storage.DeleteFile(path); err != nil {
		return false, err
	}

	t.mu.Lock()
	delete(t.paths, id)
	t.mu.Unlock()
	return true, nil
}

// Path returns the staged path for an attachment id
func (t *LocalTransport) Path(id string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	path, ok := t.paths[id]
	return path, ok
}
