package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrTooManyFiles is returned when a batch would push the table past the
	// configured maximum; the whole batch is rejected
	ErrTooManyFiles = errors.New("too many files")

	// ErrFileNotFound is returned when a removal targets an unknown id
	ErrFileNotFound = errors.New("attached file not found")

	// ErrRemovalPending is returned when a removal is already in flight for the file
	ErrRemovalPending = errors.New("removal already in progress")

	// ErrDeleteRejected is returned when the delete transport answers with an
	// explicit negative status; the file stays attached
	ErrDeleteRejected = errors.New("delete rejected by transport")
)

// Config bounds what SelectFiles accepts.
type Config struct {
	MaxFileSize       int64
	AllowedExtensions []string
	MaxFiles          int
}

// DefaultConfig returns the limits the console ships with
func DefaultConfig() Config {
	return Config{
		MaxFileSize:       10 << 20, // 10 MB
		AllowedExtensions: []string{".pdf", ".doc", ".docx", ".txt", ".png"},
		MaxFiles:          5,
	}
}

// FilesChangedFunc receives the full attached collection after every change
type FilesChangedFunc func(files []AttachedFile)

// PreviewURLFunc produces a local preview URL for a file when no transport
// is configured (default/demo mode). Injected so headless tests can stub it.
type PreviewURLFunc func(file File) string

// task tracks one in-flight upload. Tasks are keyed by a generated id, not
// the file name, so two queued files with identical names never collide.
type task struct {
	id       string
	fileName string
	percent  int
}

// Manager mediates file add (validate, upload, attach) and remove (delete,
// detach) against the injected transport. Uploads run concurrently and
// settle independently; one failure never affects the others.
type Manager struct {
	cfg        Config
	transport  Transport
	previewURL PreviewURLFunc
	logger     *zap.Logger

	mu       sync.Mutex
	attached []AttachedFile
	tasks    map[string]*task
	removing map[string]bool
	lastErr  string
	onChange FilesChangedFunc

	wg sync.WaitGroup
}

// NewManager creates a manager. A nil transport enables the local fallback:
// generated ids and preview URLs, no network.
func NewManager(cfg Config, transport Transport, logger *zap.Logger) *Manager {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultConfig().MaxFileSize
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = DefaultConfig().AllowedExtensions
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = DefaultConfig().MaxFiles
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:       cfg,
		transport: transport,
		logger:    logger,
		tasks:     make(map[string]*task),
		removing:  make(map[string]bool),
	}
}

// SetOnFilesChanged registers the owner's change callback
func (m *Manager) SetOnFilesChanged(fn FilesChangedFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// SetPreviewURL registers the local preview capability for fallback mode
func (m *Manager) SetPreviewURL(fn PreviewURLFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previewURL = fn
}

// SelectFiles validates a batch of candidates and starts an independent
// upload for each accepted file. If accepting every candidate would exceed
// the maximum file count, the entire batch is rejected and nothing already
// attached or in flight is touched. Individual oversize or disallowed files
// are skipped with an error message naming them; the rest still upload.
func (m *Manager) SelectFiles(ctx context.Context, files []File) error {
	if len(files) == 0 {
		return nil
	}

	m.mu.Lock()
	current := len(m.attached) + len(m.tasks)
	if current+len(files) > m.cfg.MaxFiles {
		m.lastErr = fmt.Sprintf("cannot attach %d file(s): maximum of %d files per request", len(files), m.cfg.MaxFiles)
		m.mu.Unlock()
		m.logger.Warn("File batch rejected",
			zap.Int("current", current),
			zap.Int("candidates", len(files)),
			zap.Int("max", m.cfg.MaxFiles))
		return fmt.Errorf("%w: %d attached or in flight, %d candidates, max %d",
			ErrTooManyFiles, current, len(files), m.cfg.MaxFiles)
	}

	for _, f := range files {
		if msg := m.validate(f); msg != "" {
			m.lastErr = msg
			m.logger.Warn("File rejected", zap.String("file", f.Name), zap.String("reason", msg))
			continue
		}

		t := &task{id: uuid.NewString(), fileName: f.Name}
		m.tasks[t.id] = t

		m.wg.Add(1)
		go m.runUpload(ctx, t.id, f)
	}
	m.mu.Unlock()
	return nil
}

// validate checks one candidate against the configured limits; an empty
// string means accepted.
func (m *Manager) validate(f File) string {
	if f.Size > m.cfg.MaxFileSize {
		return fmt.Sprintf("%s exceeds the maximum file size of %d MB", f.Name, m.cfg.MaxFileSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	for _, allowed := range m.cfg.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return ""
		}
	}
	return fmt.Sprintf("%s has an unsupported file type (%s)", f.Name, ext)
}

// runUpload performs one upload and settles its task. Failure clears the
// task and records a message naming the file; the file joins neither
// collection.
func (m *Manager) runUpload(ctx context.Context, taskID string, f File) {
	defer m.wg.Done()

	var res *Result
	var err error

	if m.transport == nil {
		res = m.localResult(f)
		m.setProgress(taskID, 100)
	} else {
		res, err = m.transport.Upload(ctx, f, func(percent int) {
			m.setProgress(taskID, percent)
		})
	}

	m.mu.Lock()
	delete(m.tasks, taskID)

	if err != nil {
		m.lastErr = fmt.Sprintf("upload failed for %s", f.Name)
		m.mu.Unlock()
		m.logger.Warn("Upload failed",
			zap.String("file", f.Name),
			zap.Error(err))
		return
	}

	att := AttachedFile{ID: res.ID, Name: f.Name, URL: res.URL, Size: f.Size}
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	m.attached = append(m.attached, att)
	m.mu.Unlock()

	m.logger.Info("File attached",
		zap.String("id", att.ID),
		zap.String("file", att.Name),
		zap.Int64("size", att.Size))
	m.notify()
}

// localResult builds the fallback attachment used when no transport is set
func (m *Manager) localResult(f File) *Result {
	m.mu.Lock()
	preview := m.previewURL
	m.mu.Unlock()

	url := "file://" + f.Name
	if preview != nil {
		url = preview(f)
	}
	return &Result{ID: uuid.NewString(), URL: url}
}

// setProgress stores the latest percentage for a task, clamped to 0-100
func (m *Manager) setProgress(taskID string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[taskID]; ok {
		t.percent = percent
	}
}

// RemoveFile deletes the file remotely and detaches it only on an explicit
// success response. While the delete is pending the file is held in a
// removing state that blocks further attempts; failure leaves it attached.
func (m *Manager) RemoveFile(ctx context.Context, id string) error {
	m.mu.Lock()
	if m.removing[id] {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRemovalPending, id)
	}
	if m.indexOfLocked(id) < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	m.removing[id] = true
	transport := m.transport
	m.mu.Unlock()

	ok := true
	var err error
	if transport != nil {
		ok, err = transport.Delete(ctx, id)
	}

	m.mu.Lock()
	delete(m.removing, id)

	if err != nil {
		m.lastErr = "failed to remove file"
		m.mu.Unlock()
		m.logger.Warn("Delete transport error", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete file %s: %w", id, err)
	}
	if !ok {
		m.lastErr = "failed to remove file"
		m.mu.Unlock()
		m.logger.Warn("Delete rejected", zap.String("id", id))
		return fmt.Errorf("%w: %s", ErrDeleteRejected, id)
	}

	if idx := m.indexOfLocked(id); idx >= 0 {
		m.attached = append(m.attached[:idx], m.attached[idx+1:]...)
	}
	m.mu.Unlock()
	m.notify()
	return nil
}

// Attached returns a copy of the attached collection
func (m *Manager) Attached() []AttachedFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AttachedFile, len(m.attached))
	copy(out, m.attached)
	return out
}

// Tasks returns the in-flight uploads (name and latest percent)
func (m *Manager) Tasks() []TaskStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TaskStatus, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, TaskStatus{ID: t.id, FileName: t.fileName, Percent: t.percent})
	}
	return out
}

// Removing reports whether a delete is pending for the file
func (m *Manager) Removing(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removing[id]
}

// LastError returns the most recent user-visible error message; new errors
// replace old ones rather than accumulating
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Hydrate replaces the attached collection with previously saved files
func (m *Manager) Hydrate(files []AttachedFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached = make([]AttachedFile, len(files))
	copy(m.attached, files)
}

// Wait blocks until every in-flight upload settles. Intended for tests and
// shutdown paths; the UI never waits.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) indexOfLocked(id string) int {
	for i := range m.attached {
		if m.attached[i].ID == id {
			return i
		}
	}
	return -1
}

// notify hands the owner a copy of the attached collection. Called without
// the lock held so the callback may call back into the manager.
func (m *Manager) notify() {
	m.mu.Lock()
	fn := m.onChange
	out := make([]AttachedFile, len(m.attached))
	copy(out, m.attached)
	m.mu.Unlock()

	if fn != nil {
		fn(out)
	}
}
