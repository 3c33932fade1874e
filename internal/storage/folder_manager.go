package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FolderManager manages per-request attachment folders under the base
// storage directory.
type FolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewFolderManager creates a new FolderManager
func NewFolderManager(baseDir string, logger *zap.Logger) *FolderManager {
	return &FolderManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// CreateRequestFolder creates attachments/{requestID}/ and returns the full
// path to the created folder
func (m *FolderManager) CreateRequestFolder(requestID string) (string, error) {
	if requestID == "" {
		return "", fmt.Errorf("cannot create folder: empty request ID")
	}

	// Sanitize the folder name to prevent path traversal
	safeName := m.SanitizeFolderName(requestID)
	folderPath := filepath.Join(m.baseDir, safeName)

	if err := os.MkdirAll(folderPath, 0755); err != nil {
		m.logger.Error("Failed to create request folder",
			zap.String("request_id", requestID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	m.logger.Debug("Created request folder",
		zap.String("request_id", requestID),
		zap.String("folder_path", folderPath))

	return folderPath, nil
}

// GetRequestFolderPath returns the path for a request folder without
// creating it
func (m *FolderManager) GetRequestFolderPath(requestID string) string {
	safeName := m.SanitizeFolderName(requestID)
	return filepath.Join(m.baseDir, safeName)
}

// FolderExists checks if the request folder already exists
func (m *FolderManager) FolderExists(requestID string) bool {
	folderPath := m.GetRequestFolderPath(requestID)
	info, err := os.Stat(folderPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// DeleteRequestFolder removes a request folder and all contents. Deleting a
// missing folder is not an error.
func (m *FolderManager) DeleteRequestFolder(requestID string) error {
	folderPath := m.GetRequestFolderPath(requestID)

	if _, err := os.Stat(folderPath); os.IsNotExist(err) {
		return nil
	}

	if err := os.RemoveAll(folderPath); err != nil {
		m.logger.Error("Failed to delete request folder",
			zap.String("request_id", requestID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	m.logger.Debug("Deleted request folder",
		zap.String("request_id", requestID),
		zap.String("folder_path", folderPath))

	return nil
}

// SanitizeFolderName returns a filesystem-safe version of the name.
// Removes path separators and special characters to prevent directory
// traversal.
func (m *FolderManager) SanitizeFolderName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")

	// Keep only alphanumeric, hyphens, and underscores
	re := regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	name = re.ReplaceAllString(name, "")

	return name
}
