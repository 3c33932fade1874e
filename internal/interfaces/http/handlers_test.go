package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/domain/ledger"
	"github.com/dmutombo/requestdesk/internal/export"
	"github.com/dmutombo/requestdesk/internal/inspect"
	"github.com/dmutombo/requestdesk/internal/repository"
	"github.com/dmutombo/requestdesk/internal/services"
	"github.com/dmutombo/requestdesk/internal/storage"
	"github.com/dmutombo/requestdesk/internal/upload"
	"github.com/dmutombo/requestdesk/pkg/database"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.NewInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.RunMigrations("../../../migrations"))

	storageDir := t.TempDir()
	files := storage.NewLocalFileStorage(storageDir, logger)
	folders := storage.NewFolderManager(storageDir, logger)

	requests := repository.NewRequestRepository(db.DB, logger)
	items := repository.NewRequestItemRepository(db.DB, logger)
	attachments := repository.NewAttachmentRepository(db.DB, logger)
	svc := services.NewRequestService(db, requests, items, attachments, folders, logger)

	handlers := NewHandlers(
		svc,
		requests,
		attachments,
		files,
		inspect.NewInspector(logger),
		export.NewExcelWriter(t.TempDir(), logger),
		ledger.DefaultConfig(),
		upload.DefaultConfig(),
		storageDir,
		logger,
	)
	return NewServer(DefaultServerConfig(), handlers, logger)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestSubmitAndGetRequest(t *testing.T) {
	srv := setupServer(t)

	body := SubmitRequestBody{
		Form: map[string]any{
			"projectName": "Réhabilitation RN1",
			"province":    "Kongo-Central",
			"contractRef": "CT-2031",
		},
		Items: []ledger.Item{
			// Quantity out of bounds: server renormalizes to the maximum
			{Label: "Ciment", Quantity: 12, UnitPrice: 120, TaxRatePercent: 16, Authority: ledger.AuthorityDGI},
		},
	}

	w := doJSON(t, srv, http.MethodPost, "/api/v1/requests", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.True(t, created.Success)
	require.NotEmpty(t, created.Data.ID)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/requests/"+created.Data.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Data struct {
			Request struct {
				ProjectName string `json:"project_name"`
				Status      string `json:"status"`
			} `json:"request"`
			Items []struct {
				Label    string  `json:"label"`
				Quantity int     `json:"quantity"`
				Total    float64 `json:"total"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Réhabilitation RN1", got.Data.Request.ProjectName)
	assert.Equal(t, "SUBMITTED", got.Data.Request.Status)
	require.Len(t, got.Data.Items, 1)
	assert.Equal(t, 7, got.Data.Items[0].Quantity, "quantity clamped server side")
	assert.InDelta(t, 840.0, got.Data.Items[0].Total, 1e-9)
}

func TestGetRequest_NotFound(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/requests/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func uploadFile(t *testing.T, srv *Server, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestUploadAndDeleteAttachment(t *testing.T) {
	srv := setupServer(t)

	w := uploadFile(t, srv, "notes.txt", []byte("compte rendu de chantier"))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data AttachmentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)

	w = doJSON(t, srv, http.MethodDelete, "/api/v1/attachments/"+resp.Data.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var del struct {
		Data DeleteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &del))
	assert.True(t, del.Data.Status)

	// Second delete finds nothing
	w = doJSON(t, srv, http.MethodDelete, "/api/v1/attachments/"+resp.Data.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadAttachment_RejectsExtension(t *testing.T) {
	srv := setupServer(t)

	w := uploadFile(t, srv, "malware.exe", []byte{0x4d, 0x5a})
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestExportRequest(t *testing.T) {
	srv := setupServer(t)

	body := SubmitRequestBody{
		Form:  map[string]any{"projectName": "Forage Kinshasa"},
		Items: []ledger.Item{{Label: "Pompe", Quantity: 1, UnitPrice: 900}},
	}
	w := doJSON(t, srv, http.MethodPost, "/api/v1/requests", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, srv, http.MethodGet, "/api/v1/requests/"+created.Data.ID+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, w.Body.Len())
}
