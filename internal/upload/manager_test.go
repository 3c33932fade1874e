package upload

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport scripts upload/delete outcomes per file name.
type fakeTransport struct {
	mu        sync.Mutex
	failNames map[string]bool
	progress  []int
	uploaded  []string

	deleteOK  bool
	deleteErr error

	enterUpload chan string
	releaseUp   chan struct{}
	enterDelete chan struct{}
	releaseDel  chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failNames: map[string]bool{}, deleteOK: true}
}

func (f *fakeTransport) Upload(ctx context.Context, file File, onProgress ProgressFunc) (*Result, error) {
	for _, p := range f.progress {
		onProgress(p)
	}
	if f.enterUpload != nil {
		f.enterUpload <- file.Name
	}
	if f.releaseUp != nil {
		<-f.releaseUp
	}

	f.mu.Lock()
	fail := f.failNames[file.Name]
	if !fail {
		f.uploaded = append(f.uploaded, file.Name)
	}
	f.mu.Unlock()

	if fail {
		return nil, errors.New("transport unavailable")
	}
	return &Result{ID: "srv-" + file.Name, URL: "https://files.local/" + file.Name}, nil
}

func (f *fakeTransport) Delete(ctx context.Context, id string) (bool, error) {
	if f.enterDelete != nil {
		f.enterDelete <- struct{}{}
	}
	if f.releaseDel != nil {
		<-f.releaseDel
	}
	return f.deleteOK, f.deleteErr
}

func pdf(name string, size int64) File {
	return File{Name: name, Size: size, Content: []byte("content")}
}

func TestManager_SelectFiles_UploadsAndAttaches(t *testing.T) {
	tr := newFakeTransport()
	m := NewManager(DefaultConfig(), tr, nil)

	require.NoError(t, m.SelectFiles(context.Background(), []File{pdf("facture.pdf", 1024)}))
	m.Wait()

	attached := m.Attached()
	require.Len(t, attached, 1)
	assert.Equal(t, "srv-facture.pdf", attached[0].ID)
	assert.Equal(t, "https://files.local/facture.pdf", attached[0].URL)
	assert.Equal(t, int64(1024), attached[0].Size)
	assert.Empty(t, m.Tasks(), "task cleared after settle")
}

func TestManager_SelectFiles_BatchOverMaxRejectedEntirely(t *testing.T) {
	tr := newFakeTransport()
	m := NewManager(DefaultConfig(), tr, nil)
	m.Hydrate([]AttachedFile{
		{ID: "1", Name: "a.pdf"}, {ID: "2", Name: "b.pdf"},
		{ID: "3", Name: "c.pdf"}, {ID: "4", Name: "d.pdf"},
	})

	err := m.SelectFiles(context.Background(), []File{pdf("e.pdf", 10), pdf("f.pdf", 10)})
	assert.ErrorIs(t, err, ErrTooManyFiles)
	m.Wait()

	assert.Len(t, m.Attached(), 4, "prior attachments untouched")
	assert.Empty(t, m.Tasks(), "nothing started")
	assert.NotEmpty(t, m.LastError())
}

func TestManager_SelectFiles_DisallowedExtensionSkipsOnlyThatFile(t *testing.T) {
	tr := newFakeTransport()
	m := NewManager(DefaultConfig(), tr, nil)

	require.NoError(t, m.SelectFiles(context.Background(), []File{
		pdf("a.pdf", 10),
		pdf("b.exe", 10),
	}))
	m.Wait()

	attached := m.Attached()
	require.Len(t, attached, 1)
	assert.Equal(t, "a.pdf", attached[0].Name)
	assert.Contains(t, m.LastError(), "b.exe")
}

func TestManager_SelectFiles_OversizeRejected(t *testing.T) {
	tr := newFakeTransport()
	m := NewManager(Config{MaxFileSize: 100}, tr, nil)

	require.NoError(t, m.SelectFiles(context.Background(), []File{pdf("huge.pdf", 101)}))
	m.Wait()

	assert.Empty(t, m.Attached())
	assert.Contains(t, m.LastError(), "huge.pdf")
}

func TestManager_UploadFailure_IsolatedFromBatch(t *testing.T) {
	tr := newFakeTransport()
	tr.failNames["broken.pdf"] = true
	m := NewManager(DefaultConfig(), tr, nil)

	require.NoError(t, m.SelectFiles(context.Background(), []File{
		pdf("ok.pdf", 10),
		pdf("broken.pdf", 10),
	}))
	m.Wait()

	attached := m.Attached()
	require.Len(t, attached, 1)
	assert.Equal(t, "ok.pdf", attached[0].Name)
	assert.Empty(t, m.Tasks(), "failed task cleared")
	assert.Contains(t, m.LastError(), "broken.pdf")
}

func TestManager_Progress_LatestValuePerTask(t *testing.T) {
	tr := newFakeTransport()
	tr.progress = []int{10, 45, 80}
	tr.enterUpload = make(chan string)
	tr.releaseUp = make(chan struct{})
	m := NewManager(DefaultConfig(), tr, nil)

	require.NoError(t, m.SelectFiles(context.Background(), []File{pdf("slow.pdf", 10)}))
	<-tr.enterUpload

	tasks := m.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "slow.pdf", tasks[0].FileName)
	assert.Equal(t, 80, tasks[0].Percent, "latest reported value wins")

	close(tr.releaseUp)
	m.Wait()
	assert.Empty(t, m.Tasks())
}

func TestManager_SameFileNameTwice_NoTaskCollision(t *testing.T) {
	tr := newFakeTransport()
	tr.enterUpload = make(chan string, 2)
	tr.releaseUp = make(chan struct{})
	m := NewManager(DefaultConfig(), tr, nil)

	require.NoError(t, m.SelectFiles(context.Background(), []File{
		pdf("rapport.pdf", 10),
		pdf("rapport.pdf", 20),
	}))
	<-tr.enterUpload
	<-tr.enterUpload

	tasks := m.Tasks()
	require.Len(t, tasks, 2, "identically named files get distinct tasks")
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)

	close(tr.releaseUp)
	m.Wait()
	assert.Len(t, m.Attached(), 2)
}

func TestManager_RemoveFile_Success(t *testing.T) {
	tr := newFakeTransport()
	m := NewManager(DefaultConfig(), tr, nil)
	m.Hydrate([]AttachedFile{{ID: "doc-1", Name: "a.pdf"}})

	require.NoError(t, m.RemoveFile(context.Background(), "doc-1"))
	assert.Empty(t, m.Attached())
}

func TestManager_RemoveFile_RejectedStatusKeepsFileAttached(t *testing.T) {
	tr := newFakeTransport()
	tr.deleteOK = false
	m := NewManager(DefaultConfig(), tr, nil)
	m.Hydrate([]AttachedFile{{ID: "doc-1", Name: "a.pdf"}})

	err := m.RemoveFile(context.Background(), "doc-1")
	assert.ErrorIs(t, err, ErrDeleteRejected)
	assert.Len(t, m.Attached(), 1, "file stays attached on {status:false}")
	assert.False(t, m.Removing("doc-1"), "removing state cleared after settle")
}

func TestManager_RemoveFile_TransportErrorKeepsFileAttached(t *testing.T) {
	tr := newFakeTransport()
	tr.deleteErr = errors.New("timeout")
	m := NewManager(DefaultConfig(), tr, nil)
	m.Hydrate([]AttachedFile{{ID: "doc-1", Name: "a.pdf"}})

	require.Error(t, m.RemoveFile(context.Background(), "doc-1"))
	assert.Len(t, m.Attached(), 1)
}

func TestManager_RemoveFile_PendingRemovalBlocksSecondAttempt(t *testing.T) {
	tr := newFakeTransport()
	tr.enterDelete = make(chan struct{})
	tr.releaseDel = make(chan struct{})
	m := NewManager(DefaultConfig(), tr, nil)
	m.Hydrate([]AttachedFile{{ID: "doc-1", Name: "a.pdf"}})

	done := make(chan error, 1)
	go func() { done <- m.RemoveFile(context.Background(), "doc-1") }()
	<-tr.enterDelete

	err := m.RemoveFile(context.Background(), "doc-1")
	assert.ErrorIs(t, err, ErrRemovalPending)

	close(tr.releaseDel)
	require.NoError(t, <-done)
	assert.Empty(t, m.Attached())
}

func TestManager_RemoveFile_UnknownID(t *testing.T) {
	m := NewManager(DefaultConfig(), newFakeTransport(), nil)
	assert.ErrorIs(t, m.RemoveFile(context.Background(), "nope"), ErrFileNotFound)
}

func TestManager_LocalFallback_NoTransport(t *testing.T) {
	m := NewManager(DefaultConfig(), nil, nil)
	m.SetPreviewURL(func(f File) string { return "blob:" + f.Name })

	require.NoError(t, m.SelectFiles(context.Background(), []File{pdf("local.pdf", 10)}))
	m.Wait()

	attached := m.Attached()
	require.Len(t, attached, 1)
	assert.NotEmpty(t, attached[0].ID, "local id generated")
	assert.Equal(t, "blob:local.pdf", attached[0].URL)

	// Removal without a transport settles locally too.
	require.NoError(t, m.RemoveFile(context.Background(), attached[0].ID))
	assert.Empty(t, m.Attached())
}

func TestManager_OnFilesChanged_ReceivesFullCollection(t *testing.T) {
	tr := newFakeTransport()
	m := NewManager(DefaultConfig(), tr, nil)

	var mu sync.Mutex
	var last []AttachedFile
	m.SetOnFilesChanged(func(files []AttachedFile) {
		mu.Lock()
		last = files
		mu.Unlock()
	})

	require.NoError(t, m.SelectFiles(context.Background(), []File{pdf("a.pdf", 10)}))
	m.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, last, 1)
	assert.Equal(t, "a.pdf", last[0].Name)
}

func TestManager_ErrorMessagesReplaceNotAccumulate(t *testing.T) {
	tr := newFakeTransport()
	m := NewManager(DefaultConfig(), tr, nil)

	require.NoError(t, m.SelectFiles(context.Background(), []File{pdf("x.exe", 10)}))
	first := m.LastError()
	require.NoError(t, m.SelectFiles(context.Background(), []File{pdf("y.bat", 10)}))
	m.Wait()

	assert.Contains(t, first, "x.exe")
	assert.Contains(t, m.LastError(), "y.bat")
	assert.False(t, strings.Contains(m.LastError(), "x.exe"))
}
