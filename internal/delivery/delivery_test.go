package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/manifest"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/notification"
)

type hook struct {
	mu     sync.Mutex
	paths []string
}

func (h *hook) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

// webhooks routes every notification kind to its own path of one server.
func webhooks(t *testing.T) *hook {
	t.Helper()
	h := &hook{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg notification.DiscordMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err == nil {
			h.mu.Lock()
			h.paths = append(h.paths, r.URL.Path)
			h.mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("DISCORD_ERROR_NOTIFICATION_URL", srv.URL+"/error")
	t.Setenv("DISCORD_WARN_NOTIFICATION_URL", srv.URL+"/warn")
	t.Setenv("DISCORD_SUCCESS_NOTIFICATION_URL", srv.URL+"/success")
	return h
}

func TestFinishNotifiesByOutcome(t *testing.T) {
	h := webhooks(t)
	r := newRun("test")
	require.NotEmpty(t, r.ID)

	assert.NoError(t, r.finish(3, nil, "all good"))
	assert.NoError(t, r.finish(3, []error{errors.New("tile 1")}, "mostly good"))
	err := r.finish(2, []error{errors.New("a"), errors.New("b")}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllFailed)

	assert.Equal(t, []string{"/success", "/warn", "/error"}, h.seen())
}

func TestFailNotifiesError(t *testing.T) {
	h := webhooks(t)
	err := RunMosaic(filepath.Join(t.TempDir(), "a.tif"), filepath.Join(t.TempDir(), "b.tif"), filepath.Join(t.TempDir(), "out.tif"))
	require.Error(t, err)
	assert.Equal(t, []string{"/error"}, h.seen())
}

func TestListFailuresTruncates(t *testing.T) {
	failures := make([]error, maxListed+3)
	for i := range failures {
		failures[i] = fmt.Errorf("item %d", i)
	}
	out := listFailures(failures)
	assert.Contains(t, out, "- item 0")
	assert.Contains(t, out, "- item 9")
	assert.NotContains(t, out, "item 10")
	assert.Contains(t, out, "... and 3 more")
}

func TestLoadManifestDefaults(t *testing.T) {
	m, err := LoadManifest("")
	require.NoError(t, err)
	assert.Equal(t, manifest.PreprocessOnly, m.State)
	assert.Equal(t, 2000, m.Preprocess.Quantity)
}

func TestLoadPointsByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte("lat,lon\n41.5,-90.25\n"), 0o644))

	points, err := LoadPoints(path)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 41.5, points[0].Lat)
	assert.Equal(t, -90.25, points[0].Lon)
}

func TestRunStackSGMissingIndex(t *testing.T) {
	webhooks(t)
	_, err := RunStackSG(filepath.Join(t.TempDir(), "missing.json"), "LC08", t.TempDir(), 0, 0)
	assert.Error(t, err)
}
