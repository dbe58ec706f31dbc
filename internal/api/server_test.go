package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/lexgest/internal/config"
	"github.com/dgallion1/lexgest/internal/extract"
	"github.com/dgallion1/lexgest/internal/parser"
	"github.com/dgallion1/lexgest/internal/pipeline"
	"github.com/dgallion1/lexgest/internal/rank"
	"github.com/dgallion1/lexgest/internal/store"
)

const testKey = "test-key"

const dumpXML = `<entries>
  <entry><id>1</id><title>book</title><text>==English==
===Noun===
# A bound set of pages.
</text></entry>
  <entry><id>2</id><title>dog</title><text>==English==
===Noun===
# A domesticated [[canine]].
</text></entry>
</entries>`

func testConfig() config.Config {
	return config.Config{
		APIKey:         testKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		StatsWindow:    time.Hour,
		OnMissingRank:  "skip",
	}
}

func newTestServer(t *testing.T, withStore, start bool) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	asm := &extract.Assembler{
		Oracle:    rank.New(map[string]int{"book": 5, "dog": 2}),
		Segmenter: parser.Segmenter{FlushTrailing: true},
	}

	var st *store.Store
	if withStore {
		var err error
		st, err = store.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
	}

	cfg := testConfig()
	orch := pipeline.NewOrchestrator(cfg, asm, &extract.PageFilter{Language: "English"}, st, log)
	if start {
		orch.Start(context.Background())
		t.Cleanup(orch.Stop)
	}
	return NewServer(orch, log, cfg), orch
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, path, field, format string, files ...string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if format != "" {
		require.NoError(t, mw.WriteField("format", format))
	}
	for i, content := range files {
		fw, err := mw.CreateFormFile(field, []string{"a.xml", "b.xml", "c.xml"}[i%3])
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, false, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t, false, false)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtract_EndToEnd(t *testing.T) {
	s, _ := newTestServer(t, true, true)

	rec := do(t, s, uploadRequest(t, "/api/extract", "file", "", dumpXML))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	accepted := decode(t, rec)
	jobID, _ := accepted["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, "entry", accepted["format"])
	assert.Equal(t, "/api/extract/"+jobID+"/status", accepted["poll_url"])

	require.Eventually(t, func() bool {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/extract/"+jobID+"/status", nil))
		return decode(t, rec)["status"] == string(pipeline.StatusCompleted)
	}, 5*time.Second, 10*time.Millisecond)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/extract/"+jobID+"/entries", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "dog", entries[0]["title"])
	assert.Equal(t, "book", entries[1]["title"])

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/entries/book", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0]["id"])

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/entries/cat", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)
	assert.EqualValues(t, 2, stats["stored_entries"])
	assembly, _ := stats["assembly"].(map[string]any)
	assert.EqualValues(t, 2, assembly["records"])
}

func TestExtract_BadFormat(t *testing.T) {
	s, _ := newTestServer(t, false, false)
	rec := do(t, s, uploadRequest(t, "/api/extract", "file", "csv", dumpXML))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "unsupported format")
}

func TestExtract_MissingFile(t *testing.T) {
	s, _ := newTestServer(t, false, false)
	rec := do(t, s, uploadRequest(t, "/api/extract", "file", "page"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtract_QueueFull(t *testing.T) {
	s, _ := newTestServer(t, false, false)
	for range testConfig().MaxQueueSize {
		rec := do(t, s, uploadRequest(t, "/api/extract", "file", "", dumpXML))
		require.Equal(t, http.StatusAccepted, rec.Code)
	}
	rec := do(t, s, uploadRequest(t, "/api/extract", "file", "", dumpXML))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBatchExtract(t *testing.T) {
	s, orch := newTestServer(t, false, false)
	rec := do(t, s, uploadRequest(t, "/api/extract/batch", "files", "page", dumpXML, dumpXML))
	require.Equal(t, http.StatusAccepted, rec.Code)

	jobs, _ := decode(t, rec)["jobs"].([]any)
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		m := j.(map[string]any)
		assert.Equal(t, "page", m["format"])
		assert.NotNil(t, orch.GetJob(m["job_id"].(string)))
	}
	assert.Equal(t, 2, orch.QueueDepth())
}

func TestJobEntries_NotReady(t *testing.T) {
	s, _ := newTestServer(t, false, false)
	rec := do(t, s, uploadRequest(t, "/api/extract", "file", "", dumpXML))
	require.Equal(t, http.StatusAccepted, rec.Code)
	jobID := decode(t, rec)["job_id"].(string)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/extract/"+jobID+"/entries", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestJob_NotFound(t *testing.T) {
	s, _ := newTestServer(t, false, false)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/extract/nope/status", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/extract/nope/entries", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntriesByTitle_NoStore(t *testing.T) {
	s, _ := newTestServer(t, false, false)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/entries/book", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"dump.xml":          "dump.xml",
		"../../etc/passwd":  "passwd",
		"dir/sub/entries.x": "entries.x",
		"":                  "unnamed",
		"..":                "_",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
