package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexica-dev/wordbreak/core/cache"
	"github.com/lexica-dev/wordbreak/internal/store"
)

// setupTestServer wires the package globals to a temporary store.
func setupTestServer(t *testing.T) {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "dict.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	serverStore = s
	dictCache = cache.NewDefaultDictionaryCache()
	GlobalHub = NewHub()
	go GlobalHub.Run()
}

func importTestDictionary(t *testing.T, name string, words []string) {
	t.Helper()

	body, _ := json.Marshal(ImportRequest{Name: name, Words: words})
	req := httptest.NewRequest(http.MethodPost, "/dictionaries", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handleDictionaries(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("import returned status %d; want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestSegmentEndpoint(t *testing.T) {
	setupTestServer(t)
	importTestDictionary(t, "english", []string{"pen", "island", "penis", "land"})

	body, _ := json.Marshal(SegmentRequest{Dictionary: "english", Text: "penisland"})
	req := httptest.NewRequest(http.MethodPost, "/segment", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handleSegment(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Fatal("Success = false; want true")
	}

	data, _ := json.Marshal(resp.Data)
	var result SegmentResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}

	want := []string{"penis", "land"}
	if len(result.Words) != len(want) {
		t.Fatalf("Words = %v; want %v", result.Words, want)
	}
	for i, w := range want {
		if result.Words[i] != w {
			t.Errorf("Words[%d] = %q; want %q", i, result.Words[i], w)
		}
	}
	if result.Count != 2 {
		t.Errorf("Count = %d; want 2", result.Count)
	}
}

func TestSegmentUnmatchedRun(t *testing.T) {
	setupTestServer(t)
	importTestDictionary(t, "english", []string{"ab", "cd"})

	body, _ := json.Marshal(SegmentRequest{Dictionary: "english", Text: "abxyz"})
	req := httptest.NewRequest(http.MethodPost, "/segment", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handleSegment(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusUnprocessableEntity)
	}

	resp := decodeResponse(t, w)
	if resp.Success {
		t.Error("Success = true; want false")
	}
	if resp.Error == nil {
		t.Fatal("Error = nil; want UNMATCHED_RUN")
	}
	if resp.Error.Code != "UNMATCHED_RUN" {
		t.Errorf("Error.Code = %q; want %q", resp.Error.Code, "UNMATCHED_RUN")
	}
	if resp.Error.Position == nil {
		t.Fatal("Error.Position = nil; want rune index")
	}
	if *resp.Error.Position != 2 {
		t.Errorf("Error.Position = %d; want 2", *resp.Error.Position)
	}
}

func TestSegmentUnknownDictionary(t *testing.T) {
	setupTestServer(t)

	body, _ := json.Marshal(SegmentRequest{Dictionary: "missing", Text: "abc"})
	req := httptest.NewRequest(http.MethodPost, "/segment", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handleSegment(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusNotFound)
	}
	resp := decodeResponse(t, w)
	if resp.Error == nil || resp.Error.Code != "DICTIONARY_NOT_FOUND" {
		t.Errorf("Error = %+v; want DICTIONARY_NOT_FOUND", resp.Error)
	}
}

func TestSegmentInvalidRequests(t *testing.T) {
	setupTestServer(t)
	importTestDictionary(t, "english", []string{"ab"})

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"bad json", "{not json", http.StatusBadRequest},
		{"bad dictionary name", `{"dictionary":"Bad Name!","text":"ab"}`, http.StatusBadRequest},
		{"bad separator policy", `{"dictionary":"english","text":"ab","separator":"bogus"}`, http.StatusBadRequest},
		{"bad symbol policy", `{"dictionary":"english","text":"ab","symbols":"bogus"}`, http.StatusBadRequest},
		{"wrong method", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPost
			if tt.name == "wrong method" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, "/segment", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handleSegment(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d; want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestSegmentWithPolicies(t *testing.T) {
	setupTestServer(t)
	importTestDictionary(t, "english", []string{"hello", "world"})

	body, _ := json.Marshal(SegmentRequest{
		Dictionary: "english",
		Text:       "hello world",
		Separator:  "skip-one",
	})
	req := httptest.NewRequest(http.MethodPost, "/segment", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handleSegment(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestDictionaryLifecycle(t *testing.T) {
	setupTestServer(t)
	importTestDictionary(t, "english", []string{"cat", "dog"})

	// Duplicate import conflicts
	body, _ := json.Marshal(ImportRequest{Name: "english", Words: []string{"cat"}})
	req := httptest.NewRequest(http.MethodPost, "/dictionaries", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handleDictionaries(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate import status = %d; want %d", w.Code, http.StatusConflict)
	}

	// List
	req = httptest.NewRequest(http.MethodGet, "/dictionaries", nil)
	w = httptest.NewRecorder()
	handleDictionaries(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d; want %d", w.Code, http.StatusOK)
	}
	resp := decodeResponse(t, w)
	if resp.Meta == nil || resp.Meta.Total != 1 {
		t.Errorf("Meta.Total = %+v; want 1", resp.Meta)
	}

	// Info
	req = httptest.NewRequest(http.MethodGet, "/dictionaries/english", nil)
	w = httptest.NewRecorder()
	handleDictionaryByName(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("info status = %d; want %d", w.Code, http.StatusOK)
	}
	resp = decodeResponse(t, w)
	data, _ := json.Marshal(resp.Data)
	var info store.DictionaryInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("failed to decode info: %v", err)
	}
	if info.WordCount != 2 {
		t.Errorf("WordCount = %d; want 2", info.WordCount)
	}
	if len(info.Fingerprint) != 64 {
		t.Errorf("Fingerprint length = %d; want 64", len(info.Fingerprint))
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/dictionaries/english", nil)
	w = httptest.NewRecorder()
	handleDictionaryByName(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d; want %d", w.Code, http.StatusOK)
	}

	// Gone
	req = httptest.NewRequest(http.MethodGet, "/dictionaries/english", nil)
	w = httptest.NewRecorder()
	handleDictionaryByName(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("info after delete status = %d; want %d", w.Code, http.StatusNotFound)
	}
}

func TestImportValidation(t *testing.T) {
	setupTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty words", `{"name":"english","words":[]}`},
		{"bad name", `{"name":"Not Valid","words":["cat"]}`},
		{"bad json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/dictionaries", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handleDictionaries(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestTrieCacheReuse(t *testing.T) {
	setupTestServer(t)
	importTestDictionary(t, "english", []string{"ab"})

	first, err := loadDictionary("english")
	if err != nil {
		t.Fatalf("loadDictionary failed: %v", err)
	}
	if dictCache.Len() != 1 {
		t.Fatalf("cache Len = %d; want 1", dictCache.Len())
	}

	second, err := loadDictionary("english")
	if err != nil {
		t.Fatalf("loadDictionary failed: %v", err)
	}
	if first != second {
		t.Error("second load returned a different trie; want cached instance")
	}
}

func TestHealthEndpoint(t *testing.T) {
	setupTestServer(t)
	importTestDictionary(t, "english", []string{"cat"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}

	resp := decodeResponse(t, w)
	data, _ := json.Marshal(resp.Data)
	var health HealthInfo
	if err := json.Unmarshal(data, &health); err != nil {
		t.Fatalf("failed to decode health: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("Status = %q; want %q", health.Status, "healthy")
	}
	if health.Dictionaries != 1 {
		t.Errorf("Dictionaries = %d; want 1", health.Dictionaries)
	}
}

func TestRootEndpoint(t *testing.T) {
	setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handleRoot(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("root status = %d; want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	w = httptest.NewRecorder()
	handleRoot(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d; want %d", w.Code, http.StatusNotFound)
	}
}
