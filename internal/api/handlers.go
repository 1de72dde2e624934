package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lexica-dev/wordbreak/core/errors"
	"github.com/lexica-dev/wordbreak/core/lexicon"
	"github.com/lexica-dev/wordbreak/core/segment"
	"github.com/lexica-dev/wordbreak/core/trie"
	"github.com/lexica-dev/wordbreak/internal/logging"
	"github.com/lexica-dev/wordbreak/internal/validation"
)

const apiVersion = "0.1.0"

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error. Position is set only for
// segmentation failures and gives the rune index of the unmatched run.
type APIError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Position *int   `json:"position,omitempty"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// SegmentRequest is the request body for segmentation.
type SegmentRequest struct {
	Dictionary string `json:"dictionary"`
	Text       string `json:"text"`
	Separator  string `json:"separator,omitempty"` // "none" (default) or "skip-one"
	Symbols    string `json:"symbols,omitempty"`   // "fail" (default), "emit", or "skip"
}

// SegmentResult is the result of a segmentation.
type SegmentResult struct {
	Dictionary string   `json:"dictionary"`
	Words      []string `json:"words"`
	Count      int      `json:"count"`
	Duration   string   `json:"duration"`
}

// ImportRequest is the request body for importing a dictionary.
type ImportRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Words       []string `json:"words"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	Dictionaries int    `json:"dictionaries"`
	CachedTries  int    `json:"cached_tries"`
}

var startTime = time.Now()

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "wordbreak API",
		"version": apiVersion,
		"endpoints": []string{
			"GET /healthz",
			"POST /segment",
			"GET /dictionaries",
			"POST /dictionaries",
			"GET /dictionaries/:name",
			"DELETE /dictionaries/:name",
			"WS /ws",
		},
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	dicts, err := serverStore.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "Failed to query dictionary store")
		return
	}

	respond(w, http.StatusOK, HealthInfo{
		Status:       "healthy",
		Version:      apiVersion,
		Uptime:       time.Since(startTime).String(),
		Dictionaries: len(dicts),
		CachedTries:  dictCache.Len(),
	})
}

func handleSegment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req SegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body: "+err.Error())
		return
	}

	if err := validation.ValidateDictionaryName(req.Dictionary); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_DICTIONARY_NAME", err.Error())
		return
	}
	if err := validation.ValidateSegmentInput(req.Text); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "INPUT_TOO_LONG", err.Error())
		return
	}

	opts, err := parseOptions(req.Separator, req.Symbols)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_POLICY", err.Error())
		return
	}

	dict, err := loadDictionary(req.Dictionary)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			respondError(w, http.StatusNotFound, "DICTIONARY_NOT_FOUND", "Dictionary not found: "+req.Dictionary)
			return
		}
		logging.ErrorContext(r.Context(), "dictionary load failed", "dictionary", req.Dictionary, "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load dictionary")
		return
	}

	start := time.Now()
	words, err := segment.New(dict, opts).Segment(req.Text)
	duration := time.Since(start)

	if err != nil {
		var unmatched *segment.UnmatchedRunError
		if errors.As(err, &unmatched) {
			logging.SegmentFailure(r.Context(), req.Dictionary, len([]rune(req.Text)), unmatched.Pos)
			respondSegmentError(w, unmatched)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", "Segmentation failed")
		return
	}

	logging.SegmentRequest(r.Context(), req.Dictionary, len([]rune(req.Text)), len(words), duration)
	respond(w, http.StatusOK, SegmentResult{
		Dictionary: req.Dictionary,
		Words:      words,
		Count:      len(words),
		Duration:   duration.String(),
	})
}

func handleDictionaries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		listDictionariesHandler(w, r)
	case http.MethodPost:
		importDictionaryHandler(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are allowed")
	}
}

func listDictionariesHandler(w http.ResponseWriter, _ *http.Request) {
	dicts, err := serverStore.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "Failed to query dictionary store")
		return
	}

	response := APIResponse{
		Success: true,
		Data:    dicts,
		Meta: &APIMeta{
			Total:     len(dicts),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	writeJSON(w, http.StatusOK, response)
}

func importDictionaryHandler(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body: "+err.Error())
		return
	}

	if err := validation.ValidateDictionaryName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_DICTIONARY_NAME", err.Error())
		return
	}
	if len(req.Words) == 0 {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Word list cannot be empty")
		return
	}

	lex := &lexicon.Lexicon{
		Name:        req.Name,
		Description: req.Description,
		Source:      "api",
		Words:       req.Words,
	}

	info, err := serverStore.Import(lex)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrAlreadyExists):
			respondError(w, http.StatusConflict, "ALREADY_EXISTS", "Dictionary already exists: "+req.Name)
		case errors.Is(err, errors.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		default:
			logging.ErrorContext(r.Context(), "dictionary import failed", "dictionary", req.Name, "error", err)
			respondError(w, http.StatusInternalServerError, "INTERNAL", "Failed to import dictionary")
		}
		return
	}

	logging.DictionaryLoad(info.Name, "api", info.WordCount)
	BroadcastDictionaryEvent("dictionary_imported", info.Name, info.WordCount)
	respond(w, http.StatusCreated, info)
}

func handleDictionaryByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/dictionaries/")
	if name == "" || strings.Contains(name, "/") {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	if err := validation.ValidateDictionaryName(name); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_DICTIONARY_NAME", err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		info, err := serverStore.Info(name)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				respondError(w, http.StatusNotFound, "DICTIONARY_NOT_FOUND", "Dictionary not found: "+name)
				return
			}
			respondError(w, http.StatusInternalServerError, "INTERNAL", "Failed to query dictionary store")
			return
		}
		respond(w, http.StatusOK, info)

	case http.MethodDelete:
		info, err := serverStore.Info(name)
		if err == nil {
			dictCache.Remove(info.Fingerprint)
		}
		if err := serverStore.Delete(name); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				respondError(w, http.StatusNotFound, "DICTIONARY_NOT_FOUND", "Dictionary not found: "+name)
				return
			}
			respondError(w, http.StatusInternalServerError, "INTERNAL", "Failed to delete dictionary")
			return
		}
		BroadcastDictionaryEvent("dictionary_deleted", name, 0)
		respond(w, http.StatusOK, map[string]string{"deleted": name})

	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and DELETE are allowed")
	}
}

// loadDictionary returns the compiled trie for a stored dictionary,
// consulting the fingerprint-keyed cache first. Tries are immutable once
// built, so a cached value is safe to share across requests.
func loadDictionary(name string) (*trie.Trie, error) {
	info, err := serverStore.Info(name)
	if err != nil {
		return nil, err
	}

	if t, ok := dictCache.Get(info.Fingerprint); ok {
		return t, nil
	}

	lex, err := serverStore.Load(name)
	if err != nil {
		return nil, err
	}

	t := lex.Build()
	dictCache.Put(info.Fingerprint, t)
	return t, nil
}

func parseOptions(separator, symbols string) (segment.Options, error) {
	var opts segment.Options
	var err error
	if opts.Separator, err = segment.ParseSeparatorPolicy(separator); err != nil {
		return opts, err
	}
	if opts.Symbols, err = segment.ParseSymbolPolicy(symbols); err != nil {
		return opts, err
	}
	return opts, nil
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// respondSegmentError reports an unmatched run as 422 with the rune
// position attached, so callers can point at the offending input.
func respondSegmentError(w http.ResponseWriter, unmatched *segment.UnmatchedRunError) {
	pos := unmatched.Pos
	writeJSON(w, http.StatusUnprocessableEntity, APIResponse{
		Success: false,
		Error: &APIError{
			Code:     "UNMATCHED_RUN",
			Message:  unmatched.Error(),
			Position: &pos,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
