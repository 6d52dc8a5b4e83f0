package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/liftscribe/internal/parse"
)

func testServer() *Server {
	return &Server{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// TestWriteParseErrorStatuses verifies the failure kind to HTTP status
// mapping: rejected input is a client error, oracle trouble is a bad
// gateway, everything else is a 500.
func TestWriteParseErrorStatuses(t *testing.T) {
	s := testServer()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rejected", &parse.ParseError{Kind: parse.KindValidationRejected, Reason: "not a workout"}, http.StatusUnprocessableEntity},
		{"extraction", &parse.ParseError{Kind: parse.KindExtractionFailed}, http.StatusBadGateway},
		{"schema exhausted", &parse.ParseError{Kind: parse.KindSchemaRepairExhausted}, http.StatusBadGateway},
		{"semantic exhausted", &parse.ParseError{Kind: parse.KindSemanticRepairExhausted}, http.StatusBadGateway},
		{"resolution", &parse.ParseError{Kind: parse.KindResolutionFailed}, http.StatusInternalServerError},
		{"persistence", &parse.ParseError{Kind: parse.KindPersistenceFailed}, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeParseError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestWriteParseErrorBody verifies that the error body carries the failure
// kind so API clients can branch without parsing the message.
func TestWriteParseErrorBody(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.writeParseError(rec, &parse.ParseError{Kind: parse.KindValidationRejected, Reason: "grocery list"})

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["kind"] != "validation_rejected" {
		t.Errorf("kind = %q, want %q", body["kind"], "validation_rejected")
	}
	if !strings.Contains(body["error"], "grocery list") {
		t.Errorf("error = %q, want it to mention the reason", body["error"])
	}
}

// TestHandleParseBadJSON verifies that malformed request bodies are
// rejected before the pipeline runs.
func TestHandleParseBadJSON(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.handleParse(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestHandleParseEmptyText verifies that an empty text field is rejected.
func TestHandleParseEmptyText(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", strings.NewReader(`{"text":""}`))
	rec := httptest.NewRecorder()
	s.handleParse(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
