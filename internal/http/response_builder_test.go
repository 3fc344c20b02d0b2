package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONResponseBuilder(t *testing.T) {
	tests := []struct {
		name       string
		build      func() *JSONResponseBuilder
		wantStatus int
		wantBody   string
		wantType   string
	}{
		{
			name:       "body",
			build:      func() *JSONResponseBuilder { return NewJSONResponse().Body(map[string]int{"n": 1}) },
			wantStatus: http.StatusOK,
			wantBody:   `{"n":1}`,
			wantType:   "application/json",
		},
		{
			name:       "error",
			build:      func() *JSONResponseBuilder { return NotFoundError("Budget not found") },
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Budget not found"}`,
			wantType:   "application/json",
		},
		{
			name:       "no content ignores body",
			build:      func() *JSONResponseBuilder { return NewJSONResponse().Status(http.StatusNoContent).Body("x") },
			wantStatus: http.StatusNoContent,
			wantBody:   "",
		},
		{
			name:       "unencodable body",
			build:      func() *JSONResponseBuilder { return NewJSONResponse().Body(make(chan int)) },
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
			wantType:   "application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.build().Write(w)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			if tt.wantType != "" && w.Header().Get("Content-Type") != tt.wantType {
				t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestJSONResponseBuilder_Headers(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusTooManyRequests, "slow down").Header("Retry-After", "60").Write(w)
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
}
