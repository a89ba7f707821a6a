package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, w.Body.String())
	}
	return body
}

func TestJSONResponseBuilder_Data(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Data(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	body := decodeEnvelope(t, w)
	if string(body["data"]) != `{"id":7}` {
		t.Errorf("data = %s, want {\"id\":7}", body["data"])
	}
	if _, ok := body["error"]; ok {
		t.Error("success response carries an error member")
	}
}

func TestJSONResponseBuilder_PageAndHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Header("X-Custom", "value").
		Data([]int{1, 2}).
		Page(PageMeta{Page: 2, PerPage: 10}).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	body := decodeEnvelope(t, w)
	if string(body["meta"]) != `{"page":2,"per_page":10}` {
		t.Errorf("meta = %s", body["meta"])
	}
}

func TestJSONResponseBuilder_Empty(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().Status(http.StatusNoContent).Empty().Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *JSONResponseBuilder
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("Invalid input"),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeBadRequest,
			wantMsg:    "Invalid input",
		},
		{
			name:       "unprocessable entity",
			builder:    UnprocessableEntityError("payday must be between 1 and 31"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeValidation,
			wantMsg:    "payday must be between 1 and 31",
		},
		{
			name:       "conflict",
			builder:    ConflictError(CodeEmptyPeriod, "nothing to reset"),
			wantStatus: http.StatusConflict,
			wantCode:   CodeEmptyPeriod,
			wantMsg:    "nothing to reset",
		},
		{
			name:       "internal server error",
			builder:    InternalServerError(CodeResetFailed, "reset failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeResetFailed,
			wantMsg:    "reset failed",
		},
		{
			name:       "not found",
			builder:    NotFoundError("Resource not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
			wantMsg:    "Resource not found",
		},
		{
			name:       "unauthorized",
			builder:    UnauthorizedError("who are you"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeUnauthorized,
			wantMsg:    "who are you",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			var body struct {
				Data  any `json:"data"`
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Data != nil {
				t.Errorf("error response carries data: %v", body.Data)
			}
			if body.Error.Code != tt.wantCode || body.Error.Message != tt.wantMsg {
				t.Errorf("error = %+v, want code %q message %q", body.Error, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if !json.Valid(w.Body.Bytes()) {
		t.Fatalf("invalid JSON: %s", body)
	}
	for _, raw := range []string{"<script>", "</script>"} {
		if strings.Contains(body, raw) {
			t.Errorf("response contains unescaped %q: %s", raw, body)
		}
	}
}
