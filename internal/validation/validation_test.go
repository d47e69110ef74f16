package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCreateDispatchRequest_Valid(t *testing.T) {
	v := New()

	req := CreateDispatchRequest{
		Action:     "ambulance",
		Profile:    map[string]interface{}{"Name": "A. Test", "Location": "1 Main St"},
		Highlights: []string{"chest pain"},
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestCreateDispatchRequest_OnlyActionRequired(t *testing.T) {
	v := New()

	if err := v.Struct(CreateDispatchRequest{Action: "dispatch"}); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestCreateDispatchRequest_MissingOrBlankAction(t *testing.T) {
	v := New()

	for _, action := range []string{"", "   "} {
		if err := v.Struct(CreateDispatchRequest{Action: action}); err == nil {
			t.Fatalf("expected validation error for action %q, got nil", action)
		}
	}
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/dispatch", strings.NewReader(`{"action":`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req CreateDispatchRequest
	if err := BindAndValidate(c, &req, New()); err == nil {
		t.Fatal("expected bind error, got nil")
	}
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid_request_body") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestBindAndValidate_ValidationFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/dispatch", strings.NewReader(`{"status":"sent"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req CreateDispatchRequest
	if err := BindAndValidate(c, &req, New()); err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(rr.Body.String(), "validation_failed") || !strings.Contains(rr.Body.String(), `"action":"is required"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestBindAndValidate_EmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/dispatch", strings.NewReader(""))
	c.Request.Header.Set("Content-Type", "application/json")

	var req CreateDispatchRequest
	if err := BindAndValidate(c, &req, New()); err != ErrEmptyBody {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if !strings.Contains(rr.Body.String(), "request body is empty") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestCreateDispatchRequest_LongActionPassesThrough(t *testing.T) {
	v := New()

	if err := v.Struct(CreateDispatchRequest{Action: strings.Repeat("a", 500)}); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}
