package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	httpCtx "github.com/bornholm/weekplan/internal/http/context"
	"github.com/pkg/errors"
)

func TestServerHandler(t *testing.T) {
	var username string

	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username = httpCtx.Username(r.Context())
		w.Write([]byte(r.URL.Path))
	})

	server := NewServer(
		WithBaseURL("/weekplan/"),
		WithMount("/api/v1/", api),
		WithBasicAuth("alice", "secret"),
		WithAllowedOrigins("https://dashboard.example.com"),
	)

	handler, err := server.Handler()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	req := httptest.NewRequest(http.MethodGet, "/weekplan/api/v1/tasks/work", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if e, g := http.StatusUnauthorized, res.Code; e != g {
		t.Errorf("res.Code: expected %v, got %v", e, g)
	}

	req = httptest.NewRequest(http.MethodGet, "/weekplan/api/v1/tasks/work", nil)
	req.SetBasicAuth("alice", "secret")
	req.Header.Set("Origin", "https://dashboard.example.com")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v", e, g)
	}

	if e, g := "/tasks/work", res.Body.String(); e != g {
		t.Errorf("res.Body: expected '%v', got '%v'", e, g)
	}

	if e, g := "alice", username; e != g {
		t.Errorf("username: expected '%v', got '%v'", e, g)
	}

	if e, g := "https://dashboard.example.com", res.Header().Get("Access-Control-Allow-Origin"); e != g {
		t.Errorf("Access-Control-Allow-Origin: expected '%v', got '%v'", e, g)
	}
}
