package offline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScopeFallsBackBeforeActivation(t *testing.T) {
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "origin")
	})
	scope := NewScope(fallback, nil)

	rec := httptest.NewRecorder()
	scope.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != "origin" {
		t.Fatalf("body = %q, want fallback", rec.Body.String())
	}
	if scope.Controller() != nil {
		t.Fatal("Controller() != nil before Register")
	}
}

func TestScopeKeepsPreviousOnInstallFailure(t *testing.T) {
	ctx := context.Background()
	o := newOrigin(t, map[string]string{"/app.js": "v1"})
	storage := NewMemoryStorage()
	scope := NewScope(http.NotFoundHandler(), nil)

	v1 := newTestWorker(t, storage, o, "1", "/app.js")
	if err := scope.Register(ctx, v1); err != nil {
		t.Fatalf("Register(v1) error = %v", err)
	}

	v2 := newTestWorker(t, storage, o, "2", "/app.js", "/new-asset.js")
	if err := scope.Register(ctx, v2); err == nil {
		t.Fatal("Register(v2) error = nil, want install failure")
	}

	if got := scope.Controller(); got != v1 {
		t.Fatalf("Controller() = %v, want v1", got.Version())
	}
	if v1.State() != Activated {
		t.Errorf("v1 state = %v, want %v", v1.State(), Activated)
	}
	names, _ := storage.Names(ctx)
	if diff := cmp.Diff([]string{"friday-kickers-1"}, names); diff != "" {
		t.Errorf("Names() (-want +got):\n%s", diff)
	}

	release := o.hold("/app.js")
	defer release()
	rec := httptest.NewRecorder()
	scope.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	if rec.Body.String() != "v1" || rec.Header().Get("X-Cache") != "HIT" {
		t.Errorf("response = %q (%s), want cached v1", rec.Body.String(), rec.Header().Get("X-Cache"))
	}
}

func TestScopeSwapsController(t *testing.T) {
	ctx := context.Background()
	o := newOrigin(t, map[string]string{"/app.js": "v1"})
	storage := NewMemoryStorage()
	scope := NewScope(http.NotFoundHandler(), nil)

	v1 := newTestWorker(t, storage, o, "1", "/app.js")
	if err := scope.Register(ctx, v1); err != nil {
		t.Fatal(err)
	}

	o.set("/app.js", "v2")
	v2 := newTestWorker(t, storage, o, "2", "/app.js")
	if err := scope.Register(ctx, v2); err != nil {
		t.Fatalf("Register(v2) error = %v", err)
	}

	if scope.Controller() != v2 || v1.State() != Redundant {
		t.Fatalf("controller = %s, v1 state = %v", scope.Controller().Version(), v1.State())
	}
	names, _ := storage.Names(ctx)
	if diff := cmp.Diff([]string{"friday-kickers-2"}, names); diff != "" {
		t.Errorf("Names() (-want +got):\n%s", diff)
	}
}
