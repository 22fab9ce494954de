package assets

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMimeFromExt(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".js", "application/javascript"},
		{".mjs", "application/javascript"},
		{".css", "text/css; charset=utf-8"},
		{".woff2", "font/woff2"},
		{".svg", "image/svg+xml"},
		{".map", "application/json"},
		{".qqqqqq", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := mimeFromExt(tt.ext); got != tt.want {
			t.Errorf("mimeFromExt(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestURL(t *testing.T) {
	for _, name := range []string{"admin.css", "admin.js"} {
		u := URL(name)
		if !strings.HasPrefix(u, "/static/"+name+"?v=") {
			t.Errorf("URL(%q) = %q, want a versioned path", name, u)
		}
	}
	if got := URL("missing.css"); got != "/static/missing.css" {
		t.Errorf("URL(missing) = %q", got)
	}
}

func serve(target string) *httptest.ResponseRecorder {
	h := http.StripPrefix("/static/", FileServer())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestFileServerCaching(t *testing.T) {
	rec := serve(URL("admin.css"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/css; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "immutable") {
		t.Errorf("versioned request Cache-Control = %q, want immutable", got)
	}
	if !strings.Contains(rec.Body.String(), "--accent") {
		t.Error("stylesheet body not served")
	}

	for _, target := range []string{"/static/admin.css", "/static/admin.css?v=stale"} {
		rec := serve(target)
		if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
			t.Errorf("%s: Cache-Control = %q, want no-cache", target, got)
		}
	}
}

func TestFileServerNotFound(t *testing.T) {
	if rec := serve("/static/nope.js"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
