package offline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{
			name: "list",
			data: `["/", "/app.js", "favicon.png", "/app.js", ""]`,
			want: []string{"/", "/app.js", "/favicon.png"},
		},
		{
			name: "fingerprint map",
			data: `{"styles.css": "styles.e5f6.css", "app.js": "app.a1b2.js"}`,
			want: []string{"/app.a1b2.js", "/styles.e5f6.css"},
		},
		{
			name: "empty",
			data: `[]`,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseManifest([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseManifest() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseManifest() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseManifestInvalid(t *testing.T) {
	if _, err := ParseManifest([]byte(`{"a": 1}`)); err == nil {
		t.Fatal("ParseManifest() error = nil, want error")
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(`["/index.html"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if diff := cmp.Diff([]string{"/index.html"}, got); diff != "" {
		t.Errorf("LoadManifest() (-want +got):\n%s", diff)
	}

	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json")); !os.IsNotExist(err) {
		t.Errorf("LoadManifest(missing) error = %v, want not-exist", err)
	}
}
