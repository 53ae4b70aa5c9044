package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"ascii-theater/internal/preview"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("TEST_UNSET_VAR")
	if got := getEnv("TEST_UNSET_VAR", "default"); got != "default" {
		t.Errorf("getEnv(unset) = %q, want default", got)
	}

	t.Setenv("TEST_SET_VAR", "custom")
	if got := getEnv("TEST_SET_VAR", "default"); got != "custom" {
		t.Errorf("getEnv(set) = %q, want custom", got)
	}

	// Empty values fall through to the default.
	t.Setenv("TEST_EMPTY_VAR", "")
	if got := getEnv("TEST_EMPTY_VAR", "default"); got != "default" {
		t.Errorf("getEnv(empty) = %q, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	os.Unsetenv("TEST_BOOL_UNSET")
	if got := getEnvBool("TEST_BOOL_UNSET", true); got != true {
		t.Error("getEnvBool(unset) ignored the default")
	}

	t.Setenv("TEST_BOOL_SET", "false")
	if got := getEnvBool("TEST_BOOL_SET", true); got != false {
		t.Error("getEnvBool did not parse false")
	}

	t.Setenv("TEST_BOOL_BAD", "maybe")
	if got := getEnvBool("TEST_BOOL_BAD", true); got != true {
		t.Error("getEnvBool(bad value) ignored the default")
	}
}

func TestEnsureDirectory(t *testing.T) {
	base := t.TempDir()

	// Creates missing directories.
	target := filepath.Join(base, "nested", "dir")
	if err := ensureDirectory(target, "test"); err != nil {
		t.Fatalf("ensureDirectory(missing): %v", err)
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Fatalf("directory was not created: %v", err)
	}

	// Accepts existing directories.
	if err := ensureDirectory(target, "test"); err != nil {
		t.Errorf("ensureDirectory(existing): %v", err)
	}

	// Rejects files.
	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("ensureDirectory accepted a regular file")
	}
}

func TestTestWriteAccess(t *testing.T) {
	dir := t.TempDir()
	if err := testWriteAccess(dir); err != nil {
		t.Errorf("testWriteAccess(writable) = %v", err)
	}
	// The probe file must not linger.
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("write test file left behind")
	}
}

func TestGetRouteGroup(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/api/preview/{path:.*}", "api/preview"},
		{"/api/export", "api/export"},
		{"/healthz", "healthz"},
		{"/", ""},
	}
	for _, tc := range cases {
		if got := getRouteGroup(tc.path); got != tc.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/grid", func(http.ResponseWriter, *http.Request) {}).Methods(http.MethodGet)
	router.HandleFunc("/api/export", func(http.ResponseWriter, *http.Request) {}).Methods(http.MethodPost)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}

	seen := make(map[string]string)
	for _, r := range routes {
		seen[r.Path] = r.Method
	}
	if seen["/api/grid"] != http.MethodGet {
		t.Errorf("grid route method = %s", seen["/api/grid"])
	}
	if seen["/api/export"] != http.MethodPost {
		t.Errorf("export route method = %s", seen["/api/export"])
	}
}

func TestLoadConfig(t *testing.T) {
	base := t.TempDir()
	t.Setenv("VIDEO_DIR", filepath.Join(base, "videos"))
	t.Setenv("WORK_DIR", filepath.Join(base, "work"))
	t.Setenv("DATABASE_DIR", filepath.Join(base, "db"))
	t.Setenv("PORT", "8181")
	t.Setenv("SEEK_TIMEOUT", "250ms")
	t.Setenv("PREVIEW_FPS", "8")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Port != "8181" {
		t.Errorf("Port = %s", config.Port)
	}
	if config.SeekTimeout.Milliseconds() != 250 {
		t.Errorf("SeekTimeout = %v", config.SeekTimeout)
	}
	if config.PreviewFPS != 8 {
		t.Errorf("PreviewFPS = %d", config.PreviewFPS)
	}
	if config.DatabasePath != filepath.Join(base, "db", "theater.db") {
		t.Errorf("DatabasePath = %s", config.DatabasePath)
	}
	if !config.ExportsEnabled {
		t.Error("exports disabled with a writable work directory")
	}
	if config.EncoderDir != filepath.Join(base, "work", "encoder") {
		t.Errorf("EncoderDir = %s", config.EncoderDir)
	}
}

func TestLoadConfigBadSeekTimeout(t *testing.T) {
	base := t.TempDir()
	t.Setenv("VIDEO_DIR", filepath.Join(base, "videos"))
	t.Setenv("WORK_DIR", filepath.Join(base, "work"))
	t.Setenv("DATABASE_DIR", filepath.Join(base, "db"))
	t.Setenv("SEEK_TIMEOUT", "soon")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.SeekTimeout.Milliseconds() != 500 {
		t.Errorf("SeekTimeout = %v, want the 500ms default", config.SeekTimeout)
	}
}

func TestLoadConfigBadPreviewFPS(t *testing.T) {
	base := t.TempDir()
	t.Setenv("VIDEO_DIR", filepath.Join(base, "videos"))
	t.Setenv("WORK_DIR", filepath.Join(base, "work"))
	t.Setenv("DATABASE_DIR", filepath.Join(base, "db"))
	t.Setenv("PREVIEW_FPS", "0")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.PreviewFPS != preview.DefaultFPS {
		t.Errorf("PreviewFPS = %d, want the %d default", config.PreviewFPS, preview.DefaultFPS)
	}
}
