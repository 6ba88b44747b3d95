package database

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsSourceURL(t *testing.T) {
	got, err := MigrationsSourceURL("db/migrations")
	if err != nil {
		t.Fatalf("MigrationsSourceURL returned error: %v", err)
	}
	if !strings.HasPrefix(got, "file://") {
		t.Errorf("source URL %q does not use the file:// scheme", got)
	}
	if !strings.HasSuffix(got, "db/migrations") {
		t.Errorf("source URL %q does not end with the given directory", got)
	}
	if !filepath.IsAbs(strings.TrimPrefix(got, "file://")) {
		t.Errorf("source URL %q does not resolve to an absolute path", got)
	}
}

func TestMigrationsSourceURLAbsolutePath(t *testing.T) {
	got, err := MigrationsSourceURL("/srv/dompetku/db/migrations")
	if err != nil {
		t.Fatalf("MigrationsSourceURL returned error: %v", err)
	}
	if got != "file:///srv/dompetku/db/migrations" {
		t.Errorf("MigrationsSourceURL = %q, want file:///srv/dompetku/db/migrations", got)
	}
}
