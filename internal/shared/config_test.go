package shared_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"wildtrail/internal/domain"
	"wildtrail/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	c := shared.Load()
	if c.HTTPAddr != ":8080" || c.SessionTTL != 30*time.Minute || c.CacheTTL != 900*time.Second {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if !c.Site.BookingsOpen || c.Site.Title != "Wildtrail" {
		t.Fatalf("unexpected site defaults: %+v", c.Site)
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins = %v", c.CORSOrigins)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "wildtrail.yaml")
	yml := []byte("http_addr: \":9090\"\nsession_ttl: 10m\ncors_origins: \"https://a.example, https://b.example\"\nsite:\n  title: Field Notes\n  bookings_open: false\n")
	if err := os.WriteFile(f, yml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", f)
	t.Setenv("HTTP_ADDR", ":7070") // env beats file
	t.Setenv("SITE_TAGLINE", "from env")

	c := shared.Load()
	if c.HTTPAddr != ":7070" {
		t.Fatalf("http addr = %s", c.HTTPAddr)
	}
	if c.SessionTTL != 10*time.Minute {
		t.Fatalf("session ttl = %v", c.SessionTTL)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins = %v", c.CORSOrigins)
	}
	if c.Site.Title != "Field Notes" || c.Site.BookingsOpen || c.Site.Tagline != "from env" {
		t.Fatalf("site = %+v", c.Site)
	}
	if c.ConfigFile != f {
		t.Fatalf("config file = %q", c.ConfigFile)
	}
}

func TestSettings_Update(t *testing.T) {
	s := shared.NewSettings(domain.SiteSettings{Title: "A", BookingsOpen: true})
	s.Update(domain.SiteSettings{Title: "B"})
	if got := s.Site(); got.Title != "B" || got.BookingsOpen {
		t.Fatalf("site = %+v", got)
	}
}
