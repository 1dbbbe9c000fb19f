package shared

import (
	"errors"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"wildtrail/internal/domain"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	CatalogAPIBase string
	CatalogAPIKey  string
	CatalogAPIRPS  int
	Workers        int

	CacheTTL   time.Duration
	SessionTTL time.Duration

	AdminTokenHash string // bcrypt hash of the admin bearer token
	CORSOrigins    []string
	ContactRPM     int // contact form submissions per minute per client IP

	ConfigFile string
	Site       domain.SiteSettings

	v *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "prod")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("mysql_dsn", "root:root@tcp(localhost:3306)/wildtrail?parseTime=true&charset=utf8mb4&loc=UTC")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_password", "")
	v.SetDefault("catalog_api_base_url", "")
	v.SetDefault("catalog_api_key", "")
	v.SetDefault("catalog_api_rps", 5)
	v.SetDefault("ingest_workers", 4)
	v.SetDefault("cache_ttl_seconds", 900)
	v.SetDefault("session_ttl", "30m")
	v.SetDefault("admin_token_hash", "")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("contact_rpm", 5)

	v.SetDefault("site.title", "Wildtrail")
	v.SetDefault("site.tagline", "Wildlife photography tours and stays in Nepal")
	v.SetDefault("site.contact_email", "hello@wildtrail.example")
	v.SetDefault("site.bookings_open", true)
}

// Load reads defaults, an optional .env, an optional config file (CONFIG_FILE)
// and the environment, later sources winning.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if f := v.GetString("config_file"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("config file not loaded, using env and defaults")
		}
	}

	c := Config{
		AppEnv:         v.GetString("app_env"),
		LogLevel:       v.GetString("log_level"),
		HTTPAddr:       v.GetString("http_addr"),
		MetricsAddr:    v.GetString("metrics_addr"),
		MySQLDSN:       v.GetString("mysql_dsn"),
		RedisAddr:      v.GetString("redis_addr"),
		RedisDB:        v.GetInt("redis_db"),
		RedisPass:      v.GetString("redis_password"),
		CatalogAPIBase: v.GetString("catalog_api_base_url"),
		CatalogAPIKey:  v.GetString("catalog_api_key"),
		CatalogAPIRPS:  v.GetInt("catalog_api_rps"),
		Workers:        v.GetInt("ingest_workers"),
		CacheTTL:       time.Duration(v.GetInt("cache_ttl_seconds")) * time.Second,
		SessionTTL:     v.GetDuration("session_ttl"),
		AdminTokenHash: v.GetString("admin_token_hash"),
		CORSOrigins:    splitList(v.GetString("cors_origins")),
		ContactRPM:     v.GetInt("contact_rpm"),
		ConfigFile:     v.ConfigFileUsed(),
		Site:           siteFrom(v),
		v:              v,
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * time.Minute
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.CatalogAPIBase != "" && c.CatalogAPIKey == "" {
		log.Warn().Msg("CATALOG_API_KEY is empty")
	}
	if c.AdminTokenHash == "" {
		log.Warn().Msg("ADMIN_TOKEN_HASH is empty; admin routes are disabled")
	}
	return c
}

func siteFrom(v *viper.Viper) domain.SiteSettings {
	return domain.SiteSettings{
		Title:        v.GetString("site.title"),
		Tagline:      v.GetString("site.tagline"),
		ContactEmail: v.GetString("site.contact_email"),
		BookingsOpen: v.GetBool("site.bookings_open"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Settings hands out the current site settings; the config watcher swaps them.
type Settings struct {
	mu   sync.RWMutex
	site domain.SiteSettings
}

func NewSettings(s domain.SiteSettings) *Settings { return &Settings{site: s} }

func (s *Settings) Site() domain.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site
}

func (s *Settings) Update(site domain.SiteSettings) {
	s.mu.Lock()
	s.site = site
	s.mu.Unlock()
}

// WatchSite reloads the site settings whenever the config file changes.
// Only the site block is live; everything else needs a restart.
func (c Config) WatchSite(s *Settings) {
	if c.v == nil || c.ConfigFile == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		site := siteFrom(c.v)
		s.Update(site)
		log.Info().
			Str("file", e.Name).
			Bool("bookings_open", site.BookingsOpen).
			Msg("site settings reloaded")
	})
	c.v.WatchConfig()
}
