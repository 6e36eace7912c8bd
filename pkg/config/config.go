package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Notifications NotificationsConfig
	Dashboard     DashboardConfig
	Directory     DirectoryConfig
	Coverage      CoverageConfig
	Buildings     BuildingsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// NotificationsConfig controls outbound email delivery.
type NotificationsConfig struct {
	Enabled      bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromAddress  string
	FromName     string
	PortalURL    string
	Workers      int
	MaxRetries   int
	RetryDelay   time.Duration
}

// DashboardConfig tunes pending-count caching.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// DirectoryConfig tunes staff directory caching.
type DirectoryConfig struct {
	CacheTTL time.Duration
}

// CoverageConfig governs signed accept/decline links in coverage emails.
type CoverageConfig struct {
	LinkSecret string
	LinkTTL    time.Duration
}

// CoverageType is a selectable duration option for a covered slot.
type CoverageType struct {
	Label string
	Hours float64
}

// Building describes one organizational scope and its bell schedule.
type Building struct {
	Code          string
	Name          string
	Periods       []string
	CoverageTypes []CoverageType
}

// BuildingsConfig holds the configured scope roster.
type BuildingsConfig struct {
	Default string
	Roster  []Building
}

// Exists reports whether the code matches a configured building.
func (b BuildingsConfig) Exists(code string) bool {
	for _, bld := range b.Roster {
		if strings.EqualFold(bld.Code, code) {
			return true
		}
	}
	return false
}

// Get returns the building config for the code, falling back to the default.
func (b BuildingsConfig) Get(code string) Building {
	for _, bld := range b.Roster {
		if strings.EqualFold(bld.Code, code) {
			return bld
		}
	}
	for _, bld := range b.Roster {
		if strings.EqualFold(bld.Code, b.Default) {
			return bld
		}
	}
	return Building{Code: b.Default}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:      v.GetBool("NOTIFICATIONS_ENABLED"),
		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		FromAddress:  v.GetString("MAIL_FROM_ADDRESS"),
		FromName:     v.GetString("MAIL_FROM_NAME"),
		PortalURL:    v.GetString("PORTAL_URL"),
		Workers:      v.GetInt("NOTIFICATION_WORKERS"),
		MaxRetries:   v.GetInt("NOTIFICATION_MAX_RETRIES"),
		RetryDelay:   parseDuration(v.GetString("NOTIFICATION_RETRY_DELAY"), 30*time.Second),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), time.Minute),
	}

	cfg.Directory = DirectoryConfig{
		CacheTTL: parseDuration(v.GetString("DIRECTORY_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Coverage = CoverageConfig{
		LinkSecret: v.GetString("COVERAGE_LINK_SECRET"),
		LinkTTL:    parseDuration(v.GetString("COVERAGE_LINK_TTL"), 7*24*time.Hour),
	}

	cfg.Buildings = BuildingsConfig{
		Default: v.GetString("DEFAULT_BUILDING"),
		Roster:  defaultRoster(),
	}
	if codes := splitAndTrim(v.GetString("BUILDINGS")); len(codes) > 0 {
		cfg.Buildings.Roster = filterRoster(cfg.Buildings.Roster, codes)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tst_bank")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("NOTIFICATIONS_ENABLED", false)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM_ADDRESS", "tst-bank@localhost")
	v.SetDefault("MAIL_FROM_NAME", "TST Bank")
	v.SetDefault("PORTAL_URL", "http://localhost:8080")
	v.SetDefault("NOTIFICATION_WORKERS", 1)
	v.SetDefault("NOTIFICATION_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATION_RETRY_DELAY", "30s")

	v.SetDefault("DASHBOARD_CACHE_TTL", "1m")
	v.SetDefault("DIRECTORY_CACHE_TTL", "5m")

	v.SetDefault("COVERAGE_LINK_SECRET", "dev_coverage_secret")
	v.SetDefault("COVERAGE_LINK_TTL", "168h")

	v.SetDefault("DEFAULT_BUILDING", "OMS")
	v.SetDefault("BUILDINGS", "")
}

// defaultRoster mirrors the district's configured scopes. Period labels carry
// the bell times because submissions reference them verbatim.
func defaultRoster() []Building {
	fullHalf := []CoverageType{
		{Label: "Full Period", Hours: 1},
		{Label: "Half Period", Hours: 0.5},
	}
	return []Building{
		{
			Code: "OMS",
			Name: "Orono Middle School",
			Periods: []string{
				"Period 1 - 8:10 - 8:57",
				"Period 2 - 9:01 - 9:48",
				"Period 3 - 9:52 - 10:39",
				"Period 4 - 10:43 - 11:09",
				"Period 5 - 11:11 - 11:37",
				"Period 4/5 - 10:30 - 11:37",
				"Period 6 - 11:40 - 12:06",
				"Period 7 - 12:08 - 12:34",
				"Period 6/7 - 11:40 - 12:34",
				"Period 8 - 12:37 - 1:08",
				"Period 9 - 1:12 - 1:59",
				"Period 10 - 2:03 - 2:50",
			},
			CoverageTypes: fullHalf,
		},
		{
			Code:          "OHS",
			Name:          "Orono High School",
			Periods:       []string{"Period 1", "Period 2", "Period 3", "Period 4"},
			CoverageTypes: []CoverageType{{Label: "Full Period", Hours: 1}},
		},
		{
			Code:          "OIS",
			Name:          "Orono Intermediate School",
			CoverageTypes: []CoverageType{{Label: "Time Duration", Hours: 0}},
		},
		{
			Code:          "SES",
			Name:          "Schumann Elementary School",
			CoverageTypes: []CoverageType{{Label: "Time Duration", Hours: 0}},
		},
	}
}

func filterRoster(roster []Building, codes []string) []Building {
	keep := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		keep[strings.ToUpper(c)] = struct{}{}
	}
	filtered := make([]Building, 0, len(codes))
	for _, b := range roster {
		if _, ok := keep[strings.ToUpper(b.Code)]; ok {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return roster
	}
	return filtered
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
