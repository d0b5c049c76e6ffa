package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ===========================
// 設定結構
// ===========================

// Config 應用程式設定
//
// 來源優先序：環境變數（SALON_ 前綴）> salon-crm.yml > 預設值。
// 巢狀鍵以底線對應環境變數，例如 checkin.token_ttl → SALON_CHECKIN_TOKEN_TTL。
type Config struct {
	AppName     string
	Environment string
	Version     string

	HTTP     HTTPConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Log      LogConfig
	Checkin  CheckinConfig
	QRCode   QRCodeConfig
	Metrics  MetricsConfig
}

// HTTPConfig HTTP 伺服器
type HTTPConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// Addr 監聽位址
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AuthConfig 員工 JWT
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// DatabaseConfig 資料庫
type DatabaseConfig struct {
	Type            string // sqlite | postgres | mysql
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LogConfig 日誌
type LogConfig struct {
	Level  string
	Format string
}

// CheckinConfig 報到流程
type CheckinConfig struct {
	PublicBaseURL  string
	TokenTTL       time.Duration
	AtomicClaim    bool
	PollInterval   time.Duration
	TickInterval   time.Duration
	ConfirmedGrace time.Duration
}

// QRCodeConfig 外部 QR 圖片服務
type QRCodeConfig struct {
	Endpoint string
	Size     int
}

// MetricsConfig Prometheus
type MetricsConfig struct {
	Enabled bool
	DBStats bool
}

// IsProduction 是否為正式環境
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// ===========================
// 載入
// ===========================

const (
	envPrefix      = "SALON"
	configName     = "salon-crm"
	configType     = "yml"
	devJWTSecret   = "dev-only-secret"
	defaultQRCodes = "https://api.qrserver.com/v1/create-qr-code/"
	sqliteDSN      = "salon_crm.db"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "salon-crm")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "0.1.0")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "salon-crm")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("checkin.public_base_url", "http://localhost:3000")
	v.SetDefault("checkin.token_ttl", 60*time.Second)
	v.SetDefault("checkin.atomic_claim", true)
	v.SetDefault("checkin.poll_interval", 2*time.Second)
	v.SetDefault("checkin.tick_interval", time.Second)
	v.SetDefault("checkin.confirmed_grace", 2*time.Second)

	v.SetDefault("qrcode.endpoint", defaultQRCodes)
	v.SetDefault("qrcode.size", 250)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.db_stats", true)
}

// Loader 讀取並監看設定
type Loader struct {
	v *viper.Viper
}

// NewLoader 建立 viper 實例
//
// paths 為設定檔搜尋目錄；未提供時搜尋 /etc/salon-crm 與目前目錄。
func NewLoader(paths ...string) *Loader {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	if len(paths) == 0 {
		paths = []string{"/etc/salon-crm", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Load 讀取設定檔（可不存在）並驗證
func (l *Loader) Load() (Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return l.build()
}

// ConfigFile 實際讀取的設定檔路徑（沒有設定檔時為空字串）
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) build() (Config, error) {
	v := l.v
	cfg := Config{
		AppName:     v.GetString("app.name"),
		Environment: strings.ToLower(strings.TrimSpace(v.GetString("app.environment"))),
		Version:     v.GetString("app.version"),
		HTTP: HTTPConfig{
			Port:            v.GetInt("http.port"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			CORSOrigins:     splitList(v.GetStringSlice("http.cors_origins")),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(v.GetString("auth.jwt_secret")),
			JWTIssuer: v.GetString("auth.jwt_issuer"),
		},
		Database: DatabaseConfig{
			Type:            strings.ToLower(strings.TrimSpace(v.GetString("database.type"))),
			DSN:             v.GetString("database.dsn"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Checkin: CheckinConfig{
			PublicBaseURL:  strings.TrimRight(v.GetString("checkin.public_base_url"), "/"),
			TokenTTL:       v.GetDuration("checkin.token_ttl"),
			AtomicClaim:    v.GetBool("checkin.atomic_claim"),
			PollInterval:   v.GetDuration("checkin.poll_interval"),
			TickInterval:   v.GetDuration("checkin.tick_interval"),
			ConfirmedGrace: v.GetDuration("checkin.confirmed_grace"),
		},
		QRCode: QRCodeConfig{
			Endpoint: v.GetString("qrcode.endpoint"),
			Size:     v.GetInt("qrcode.size"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			DBStats: v.GetBool("metrics.db_stats"),
		},
	}

	if cfg.Auth.JWTSecret == "" && !cfg.IsProduction() {
		cfg.Auth.JWTSecret = devJWTSecret
	}
	// 只有 sqlite 有預設檔案；postgres / mysql 必須明確提供 DSN
	if cfg.Database.Type == "sqlite" && strings.TrimSpace(cfg.Database.DSN) == "" {
		cfg.Database.DSN = sqliteDSN
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 檢查設定
func (c Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("database.type must be sqlite, postgres or mysql, got %q", c.Database.Type)
	}
	if c.Database.Type != "sqlite" && strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required for %s", c.Database.Type)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required in production")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	if c.Checkin.TokenTTL <= 0 {
		return fmt.Errorf("checkin.token_ttl must be positive, got %s", c.Checkin.TokenTTL)
	}
	u, err := url.Parse(c.Checkin.PublicBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("checkin.public_base_url must be an absolute URL, got %q", c.Checkin.PublicBaseURL)
	}
	return nil
}

// splitList 環境變數以逗號分隔時 viper 只會得到單一元素
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
