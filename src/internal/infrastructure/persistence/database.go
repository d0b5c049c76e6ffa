package persistence

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	gormprometheus "gorm.io/plugin/prometheus"
)

// ===========================
// 資料庫連線
// ===========================

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	Type            string // sqlite | postgres | mysql
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Dialector 依資料庫類型建立 GORM Dialector
func Dialector(cfg DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "postgres", "postgresql":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "", "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "salon_crm.db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

// Open 開啟資料庫連線並自動遷移傳入的模型
//
// 時間一律以 UTC 寫入。sqlite 記憶體資料庫每條連線各自獨立，因此限制為單一連線。
func Open(cfg DatabaseConfig, logger gormlogger.Interface, models ...interface{}) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
	if logger != nil {
		gormCfg.Logger = logger
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if isInMemorySQLite(cfg) {
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	return db, nil
}

// EnableDBStats 以 Prometheus 匯出連線池統計（註冊到預設 registry）
func EnableDBStats(db *gorm.DB, dbName string, refresh time.Duration) error {
	seconds := uint32(refresh / time.Second)
	if seconds == 0 {
		seconds = 15
	}
	return db.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          dbName,
		RefreshInterval: seconds,
		StartServer:     false,
	}))
}

// OpenInMemory 開啟靜音的 sqlite 記憶體資料庫（整合測試使用）
func OpenInMemory(models ...interface{}) (*gorm.DB, error) {
	return Open(
		DatabaseConfig{Type: "sqlite", DSN: ":memory:"},
		gormlogger.Default.LogMode(gormlogger.Silent),
		models...,
	)
}

// Close 關閉底層連線
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isInMemorySQLite(cfg DatabaseConfig) bool {
	t := strings.ToLower(strings.TrimSpace(cfg.Type))
	return (t == "" || t == "sqlite") && strings.Contains(cfg.DSN, ":memory:")
}
