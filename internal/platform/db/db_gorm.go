// Package db はGORMによるデータベース接続を提供します。
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	candleadapters "candle_sync/internal/feature/candles/adapters"
)

// DefaultSQLitePath はDB_PATH未指定時のSQLiteファイルパスです。
const DefaultSQLitePath = "data/candle_data.db"

// Config はデータベース接続の設定です。
type Config struct {
	Driver   string // "sqlite"（デフォルト）, "mysql", "postgres"
	Path     string // SQLiteのファイルパス
	User     string
	Password string
	Name     string
	Host     string
	Port     string
}

// LoadConfig は環境変数からデータベース設定を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		Driver:   os.Getenv("DB_DRIVER"),
		Path:     os.Getenv("DB_PATH"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
	}
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.Path == "" {
		cfg.Path = DefaultSQLitePath
	}
	return cfg
}

// BuildDSN は設定からドライバ用のDSN文字列を生成します。
func BuildDSN(cfg Config) string {
	switch cfg.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
	default:
		return cfg.Path
	}
}

// Dialector は設定に応じたGORMダイアレクタを返します。
func Dialector(cfg Config) gorm.Dialector {
	dsn := BuildDSN(cfg)
	switch cfg.Driver {
	case "mysql":
		return gmysql.Open(dsn)
	case "postgres":
		return gpostgres.Open(dsn)
	default:
		return gsqlite.Open(dsn)
	}
}

// ConnectWithRetry は接続に成功するまで一定間隔でリトライします。
func ConnectWithRetry(d gorm.Dialector, timeout time.Duration) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := gorm.Open(d, &gorm.Config{})
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %v: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}
}

// OpenDB は環境変数の設定でデータベースを開きます。
// 接続できない場合はプロセスを終了します。
func OpenDB() *gorm.DB {
	cfg := LoadConfig()

	db, err := ConnectWithRetry(Dialector(cfg), 60*time.Second)
	if err != nil {
		log.Fatal(err)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		// マイグレーション（candlesテーブル）
		if err := db.AutoMigrate(&candleadapters.CandleModel{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
