package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	StoragePath         string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	InputPath           string        `env:"INPUT_PATH" envDefault:"conversations.json"`
	ReportDir           string        `env:"REPORT_DIR" envDefault:"reports"`
	Workers             int           `env:"WORKERS" envDefault:"4"`
	ScoreRatePerSecond  float64       `env:"SCORE_RATE_PER_SECOND" envDefault:"50"`
	CalibrationInterval time.Duration `env:"CALIBRATION_INTERVAL" envDefault:"1h"`
	AutoSaveInterval    time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"10s"`
	BackupCount         int           `env:"BACKUP_COUNT" envDefault:"3"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse environment: %v", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg
}
