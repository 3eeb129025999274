package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port                       string  `env:"PORT" env-default:"8080"`
	DBPath                     string  `env:"DB_PATH" env-default:"./data/analytics.db"`
	AllowUnsafeDuplicateIngest bool    `env:"ALLOW_UNSAFE_DUPLICATE_INGEST" env-default:"false"`
	ExcelUTCOffsetHours        int     `env:"EXCEL_UTC_OFFSET_HOURS" env-default:"3"`
	DefaultDailyTarget         float64 `env:"DEFAULT_DAILY_TARGET" env-default:"12000"`
	DefaultRotationTarget      float64 `env:"DEFAULT_ROTATION_TARGET" env-default:"1050"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SerialOffset is the correction applied to Excel serial timestamps,
// which the vendor export writes in spreadsheet-local time.
func (c *Config) SerialOffset() time.Duration {
	return time.Duration(c.ExcelUTCOffsetHours) * time.Hour
}
