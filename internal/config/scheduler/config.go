package scheduler_config

import (
	"time"

	"github.com/sitepulse/sitepulse/internal/obs"
	"github.com/sitepulse/sitepulse/internal/prober"
	pginfra "github.com/sitepulse/sitepulse/internal/repository/postgres"
)

type SchedCfg struct {
	// Tick is the idle wait after a completed cycle; StoreRetryWait is
	// the longer wait after the store could not be enumerated. Two
	// deliberately distinct constants, not a bug.
	Tick           time.Duration `mapstructure:"tick"`
	StoreRetryWait time.Duration `mapstructure:"store_retry_wait"`
	MaxConcurrent  int           `mapstructure:"max_concurrent"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
}

type KafkaCfg struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogCfg struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	File   string `mapstructure:"file"`
	Env    string `mapstructure:"env"`
	Ver    string `mapstructure:"version"`
}

func (c LogCfg) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Level,
		Pretty: c.Pretty,
		File:   c.File,
		App:    "scheduler",
		Env:    c.Env,
		Ver:    c.Ver,
	}
}

type OTELCfg struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"otlp_endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func (c OTELCfg) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      c.Enable,
		Endpoint:    c.Endpoint,
		ServiceName: c.ServiceName,
		SampleRatio: c.SampleRatio,
	}
}

type Config struct {
	DB    pginfra.Config `mapstructure:"db"`
	Sched SchedCfg       `mapstructure:"sched"`
	HTTP  prober.Config  `mapstructure:"http"`
	Kafka KafkaCfg       `mapstructure:"kafka"`
	OTEL  OTELCfg        `mapstructure:"otel"`
	Log   LogCfg         `mapstructure:"log"`
}
