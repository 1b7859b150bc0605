package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	S3        S3Config        `mapstructure:"s3"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig holds the HMAC secret used to verify incoming tokens.
// Tokens are issued elsewhere.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	JSON   bool   `mapstructure:"json"`
	Stdout bool   `mapstructure:"stdout"`
}

// SchedulerConfig tunes recurrence generation and the upcoming view.
type SchedulerConfig struct {
	DefaultCap    int `mapstructure:"default_cap"`
	HorizonDays   int `mapstructure:"horizon_days"`
	UpcomingLimit int `mapstructure:"upcoming_limit"`
	UpcomingMax   int `mapstructure:"upcoming_max"`
	// Empty disables the background refresher.
	RefreshCron        string `mapstructure:"refresh_cron"`
	RefreshConcurrency int    `mapstructure:"refresh_concurrency"`
}

type CatalogConfig struct {
	Collection     string        `mapstructure:"collection"`
	CacheSizeBytes int           `mapstructure:"cache_size_bytes"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	ExportPrefix    string `mapstructure:"export_prefix"`
}

// Enabled reports whether calendar export has somewhere to upload to.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// defaults + env only
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	if err = config.Validate(); err != nil {
		return
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "workout_scheduler")
	// AutomaticEnv only sees keys viper already knows about
	v.SetDefault("jwt.secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
	v.SetDefault("log.stdout", true)
	v.SetDefault("scheduler.default_cap", 12)
	v.SetDefault("scheduler.horizon_days", 90)
	v.SetDefault("scheduler.upcoming_limit", 5)
	v.SetDefault("scheduler.upcoming_max", 50)
	v.SetDefault("scheduler.refresh_cron", "")
	v.SetDefault("scheduler.refresh_concurrency", 4)
	v.SetDefault("catalog.collection", "workout_templates")
	v.SetDefault("catalog.cache_size_bytes", 8*1024*1024)
	v.SetDefault("catalog.cache_ttl", "10m")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.export_prefix", "exports")
}

// Validate rejects values the scheduler cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URI == "" {
		errs = append(errs, errors.New("database.uri is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Scheduler.DefaultCap < 1 {
		errs = append(errs, fmt.Errorf("scheduler.default_cap must be >= 1, got %d", c.Scheduler.DefaultCap))
	}
	if c.Scheduler.HorizonDays < 1 {
		errs = append(errs, fmt.Errorf("scheduler.horizon_days must be >= 1, got %d", c.Scheduler.HorizonDays))
	}
	if c.Scheduler.UpcomingLimit < 1 {
		errs = append(errs, fmt.Errorf("scheduler.upcoming_limit must be >= 1, got %d", c.Scheduler.UpcomingLimit))
	}
	if c.Scheduler.UpcomingMax < c.Scheduler.UpcomingLimit {
		errs = append(errs, fmt.Errorf("scheduler.upcoming_max (%d) must not be below upcoming_limit (%d)", c.Scheduler.UpcomingMax, c.Scheduler.UpcomingLimit))
	}
	if c.Scheduler.RefreshConcurrency < 1 {
		errs = append(errs, fmt.Errorf("scheduler.refresh_concurrency must be >= 1, got %d", c.Scheduler.RefreshConcurrency))
	}
	if c.Catalog.Collection == "" {
		errs = append(errs, errors.New("catalog.collection is required"))
	}
	return errors.Join(errs...)
}
