package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=postgres mysql"`
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port" validate:"min=0,max=65535"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" validate:"min=0"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN builds a driver specific connection string. URL wins when set.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type ServerConfig struct {
	Port         int      `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  int      `mapstructure:"read_timeout" validate:"min=1"`
	WriteTimeout int      `mapstructure:"write_timeout" validate:"min=1"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// ScoringConfig carries the season's business rules.
type ScoringConfig struct {
	MinActiveMembers        int    `mapstructure:"min_active_members" validate:"min=1"`
	Precision               int    `mapstructure:"precision" validate:"min=0,max=6"`
	AwardNonPositiveLeaders bool   `mapstructure:"award_non_positive_leaders"`
	PointsPerAward          int    `mapstructure:"points_per_award" validate:"min=1"`
	ReasonPrefix            string `mapstructure:"reason_prefix" validate:"required"`
	FinalizeTimeout         int    `mapstructure:"finalize_timeout" validate:"min=1"`
	MaxParallelWeeks        int    `mapstructure:"max_parallel_weeks" validate:"min=1"`
}

func (s ScoringConfig) Timeout() time.Duration {
	return time.Duration(s.FinalizeTimeout) * time.Second
}

type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	FinalizeCron string `mapstructure:"finalize_cron"`
	LookbackDays int    `mapstructure:"lookback_days" validate:"min=1"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `mapstructure:"burst" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
	Output string `mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "fitness_league")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("scoring.min_active_members", 4)
	v.SetDefault("scoring.precision", 2)
	v.SetDefault("scoring.award_non_positive_leaders", false)
	v.SetDefault("scoring.points_per_award", 1)
	v.SetDefault("scoring.reason_prefix", "winner")
	v.SetDefault("scoring.finalize_timeout", 30)
	v.SetDefault("scoring.max_parallel_weeks", 4)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.finalize_cron", "0 5 * * * *")
	v.SetDefault("scheduler.lookback_days", 7)

	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 30)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
}

// Load reads configPath (YAML) when it exists, then applies LEAGUE_* environment
// overrides, e.g. LEAGUE_SCORING_MIN_ACTIVE_MEMBERS=5.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("league")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
