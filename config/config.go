package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/monitor"
)

// Config structure
type Config struct {
	Server          ServerConfig            `mapstructure:"server"`
	DatabaseCluster DatabaseClusterConfig   `mapstructure:"database_cluster"`
	Redis           RedisConfig             `mapstructure:"redis"`
	Crons           Crons                   `mapstructure:"crons"`
	Cache           PerformanceCacheConfig  `mapstructure:"cache"`
	Commission      model.CommissionPlan    `mapstructure:"commission"`
	Requirements    model.LevelRequirements `mapstructure:"level_requirements"`
	Leaderboard     LeaderboardConfig       `mapstructure:"leaderboard"`
	Forecast        ForecastConfig          `mapstructure:"forecast"`
}

// ServerConfig structure
type ServerConfig struct {
	Monitoring monitor.Config `mapstructure:"monitoring"`
	API        APIConfig      `mapstructure:"api"`
}

// APIConfig structure
type APIConfig struct {
	Port           int    `mapstructure:"port"`
	KeepAlive      bool   `mapstructure:"keep_alive"`
	Domain         string `mapstructure:"domain"`
	JWTTokenSecret string `mapstructure:"jwt_token_secret"`
}

// DatabaseClusterConfig structure
type DatabaseClusterConfig struct {
	Writer DatabaseConfig `mapstructure:"writer"`
	Reader DatabaseConfig `mapstructure:"reader"`
}

// DatabaseConfig structure
type DatabaseConfig struct {
	Type            string `mapstructure:"type"`
	Host            string `mapstructure:"host"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLmode         string `mapstructure:"sslmode"`
	ApplicationName string `mapstructure:"application_name"`
	Port            int    `mapstructure:"port"`
}

// RedisConfig structure
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Crons - mapping of ids to execution frequency
type Crons map[string]string

// PerformanceCacheConfig holds the TTLs of the cached aggregates
type PerformanceCacheConfig struct {
	Prefix         string        `mapstructure:"prefix"`
	PersonalTTL    time.Duration `mapstructure:"personal_ttl"`
	TeamTTL        time.Duration `mapstructure:"team_ttl"`
	ReferralTTL    time.Duration `mapstructure:"referral_ttl"`
	LeaderboardTTL time.Duration `mapstructure:"leaderboard_ttl"`
	ForecastTTL    time.Duration `mapstructure:"forecast_ttl"`
}

// LeaderboardConfig structure
type LeaderboardConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// ForecastConfig structure
type ForecastConfig struct {
	HistoryMonths int `mapstructure:"history_months"`
}

// LoadConfig Load server configuration from the yaml file
func LoadConfig(viperConf *viper.Viper) Config {
	var config Config

	err := viperConf.Unmarshal(&config)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to decode config into struct")
	}
	if len(config.Commission) == 0 {
		config.Commission = model.DefaultCommissionPlan()
	}
	if len(config.Requirements) == 0 {
		config.Requirements = model.DefaultLevelRequirements()
	}
	return config
}

// OpenConfig godoc
func OpenConfig(file string) {
	if file != "" {
		// Use config file from the flag.
		viper.SetConfigFile(file)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigName(".config")
	viper.AddConfigPath(".")             // First try to load the config from the current directory
	viper.AddConfigPath("$HOME")         // Then try to load it from the HOME directory
	viper.AddConfigPath("/etc/zhongdao") // As a last resort try to load it from /etc/
	viper.SetEnvPrefix("CFG")
	viper.AutomaticEnv()
	setDefaultVariables()

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		log.Fatal().Err(err).Msg("Unable to read configuration file")
	}
}

func setDefaultVariables() {
	viper.SetDefault("server.api.port", 8080)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("cache.prefix", "perf")
	viper.SetDefault("cache.personal_ttl", 5*time.Minute)
	viper.SetDefault("cache.team_ttl", 10*time.Minute)
	viper.SetDefault("cache.referral_ttl", 10*time.Minute)
	viper.SetDefault("cache.leaderboard_ttl", 15*time.Minute)
	viper.SetDefault("cache.forecast_ttl", time.Hour)
	viper.SetDefault("leaderboard.default_limit", 10)
	viper.SetDefault("leaderboard.max_limit", 100)
	viper.SetDefault("forecast.history_months", 6)
}
