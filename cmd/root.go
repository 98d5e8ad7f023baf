package cmd

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/config"
)

// LogLevel Flag
var LogLevel = "info"

// LogFormat Flag
var LogFormat = "json"
var cfgFile string
var rootCmd = &cobra.Command{
	Use:   "zhongdao-performance",
	Short: "Team performance and commission backend",
	Long:  `The team performance subsystem of the distribution platform: per seller aggregates, team tree rollups, leaderboards, level progression and commission forecasts.`,
}

func init() {
	// set log level
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	initLoggingEnv()
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&LogLevel, "log-level", "", LogLevel, "logging level to show (options: debug|info|warn|error|fatal|panic, default: info)")
	rootCmd.PersistentFlags().StringVarP(&LogFormat, "log-format", "", LogFormat, "log format to generate (Options: json|pretty, default: json)")
}

func initConfig() {
	config.OpenConfig(cfgFile)
	customizeLogger()
}

func initLoggingEnv() {
	// load log level from env by default
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel != "" {
		LogLevel = logLevel
	}
	// load log format from env by default
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat != "" {
		LogFormat = logFormat
	}
}

// Execute the commands
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err)
	}
}

func customizeLogger() {
	if LogFormat == "pretty" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	switch LogLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	gin.SetMode(gin.ReleaseMode)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
