package queries

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/config"
)

// Repo holds the database cluster connections. Writes go through Conn,
// every aggregate read goes through ConnReader.
type Repo struct {
	Conn       *gorm.DB
	ConnReader *gorm.DB
}

// InitRepo connects to the configured database cluster
func InitRepo(cfg config.DatabaseClusterConfig) *Repo {
	writer := openConnection(cfg.Writer, "writer")
	reader := writer
	if cfg.Reader.Host != "" && cfg.Reader.Host != cfg.Writer.Host {
		reader = openConnection(cfg.Reader, "reader")
	}
	return &Repo{
		Conn:       writer,
		ConnReader: reader,
	}
}

func openConnection(cfg config.DatabaseConfig, role string) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Name, cfg.SSLmode, cfg.ApplicationName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Str("section", "queries").Str("role", role).Msg("Unable to connect to database")
	}
	return db
}
