package service

import (
	"regexp"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/cache/performance"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/config"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/queries"
)

// the calculators resolve "now" through the service clock, tests pin it here
var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func setupDB() (*gorm.DB, sqlmock.Sqlmock) {
	logger := log.With().Str("test", "service").Str("method", "setupDB").Logger()
	db, mock, err := sqlmock.New()
	if err != nil {
		logger.Fatal().Msgf("can't create sqlmock: %s", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "postgres-mock",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Fatal().Msgf("can't open gorm connection: %s", err)
	}

	return gormDB, mock
}

// setupService wires a service around a mocked repository and a degraded
// cache, so every call goes straight to the calculators
func setupService() (*Service, sqlmock.Sqlmock) {
	db, mock := setupDB()
	repo := &queries.Repo{
		Conn:       db,
		ConnReader: db,
	}
	cfg := config.Config{
		Commission:   model.DefaultCommissionPlan(),
		Requirements: model.DefaultLevelRequirements(),
		Leaderboard:  config.LeaderboardConfig{DefaultLimit: 10, MaxLimit: 100},
		Forecast:     config.ForecastConfig{HistoryMonths: 6},
		Cache: config.PerformanceCacheConfig{
			PersonalTTL:    time.Minute,
			TeamTTL:        time.Minute,
			ReferralTTL:    time.Minute,
			LeaderboardTTL: time.Minute,
			ForecastTTL:    time.Minute,
		},
	}
	svc := NewService(cfg, repo, performance.NewCache(nil, "test"))
	svc.now = func() time.Time { return testNow }
	return svc, mock
}

var userColumns = []string{"id", "nickname", "user_level", "status", "team_path", "parent_id", "direct_count"}

func expectUser(mock sqlmock.Sqlmock, id uint64, level model.UserLevel, status model.UserStatus, path string) {
	rows := sqlmock.NewRows(userColumns).
		AddRow(id, "user", level, status, path, nil, 0)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(rows)
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func salesRows(total string, cnt int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"total", "cnt"}).AddRow(total, cnt)
}
