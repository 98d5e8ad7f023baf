package crons

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/service"
)

var leaderboardTypes = []model.LeaderboardType{
	model.LeaderboardType_Personal,
	model.LeaderboardType_Team,
	model.LeaderboardType_Referral,
}

// CronWarmLeaderboards precomputes the monthly boards for the current
// period. The team board walks every leader's subtree, so keeping it warm
// moves that cost off the request path.
func CronWarmLeaderboards(srv *service.Service) {
	warmBoards(srv, model.MonthOf(time.Now().UTC()))
}

// CronWarmWeeklyLeaderboards precomputes the boards of the current ISO week
func CronWarmWeeklyLeaderboards(srv *service.Service) {
	now := time.Now().UTC()
	year, week := now.ISOWeek()
	warmBoards(srv, model.Period{Kind: model.PeriodKind_Week, Year: year, Week: week})
}

func warmBoards(srv *service.Service, period model.Period) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, typ := range leaderboardTypes {
		if _, err := srv.GetPerformanceLeaderboard(ctx, typ, period, 0); err != nil {
			log.Error().Err(err).
				Str("cron", "warm_leaderboards").
				Str("type", typ.String()).
				Str("period", period.String()).
				Msg("Unable to warm leaderboard")
		}
	}
}
