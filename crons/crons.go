package crons

import (
	"github.com/robfig/cron"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/config"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/service"
)

var cronService *cron.Cron

// Start Initiate the crons based on the given configuration file
func Start(crons config.Crons, srv *service.Service) {
	cronService = cron.New()
	for id, schedule := range crons {
		callback := GetCronByID(id, srv)
		_ = cronService.AddFunc(schedule, callback)
		// run the warmers once at startup so the first request hits a warm cache
		callback()
	}
	cronService.Start()
}

// GetCronByID get a function to execute based on the id
func GetCronByID(id string, srv *service.Service) func() {
	switch id {
	case "warm_leaderboards":
		return func() {
			CronWarmLeaderboards(srv)
		}
	case "warm_weekly_leaderboards":
		return func() {
			CronWarmWeeklyLeaderboards(srv)
		}
	}
	return (func() {})
}

// Close godoc
func Close() {
	if cronService != nil {
		cronService.Stop()
	}
}
