package server

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/actions"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/logger"
)

// ListenToRequests starts the REST interface of the performance subsystem
func (srv *server) ListenToRequests() {
	log.Info().Str("worker", "http_listen_to_requests").Str("action", "start").Msg("HTTP Listen to requests - started")
	defer log.Info().Str("worker", "http_listen_to_requests").Str("action", "stop").Msg("HTTP Listen to requests - stopped")

	a := srv.actions

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "X-Requested-With", "Content-Length", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "PUT", "POST", "DELETE", "PATCH", "OPTIONS"}

	r.Use(cors.New(corsConfig)) // Allow requests from anywhere
	r.Use(gin.Recovery())       // Recovery middleware recovers from any panics and writes a 500 if there was one.
	r.Use(logger.SetLogger())

	r.GET("/ping", actions.Ping)

	performance := r.Group("/performance", a.Restrict())
	{
		performance.GET("/personal", a.GetPersonalPerformance)
		performance.GET("/team", a.GetTeamPerformance)
		performance.GET("/team/members", a.GetTeamMembers)
		performance.GET("/referral", a.GetReferralPerformance)
		performance.GET("/leaderboard", a.GetLeaderboard)
		performance.GET("/progression", a.GetUpgradeProgress)
		performance.GET("/forecast", a.GetCommissionForecast)
	}

	srv.HTTP = &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.config.Server.API.Port),
		Handler: r,
	}
	srv.HTTP.SetKeepAlivesEnabled(srv.config.Server.API.KeepAlive)

	if err := srv.HTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Str("section", "server").Msg("HTTP server stopped")
	}
}
