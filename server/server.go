package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/actions"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/cache/performance"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/config"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/crons"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/monitor"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/queries"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/service"
)

// Server interface
type Server interface {
	Listen()
}

type server struct {
	config  config.Config
	actions *actions.Actions
	service *service.Service
	ctx     context.Context
	close   context.CancelFunc
	HTTP    *http.Server
}

// NewServer constructor
func NewServer(cfg config.Config) Server {
	ctx, close := context.WithCancel(context.Background())

	repo := queries.InitRepo(cfg.DatabaseCluster)
	cache := performance.Init(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.PoolSize, cfg.Cache.Prefix)
	performanceService := service.NewService(cfg, repo, cache)
	userActions := actions.NewActions(cfg, performanceService, cfg.Server.API.JWTTokenSecret, ctx)

	return &server{
		config:  cfg,
		service: performanceService,
		actions: userActions,
		ctx:     ctx,
		close:   close,
	}
}

// Listen starts the http surface, the monitoring endpoint and the cache
// warmer crons, then blocks until a termination signal arrives
func (srv *server) Listen() {
	go srv.ListenToRequests()
	go monitor.LoopProfilingServer(srv.config.Server.Monitoring)

	crons.Start(srv.config.Crons, srv.service)

	srv.stopOnSignal()
}

func (srv *server) stopOnSignal() {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc

	log.Info().Str("section", "server").Str("app_event", "terminate").Str("signal", sig.String()).Msg("Shutting down services")
	srv.closeApp(5 * time.Second)
}

func (srv *server) closeApp(timeout time.Duration) {
	// force the exit when the graceful path does not finish in time
	timeoutFunc := time.AfterFunc(timeout, func() {
		log.Printf("timeout %d ms has been elapsed, force exit", timeout.Milliseconds())
		os.Exit(0)
	})
	defer timeoutFunc.Stop()

	crons.Close()
	monitor.ShutdownServer()
	if srv.HTTP != nil {
		if err := srv.HTTP.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Str("section", "server").Str("action", "terminate").Msg("Unable to shutdown HTTP server")
		}
	}
	srv.close()
}
