package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/orderly-com/wish-insights/internal/api"
	"github.com/orderly-com/wish-insights/internal/api/cron"
	v1 "github.com/orderly-com/wish-insights/internal/api/v1"
	"github.com/orderly-com/wish-insights/internal/clickhouse"
	"github.com/orderly-com/wish-insights/internal/config"
	"github.com/orderly-com/wish-insights/internal/domain/client"
	"github.com/orderly-com/wish-insights/internal/domain/cycle"
	"github.com/orderly-com/wish-insights/internal/domain/purchase"
	"github.com/orderly-com/wish-insights/internal/domain/team"
	"github.com/orderly-com/wish-insights/internal/logger"
	"github.com/orderly-com/wish-insights/internal/postgres"
	chrepo "github.com/orderly-com/wish-insights/internal/repository/clickhouse"
	pgrepo "github.com/orderly-com/wish-insights/internal/repository/postgres"
	"github.com/orderly-com/wish-insights/internal/service"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			postgres.NewClient,
			clickhouse.NewClickHouseStore,
			pgrepo.NewTeamRepository,
			pgrepo.NewClientRepository,
			pgrepo.NewCycleRepository,
			chrepo.NewPurchaseRepository,
			newServiceParams,
			service.NewRFMService,
			service.NewRepurchaseCycleService,
			service.NewInsightsService,
			newScoringCronHandler,
			v1.NewInsightsHandler,
			newRouter,
		),
		fx.Invoke(startServer),
	).Run()
}

func newServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	teamRepo team.Repository,
	clientRepo client.Repository,
	purchaseRepo purchase.Repository,
	cycleRepo cycle.Repository,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:       log,
		Config:       cfg,
		TeamRepo:     teamRepo,
		ClientRepo:   clientRepo,
		PurchaseRepo: purchaseRepo,
		CycleRepo:    cycleRepo,
	}
}

func newScoringCronHandler(
	rfmService service.RFMService,
	cycleService service.RepurchaseCycleService,
	teamRepo team.Repository,
	pg *postgres.Client,
	log *logger.Logger,
) *cron.ScoringCronHandler {
	return cron.NewScoringCronHandler(rfmService, cycleService, teamRepo, pg, log)
}

func newRouter(
	cfg *config.Configuration,
	log *logger.Logger,
	insightsHandler *v1.InsightsHandler,
	cronHandler *cron.ScoringCronHandler,
) *gin.Engine {
	return api.NewRouter(cfg, log, api.Handlers{
		Insights:    insightsHandler,
		ScoringCron: cronHandler,
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	pg *postgres.Client,
	ch *clickhouse.ClickHouseStore,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow("starting server", "address", cfg.Server.Address)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			if err := server.Shutdown(ctx); err != nil {
				return err
			}
			if err := ch.Close(); err != nil {
				log.Errorw("failed to close clickhouse connection", "error", err)
			}
			return pg.Close()
		},
	})
}
