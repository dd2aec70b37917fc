package service

import (
	"github.com/orderly-com/wish-insights/internal/config"
	"github.com/orderly-com/wish-insights/internal/domain/client"
	"github.com/orderly-com/wish-insights/internal/domain/cycle"
	"github.com/orderly-com/wish-insights/internal/domain/purchase"
	"github.com/orderly-com/wish-insights/internal/domain/team"
	"github.com/orderly-com/wish-insights/internal/logger"
)

// ServiceParams bundles the dependencies shared by all services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	TeamRepo     team.Repository
	ClientRepo   client.Repository
	PurchaseRepo purchase.Repository
	CycleRepo    cycle.Repository
}
