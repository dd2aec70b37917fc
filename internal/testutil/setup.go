package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/orderly-com/wish-insights/internal/config"
	"github.com/orderly-com/wish-insights/internal/logger"
	"github.com/orderly-com/wish-insights/internal/types"
)

// Stores bundles the in-memory repository implementations handed to services
// under test
type Stores struct {
	TeamRepo     *InMemoryTeamStore
	ClientRepo   *InMemoryClientStore
	PurchaseRepo *InMemoryPurchaseStore
	CycleRepo    *InMemoryCycleStore
}

// NewStores creates a fresh set of in-memory stores
func NewStores() *Stores {
	return &Stores{
		TeamRepo:     NewInMemoryTeamStore(),
		ClientRepo:   NewInMemoryClientStore(),
		PurchaseRepo: NewInMemoryPurchaseStore(),
		CycleRepo:    NewInMemoryCycleStore(),
	}
}

// BaseServiceTestSuite provides common setup for service tests
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	cfg    *config.Configuration
	log    *logger.Logger
	stores *Stores
}

// SetupTest initializes fresh state before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = types.SetTenantID(context.Background(), types.DefaultTenantID)
	s.cfg = config.GetDefaultConfig()

	log, err := logger.NewLogger(s.cfg)
	s.Require().NoError(err)
	s.log = log

	s.stores = NewStores()
}

// TearDownTest clears all stores after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	if s.stores == nil {
		return
	}
	s.stores.TeamRepo.Clear()
	s.stores.ClientRepo.Clear()
	s.stores.PurchaseRepo.Clear()
	s.stores.CycleRepo.Clear()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.log
}

func (s *BaseServiceTestSuite) GetStores() *Stores {
	return s.stores
}
