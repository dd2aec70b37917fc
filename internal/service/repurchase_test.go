package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/orderly-com/wish-insights/internal/domain/cycle"
	"github.com/orderly-com/wish-insights/internal/domain/purchase"
	"github.com/orderly-com/wish-insights/internal/testutil"
	"github.com/orderly-com/wish-insights/internal/types"
)

type RepurchaseCycleServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	cycleService RepurchaseCycleService
}

func TestRepurchaseCycleService(t *testing.T) {
	suite.Run(t, new(RepurchaseCycleServiceTestSuite))
}

func (s *RepurchaseCycleServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.cycleService = NewRepurchaseCycleService(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		TeamRepo:     s.GetStores().TeamRepo,
		ClientRepo:   s.GetStores().ClientRepo,
		PurchaseRepo: s.GetStores().PurchaseRepo,
		CycleRepo:    s.GetStores().CycleRepo,
	})
}

func (s *RepurchaseCycleServiceTestSuite) createPurchase(id, teamID, clientID string, at time.Time) {
	s.NoError(s.GetStores().PurchaseRepo.Create(s.GetContext(), &purchase.Purchase{
		ID:        id,
		TeamID:    teamID,
		ClientID:  clientID,
		Datetime:  at,
		Total:     decimal.NewFromInt(100),
		PStatus:   types.PurchaseStatusConfirmed,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *RepurchaseCycleServiceTestSuite) getSummary(teamID string) *cycle.Summary {
	sm, err := s.GetStores().CycleRepo.GetByTeam(s.GetContext(), teamID)
	s.Require().NoError(err)
	return sm
}

func (s *RepurchaseCycleServiceTestSuite) TestNoPurchasesLeavesPreviousSummary() {
	previous := &cycle.Summary{
		TeamID:                 "team_1",
		Daybase:                []int{7},
		RepurchasedClientCount: 1,
	}
	s.Require().NoError(s.GetStores().CycleRepo.Upsert(s.GetContext(), previous))

	updated, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{})
	s.NoError(err)
	s.False(updated)

	sm := s.getSummary("team_1")
	s.Equal([]int{7}, sm.Daybase)
	s.Equal(1, sm.RepurchasedClientCount)
}

// One appended order inside the grace period, then one real repurchase.
func (s *RepurchaseCycleServiceTestSuite) TestAppendedOrderThenRepurchase() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.createPurchase("p1", "team_1", "client_a", base)
	s.createPurchase("p2", "team_1", "client_a", base.AddDate(0, 0, 1))
	s.createPurchase("p3", "team_1", "client_a", base.AddDate(0, 0, 10))

	updated, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{})
	s.NoError(err)
	s.True(updated)

	sm := s.getSummary("team_1")

	// the appended order still advanced the reference date, so the repurchase
	// gap is measured from day 1, not day 0
	s.Equal([]int{9}, sm.Daybase)
	s.Equal([]int{1}, sm.Weekbase)
	s.Equal(1, sm.RepurchasedClientCount)
	s.Equal([]string{"client_a"}, sm.Clientbases)
	s.Equal([]int{0, 1}, sm.CycleDepthDaybase)
	s.Equal([]int{0, 1}, sm.CycleDepthWeekbase)
	s.Equal([]int{9}, sm.DaybaseByCycle[1])
	s.Equal([]int{1}, sm.WeekbaseByCycle[1])

	// a single gap is below every statistic's sample threshold
	s.Equal(types.StatUnset, sm.DayStats.Mean)
	s.Equal(types.StatUnset, sm.DayStats.Mode)
	s.Equal(types.StatUnset, sm.DayStatsByCycle[1].Mean)
}

// Orders on four consecutive days never leave the grace period.
func (s *RepurchaseCycleServiceTestSuite) TestConsecutiveDayOrdersNeverRepurchase() {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.createPurchase(fmt.Sprintf("p%d", i), "team_1", "client_a", base.AddDate(0, 0, i))
	}

	updated, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{})
	s.NoError(err)
	s.True(updated)

	sm := s.getSummary("team_1")
	s.Empty(sm.Daybase)
	s.Empty(sm.Weekbase)
	s.Equal(0, sm.RepurchasedClientCount)
	s.Equal([]string{"client_a"}, sm.Clientbases)
	s.Equal([]int{1}, sm.CycleDepthDaybase)
	s.Empty(sm.DaybaseByCycle)
}

// A custom grace period reclassifies gaps that the default would count.
func (s *RepurchaseCycleServiceTestSuite) TestCustomAppendDays() {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.createPurchase("p1", "team_1", "client_a", base)
	s.createPurchase("p2", "team_1", "client_a", base.AddDate(0, 0, 5))
	s.createPurchase("p3", "team_1", "client_a", base.AddDate(0, 0, 25))

	updated, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{AppendDays: 7})
	s.NoError(err)
	s.True(updated)

	sm := s.getSummary("team_1")
	s.Equal([]int{20}, sm.Daybase)
	s.Equal([]int{20}, sm.DaybaseByCycle[1])
}

// Gaps of a year or more leave the day track but stay on the week track.
func (s *RepurchaseCycleServiceTestSuite) TestYearlyGapExcludedFromDayTrackOnly() {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s.createPurchase("p1", "team_1", "client_x", base)
	s.createPurchase("p2", "team_1", "client_x", base.AddDate(0, 0, 365))
	s.createPurchase("p3", "team_1", "client_y", base)
	s.createPurchase("p4", "team_1", "client_y", base.AddDate(0, 0, 10))

	updated, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{})
	s.NoError(err)
	s.True(updated)

	sm := s.getSummary("team_1")
	s.Equal([]int{10}, sm.Daybase)
	s.Equal([]int{1, 52}, sm.Weekbase)
	s.Equal(2, sm.RepurchasedClientCount)

	// the raw per-cycle buckets keep the outlier
	s.ElementsMatch([]int{365, 10}, sm.DaybaseByCycle[1])
}

// DateEnd bounds the window: later purchases are invisible to the run.
func (s *RepurchaseCycleServiceTestSuite) TestDateEndCutsWindow() {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s.createPurchase("p1", "team_1", "client_a", base)
	s.createPurchase("p2", "team_1", "client_a", base.AddDate(0, 0, 10))
	s.createPurchase("p3", "team_1", "client_a", base.AddDate(0, 0, 20))

	dateEnd := base.AddDate(0, 0, 10)
	updated, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{DateEnd: &dateEnd})
	s.NoError(err)
	s.True(updated)

	sm := s.getSummary("team_1")
	s.Equal([]int{10}, sm.Daybase)
	s.Require().NotNil(sm.DateEnd)
	s.True(sm.DateEnd.Equal(dateEnd))
}

// Full statistics battery over one hundred distinct gaps.
func (s *RepurchaseCycleServiceTestSuite) TestStatisticsOverHundredGaps() {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	at := base
	s.createPurchase("p000", "team_1", "client_a", at)
	for gap := 3; gap <= 102; gap++ {
		at = at.AddDate(0, 0, gap)
		s.createPurchase(fmt.Sprintf("p%03d", gap), "team_1", "client_a", at)
	}

	updated, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{})
	s.NoError(err)
	s.True(updated)

	sm := s.getSummary("team_1")
	s.Require().Len(sm.Daybase, 100)
	s.Equal(3, sm.Daybase[0])
	s.Equal(102, sm.Daybase[99])
	s.Equal(1, sm.RepurchasedClientCount)
	s.Require().Len(sm.CycleDepthDaybase, 101)
	s.Equal(1, sm.CycleDepthDaybase[100])

	s.InDelta(52.5, sm.DayStats.Mean, 1e-9)
	s.InDelta(52.5, sm.DayStats.Median, 1e-9)
	s.Equal(52.0, sm.DayStats.MedianLow)
	s.Equal(53.0, sm.DayStats.MedianHigh)
	s.InDelta(833.25, sm.DayStats.PopulationVariance, 1e-9)
	s.InDelta(28.866070, sm.DayStats.PopulationStdDev, 1e-5)
	s.InDelta(841.666667, sm.DayStats.SampleVariance, 1e-5)
	s.InDelta(29.011492, sm.DayStats.SampleStdDev, 1e-5)

	// middle band after trimming 45 points from each end: values 48 through 57
	s.Equal(48.0, sm.DayStats.EssentializedLow)
	s.Equal(57.0, sm.DayStats.EssentializedHigh)
	s.InDelta(3.027650, sm.DayStats.EssentializedStdDev, 1e-5)

	// all gaps are distinct, so no unique mode exists and the sentinel stays
	s.Equal(types.StatUnset, sm.DayStats.Mode)

	// every per-cycle bucket holds a single gap
	s.Equal(types.StatUnset, sm.DayStatsByCycle[1].Mean)
	s.Equal([]int{3}, sm.DaybaseByCycle[1])
	s.Equal([]int{102}, sm.DaybaseByCycle[100])
}

// A repeated gap produces a mode on the flat track.
func (s *RepurchaseCycleServiceTestSuite) TestModeOnRepeatedGap() {
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	s.createPurchase("p1", "team_1", "client_a", base)
	s.createPurchase("p2", "team_1", "client_a", base.AddDate(0, 0, 5))
	s.createPurchase("p3", "team_1", "client_a", base.AddDate(0, 0, 10))
	s.createPurchase("p4", "team_1", "client_a", base.AddDate(0, 0, 19))

	updated, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{})
	s.NoError(err)
	s.True(updated)

	sm := s.getSummary("team_1")
	s.Equal([]int{5, 5, 9}, sm.Daybase)
	s.Equal(5.0, sm.DayStats.Mode)
	s.InDelta(19.0/3.0, sm.DayStats.Mean, 1e-9)
}

// Three clients repurchasing once each with distinct gaps: the first-cycle
// bucket has no unique mode and is written as the sentinel.
func (s *RepurchaseCycleServiceTestSuite) TestPerCycleModeSentinelOnTie() {
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, gap := range []int{3, 4, 5} {
		clientID := fmt.Sprintf("client_%d", i)
		s.createPurchase(fmt.Sprintf("pa%d", i), "team_1", clientID, base)
		s.createPurchase(fmt.Sprintf("pb%d", i), "team_1", clientID, base.AddDate(0, 0, gap))
	}

	updated, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{})
	s.NoError(err)
	s.True(updated)

	sm := s.getSummary("team_1")
	s.Equal([]int{3, 4, 5}, sm.Daybase)
	s.Equal(3, sm.RepurchasedClientCount)
	s.Equal([]int{0, 3}, sm.CycleDepthDaybase)

	s.Equal(4.0, sm.DayStats.Mean)
	s.Equal(types.StatUnset, sm.DayStats.Mode)
	s.Equal(types.StatUnset, sm.DayStatsByCycle[1].Mode)

	// a three-point list essentializes down to its middle value
	s.Equal(4.0, sm.DayStats.EssentializedLow)
	s.Equal(4.0, sm.DayStats.EssentializedHigh)
	s.Equal(types.StatUnset, sm.DayStats.EssentializedStdDev)
}

func (s *RepurchaseCycleServiceTestSuite) TestIdempotentRecompute() {
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	s.createPurchase("p1", "team_1", "client_a", base)
	s.createPurchase("p2", "team_1", "client_a", base.AddDate(0, 0, 8))
	s.createPurchase("p3", "team_1", "client_b", base.Add(time.Hour))
	s.createPurchase("p4", "team_1", "client_b", base.AddDate(0, 0, 8).Add(time.Hour))
	s.createPurchase("p5", "team_1", "client_b", base.AddDate(0, 0, 30))

	_, err := s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{})
	s.Require().NoError(err)
	first := s.getSummary("team_1")

	_, err = s.cycleService.CalculateTeam(s.GetContext(), "team_1", CycleOptions{})
	s.Require().NoError(err)
	second := s.getSummary("team_1")

	first.BaseModel = types.BaseModel{}
	second.BaseModel = types.BaseModel{}
	s.Equal(first, second)
}
