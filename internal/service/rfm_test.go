package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/orderly-com/wish-insights/internal/domain/client"
	"github.com/orderly-com/wish-insights/internal/domain/purchase"
	"github.com/orderly-com/wish-insights/internal/domain/team"
	"github.com/orderly-com/wish-insights/internal/testutil"
	"github.com/orderly-com/wish-insights/internal/types"
)

type RFMServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	rfmService RFMService
}

func TestRFMService(t *testing.T) {
	suite.Run(t, new(RFMServiceTestSuite))
}

func (s *RFMServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.rfmService = NewRFMService(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		TeamRepo:     s.GetStores().TeamRepo,
		ClientRepo:   s.GetStores().ClientRepo,
		PurchaseRepo: s.GetStores().PurchaseRepo,
		CycleRepo:    s.GetStores().CycleRepo,
	})
}

func (s *RFMServiceTestSuite) createTeam(id string, returnDay int) {
	s.NoError(s.GetStores().TeamRepo.Create(s.GetContext(), &team.Team{
		ID:        id,
		Name:      "Team " + id,
		ReturnDay: returnDay,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *RFMServiceTestSuite) createClient(id, teamID string) {
	s.NoError(s.GetStores().ClientRepo.Create(s.GetContext(), client.New(id, teamID)))
}

func (s *RFMServiceTestSuite) createPurchase(id, teamID, clientID string, at time.Time, total float64) {
	s.NoError(s.GetStores().PurchaseRepo.Create(s.GetContext(), &purchase.Purchase{
		ID:        id,
		TeamID:    teamID,
		ClientID:  clientID,
		Datetime:  at,
		Total:     decimal.NewFromFloat(total),
		PStatus:   types.PurchaseStatusConfirmed,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *RFMServiceTestSuite) getClient(id string) *client.Client {
	c, err := s.GetStores().ClientRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return c
}

func (s *RFMServiceTestSuite) TestNoEligiblePurchasesIsReportedNoOp() {
	s.createTeam("team_1", 30)
	s.createClient("client_a", "team_1")

	updated, err := s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.NoError(err)
	s.False(updated)

	// nothing was mutated: all fields still at their sentinels
	c := s.getClient("client_a")
	s.Equal(types.AvgRepurchaseUnset, c.AvgRepurchaseDays)
	s.Equal(types.RFMScoreUnset, c.RFMRecency)
	s.Equal(types.RFMScoreUnset, c.RFMFrequency)
	s.Equal(types.RFMScoreUnset, c.RFMMonetary)
	s.Equal(types.RFMScoreUnset, c.RFMTotalScore)
	s.Equal(types.RFMPercentileUnset, c.RFMPercentile)
	s.Nil(c.RFMSegment)
}

func (s *RFMServiceTestSuite) TestMissingTeam() {
	_, err := s.rfmService.ScoreTeam(s.GetContext(), "team_missing")
	s.Error(err)
}

// Two-client scenario: A buys three times over 40 days, B buys once.
func (s *RFMServiceTestSuite) TestTwoClientScoring() {
	now := time.Now().UTC()
	s.createTeam("team_1", 30)
	s.createClient("client_a", "team_1")
	s.createClient("client_b", "team_1")

	s.createPurchase("p1", "team_1", "client_a", now.AddDate(0, 0, -60), 10)
	s.createPurchase("p2", "team_1", "client_a", now.AddDate(0, 0, -55), 20)
	s.createPurchase("p3", "team_1", "client_a", now.AddDate(0, 0, -20), 30)
	s.createPurchase("p4", "team_1", "client_b", now.AddDate(0, 0, -60), 15)

	updated, err := s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.NoError(err)
	s.True(updated)

	a := s.getClient("client_a")
	b := s.getClient("client_b")

	// avg repurchase days: (60-20)/(3-1) = 20; single purchase yields 0
	s.Equal(20.0, a.AvgRepurchaseDays)
	s.Equal(0.0, b.AvgRepurchaseDays)

	// frequency over fixed edges 2,4,6,8: three purchases -> 2, one -> 1
	s.Equal(2, a.RFMFrequency)
	s.Equal(1, b.RFMFrequency)

	// monetary: totals [15, 60], gap=ceil(45/6)=8, edges 23,31,39,47
	s.Equal(5, a.RFMMonetary)
	s.Equal(1, b.RFMMonetary)

	// recency over return-day edges 30,45,75,90: 20 days -> bin 1 -> 5,
	// 60 days -> bin 3 -> stays 3 after inversion
	s.Equal(5, a.RFMRecency)
	s.Equal(3, b.RFMRecency)

	s.Equal(12, a.RFMTotalScore)
	s.Equal(5, b.RFMTotalScore)

	s.Require().NotNil(a.RFMSegment)
	s.Require().NotNil(b.RFMSegment)
	s.Equal("525", *a.RFMSegment)
	s.Equal("311", *b.RFMSegment)

	// two rows split at the fifth band boundary: the boundary row is visited
	// again by every later band and ends at 10
	s.Equal(5, a.RFMPercentile)
	s.Equal(10, b.RFMPercentile)
}

// Clients that fall out of the eligible window are reset to sentinels on the
// next run, not left with stale scores.
func (s *RFMServiceTestSuite) TestStaleScoresResetOnRecompute() {
	now := time.Now().UTC()
	s.createTeam("team_1", 30)
	s.createClient("client_a", "team_1")
	s.createClient("client_b", "team_1")

	s.createPurchase("p1", "team_1", "client_a", now.AddDate(0, 0, -60), 10)
	s.createPurchase("p2", "team_1", "client_a", now.AddDate(0, 0, -55), 20)
	s.createPurchase("p3", "team_1", "client_a", now.AddDate(0, 0, -20), 30)
	s.createPurchase("p4", "team_1", "client_b", now.AddDate(0, 0, -60), 15)

	updated, err := s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.NoError(err)
	s.True(updated)
	s.NotNil(s.getClient("client_b").RFMSegment)

	// B's only purchase is removed upstream; the next run must push B back
	// to sentinels while A keeps fresh scores
	removed, err := s.GetStores().PurchaseRepo.InMemoryStore.Get(s.GetContext(), "p4")
	s.Require().NoError(err)
	removed.Removed = true
	s.Require().NoError(s.GetStores().PurchaseRepo.InMemoryStore.Update(s.GetContext(), "p4", removed))

	updated, err = s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.NoError(err)
	s.True(updated)

	b := s.getClient("client_b")
	s.Equal(types.AvgRepurchaseUnset, b.AvgRepurchaseDays)
	s.Equal(types.RFMScoreUnset, b.RFMRecency)
	s.Equal(types.RFMScoreUnset, b.RFMFrequency)
	s.Equal(types.RFMScoreUnset, b.RFMMonetary)
	s.Equal(types.RFMScoreUnset, b.RFMTotalScore)
	s.Equal(types.RFMPercentileUnset, b.RFMPercentile)
	s.Nil(b.RFMSegment)

	// A alone now hits every degenerate-range guard: uniform score 1
	a := s.getClient("client_a")
	s.Equal(1, a.RFMRecency)
	s.Equal(1, a.RFMFrequency)
	s.Equal(1, a.RFMMonetary)
	s.Equal(3, a.RFMTotalScore)
	s.Equal(20.0, a.AvgRepurchaseDays)
	s.Require().NotNil(a.RFMSegment)
	s.Equal("111", *a.RFMSegment)
}

// A client with no purchases at all ends at sentinels after a run that scores
// other clients.
func (s *RFMServiceTestSuite) TestUnscoredClientKeptAtSentinels() {
	now := time.Now().UTC()
	s.createTeam("team_1", 30)
	s.createClient("client_a", "team_1")
	s.createClient("client_idle", "team_1")

	s.createPurchase("p1", "team_1", "client_a", now.AddDate(0, 0, -10), 10)
	s.createPurchase("p2", "team_1", "client_a", now.AddDate(0, 0, -5), 10)

	updated, err := s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.NoError(err)
	s.True(updated)

	idle := s.getClient("client_idle")
	s.Equal(types.AvgRepurchaseUnset, idle.AvgRepurchaseDays)
	s.Equal(types.RFMScoreUnset, idle.RFMRecency)
	s.Equal(types.RFMScoreUnset, idle.RFMTotalScore)
	s.Nil(idle.RFMSegment)
}

// All clients buying on the same day keeps the degenerate recency behavior:
// everyone scores 1, not 5.
func (s *RFMServiceTestSuite) TestDegenerateRecencyRangeScoresOne() {
	now := time.Now().UTC()
	s.createTeam("team_1", 30)
	s.createClient("client_a", "team_1")
	s.createClient("client_b", "team_1")

	day := now.AddDate(0, 0, -7)
	s.createPurchase("p1", "team_1", "client_a", day, 10)
	s.createPurchase("p2", "team_1", "client_b", day.Add(2*time.Hour), 500)

	updated, err := s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.NoError(err)
	s.True(updated)

	s.Equal(1, s.getClient("client_a").RFMRecency)
	s.Equal(1, s.getClient("client_b").RFMRecency)
}

// Internal members and removed clients never receive scores.
func (s *RFMServiceTestSuite) TestInternalMemberPurchasesExcluded() {
	now := time.Now().UTC()
	s.createTeam("team_1", 30)

	s.NoError(s.GetStores().PurchaseRepo.Create(s.GetContext(), &purchase.Purchase{
		ID:                   "p1",
		TeamID:               "team_1",
		ClientID:             "client_staff",
		Datetime:             now.AddDate(0, 0, -5),
		Total:                decimal.NewFromInt(100),
		PStatus:              types.PurchaseStatusConfirmed,
		ClientInternalMember: true,
	}))

	updated, err := s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.NoError(err)
	s.False(updated)
}

// Score ranges and percentile ordering over a larger population.
func (s *RFMServiceTestSuite) TestScoreRangesAndPercentileBands() {
	now := time.Now().UTC()
	s.createTeam("team_1", 0)

	for i := 1; i <= 20; i++ {
		clientID := fmt.Sprintf("client_%02d", i)
		s.createClient(clientID, "team_1")
		for p := 0; p < i; p++ {
			s.createPurchase(
				fmt.Sprintf("p_%02d_%02d", i, p),
				"team_1", clientID,
				now.AddDate(0, 0, -(i+p*3)),
				float64(10*i),
			)
		}
	}

	updated, err := s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.NoError(err)
	s.True(updated)

	clients, err := s.GetStores().ClientRepo.ListByTeam(s.GetContext(), "team_1")
	s.Require().NoError(err)
	s.Require().Len(clients, 20)

	byPercentile := make(map[int][]int)
	for _, c := range clients {
		s.GreaterOrEqual(c.RFMRecency, 1)
		s.LessOrEqual(c.RFMRecency, 5)
		s.GreaterOrEqual(c.RFMFrequency, 1)
		s.LessOrEqual(c.RFMFrequency, 5)
		s.GreaterOrEqual(c.RFMMonetary, 1)
		s.LessOrEqual(c.RFMMonetary, 5)
		s.Equal(c.RFMRecency+c.RFMFrequency+c.RFMMonetary, c.RFMTotalScore)
		s.GreaterOrEqual(c.RFMTotalScore, 3)
		s.LessOrEqual(c.RFMTotalScore, 15)
		s.GreaterOrEqual(c.RFMPercentile, 1)
		s.LessOrEqual(c.RFMPercentile, 10)

		s.Require().NotNil(c.RFMSegment)
		s.Equal(fmt.Sprintf("%d%d%d", c.RFMRecency, c.RFMFrequency, c.RFMMonetary), *c.RFMSegment)

		byPercentile[c.RFMPercentile] = append(byPercentile[c.RFMPercentile], c.RFMTotalScore)
	}

	// scores are non-increasing as the percentile band grows
	prevMin := 16
	for band := 1; band <= 10; band++ {
		for _, score := range byPercentile[band] {
			s.LessOrEqual(score, prevMin)
		}
		for _, score := range byPercentile[band] {
			if score < prevMin {
				prevMin = score
			}
		}
	}
}

// Running twice without data changes produces identical output.
func (s *RFMServiceTestSuite) TestIdempotentRecompute() {
	now := time.Now().UTC()
	s.createTeam("team_1", 30)
	s.createClient("client_a", "team_1")
	s.createClient("client_b", "team_1")

	s.createPurchase("p1", "team_1", "client_a", now.AddDate(0, 0, -40), 25)
	s.createPurchase("p2", "team_1", "client_a", now.AddDate(0, 0, -10), 35)
	s.createPurchase("p3", "team_1", "client_b", now.AddDate(0, 0, -15), 55)

	_, err := s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.Require().NoError(err)
	first := []*client.Client{s.getClient("client_a"), s.getClient("client_b")}

	_, err = s.rfmService.ScoreTeam(s.GetContext(), "team_1")
	s.Require().NoError(err)
	second := []*client.Client{s.getClient("client_a"), s.getClient("client_b")}

	for i := range first {
		s.Equal(first[i].RFMRecency, second[i].RFMRecency)
		s.Equal(first[i].RFMFrequency, second[i].RFMFrequency)
		s.Equal(first[i].RFMMonetary, second[i].RFMMonetary)
		s.Equal(first[i].RFMTotalScore, second[i].RFMTotalScore)
		s.Equal(first[i].RFMPercentile, second[i].RFMPercentile)
		s.Equal(first[i].AvgRepurchaseDays, second[i].AvgRepurchaseDays)
	}
}
