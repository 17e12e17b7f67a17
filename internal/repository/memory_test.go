package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/senyabanana/tender-portal/internal/models"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx    context.Context
	store  *MemoryStore
	tender *models.Tender
	lot    *models.Lot
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryStore()

	now := time.Now().UTC()
	s.tender = &models.Tender{ID: "tender-1", Name: "École", TenderType: models.RestrictedType, CreatedAt: now}
	s.Require().NoError(s.store.CreateTender(s.ctx, s.tender))

	s.lot = &models.Lot{ID: "lot-1", TenderID: s.tender.ID, Name: "Gros Œuvre", Budget: 300000, Status: models.OpenLot, Version: 1, CreatedAt: now}
	s.Require().NoError(s.store.CreateLot(s.ctx, s.lot))
}

func (s *MemoryStoreSuite) addBid(id, company string, compliant bool) {
	lot, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.store.AddBid(s.ctx, lot, &models.Bid{ID: id, CompanyID: company, Compliant: compliant, SolvencyScore: models.SolvencyAverage}))
}

func (s *MemoryStoreSuite) TestAddBid_BumpsVersion() {
	lot, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.store.AddBid(s.ctx, lot, &models.Bid{ID: "bid-a", CompanyID: "company-a"}))
	s.Equal(2, lot.Version)

	lotId, err := s.store.GetLotIDByBid(s.ctx, "bid-a")
	s.Require().NoError(err)
	s.Equal(s.lot.ID, lotId)
}

func (s *MemoryStoreSuite) TestAddBid_Duplicate() {
	s.addBid("bid-a", "company-a", true)

	lot, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)
	s.ErrorIs(s.store.AddBid(s.ctx, lot, &models.Bid{ID: "bid-b", CompanyID: "company-a"}), models.ErrDuplicateBid)
}

func (s *MemoryStoreSuite) TestSaveLot_VersionConflict() {
	s.addBid("bid-a", "company-a", true)
	s.addBid("bid-b", "company-b", true)

	first, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)
	second, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)

	s.Require().NoError(first.ToggleSelection("bid-a"))
	s.Require().NoError(s.store.SaveLot(s.ctx, first))

	s.Require().NoError(second.ToggleSelection("bid-b"))
	s.ErrorIs(s.store.SaveLot(s.ctx, second), models.ErrVersionConflict)

	stored, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)
	s.Equal("bid-a", stored.SelectedBid().ID)
}

func (s *MemoryStoreSuite) TestSaveLot_RejectsInvalidState() {
	s.addBid("bid-a", "company-a", false)

	lot, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)
	lot.Bids[0].Selected = true
	lot.Status = models.AssignedLot

	var invariant *models.InvariantError
	s.ErrorAs(s.store.SaveLot(s.ctx, lot), &invariant)
}

func (s *MemoryStoreSuite) TestClosedTender() {
	s.addBid("bid-a", "company-a", true)

	lot, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)

	closed, err := s.store.CloseTender(s.ctx, s.tender.ID, time.Now().UTC())
	s.Require().NoError(err)
	s.Equal(models.ClosedTender, closed.Status)

	_, err = s.store.CloseTender(s.ctx, s.tender.ID, time.Now().UTC())
	s.ErrorIs(err, models.ErrTenderClosed)

	s.Require().NoError(lot.ToggleSelection("bid-a"))
	s.ErrorIs(s.store.SaveLot(s.ctx, lot), models.ErrTenderClosed)
	s.ErrorIs(s.store.CreateLot(s.ctx, &models.Lot{ID: "lot-2", TenderID: s.tender.ID}), models.ErrTenderClosed)
}

func (s *MemoryStoreSuite) TestReturnsCopies() {
	s.addBid("bid-a", "company-a", true)

	lot, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)
	lot.Bids[0].Selected = true
	lot.Status = models.AssignedLot

	stored, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)
	s.Equal(models.OpenLot, stored.Status)
	s.Nil(stored.SelectedBid())
}

func (s *MemoryStoreSuite) TestAccessRequests() {
	req := &models.AccessRequest{ID: "req-1", CompanyID: "company-a", LotID: s.lot.ID, Status: models.PendingAccess, RequestDate: time.Now().UTC()}
	s.Require().NoError(s.store.CreateAccessRequest(s.ctx, req))

	var duplicate *models.DuplicateRequestError
	dup := *req
	dup.ID = "req-2"
	s.ErrorAs(s.store.CreateAccessRequest(s.ctx, &dup), &duplicate)

	found, err := s.store.FindAccessRequest(s.ctx, "company-a", s.lot.ID)
	s.Require().NoError(err)
	s.Equal("req-1", found.ID)

	decided, err := s.store.DecideAccessRequest(s.ctx, "req-1", models.ApprovedAccess, time.Now().UTC())
	s.Require().NoError(err)
	s.Equal(models.ApprovedAccess, decided.Status)
	s.NotNil(decided.DecisionDate)

	var already *models.AlreadyDecidedError
	_, err = s.store.DecideAccessRequest(s.ctx, "req-1", models.RejectedAccess, time.Now().UTC())
	s.Require().ErrorAs(err, &already)
	s.Equal(models.ApprovedAccess, already.Status)

	lot, err := s.store.GetLot(s.ctx, s.lot.ID)
	s.Require().NoError(err)
	s.Require().Len(lot.AccessRequests, 1)
	s.Equal(models.ApprovedAccess, lot.AccessRequests[0].Status)
}

func (s *MemoryStoreSuite) TestListTenders() {
	s.Require().NoError(s.store.CreateTender(s.ctx, &models.Tender{ID: "tender-2", Name: "Gymnase", TenderType: models.OpenType}))

	tenders, err := s.store.ListTenders(s.ctx, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(tenders, 1)
	s.Equal("tender-2", tenders[0].ID)
	s.Equal(models.OpenTender, tenders[0].Status)

	tenders, err = s.store.ListTenders(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(tenders, 2)
	s.Len(tenders[0].Lots, 1)
}

func (s *MemoryStoreSuite) TestTenderWithoutLots() {
	s.Require().NoError(s.store.CreateTender(s.ctx, &models.Tender{ID: "tender-2", Name: "Gymnase", TenderType: models.OpenType}))

	tender, err := s.store.GetTender(s.ctx, "tender-2")
	s.Require().NoError(err)
	s.NotNil(tender.Lots)
	s.Empty(tender.Lots)

	body, err := json.Marshal(tender)
	s.Require().NoError(err)
	s.Contains(string(body), `"lots":[]`)

	tenders, err := s.store.ListTenders(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(tenders, 2)
	s.NotNil(tenders[1].Lots)
	s.Empty(tenders[1].Lots)
}
