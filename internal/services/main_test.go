package services

import (
	"context"
	"io"
	"testing"

	"github.com/senyabanana/tender-portal/internal/events"
	"github.com/senyabanana/tender-portal/internal/lock"
	"github.com/senyabanana/tender-portal/internal/models"
	"github.com/senyabanana/tender-portal/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *repository.MemoryStore
	recorder *events.Recorder
	tenders  *TenderService
	bids     *BidService
	access   *AccessService
	analysis *AnalysisService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryStore()
	recorder := events.NewRecorder(256)

	return &fixture{
		store:    store,
		recorder: recorder,
		tenders:  NewTenderService(store, store, recorder, logger),
		bids:     NewBidService(store, store, lock.NewLocal(), recorder, logger),
		access:   NewAccessService(store, store, store, recorder, logger),
		analysis: NewAnalysisService(store),
	}
}

func (f *fixture) tender(t *testing.T, tenderType models.TenderType) *models.Tender {
	t.Helper()
	tender, err := f.tenders.CreateTender(context.Background(), models.TenderRequest{Name: "Construction école", TenderType: tenderType})
	require.NoError(t, err)
	return tender
}

func (f *fixture) lot(t *testing.T, tenderId string, budget models.Money) *models.Lot {
	t.Helper()
	lot, err := f.tenders.CreateLot(context.Background(), tenderId, models.LotRequest{Name: "Gros Œuvre", Budget: budget})
	require.NoError(t, err)
	return lot
}

func (f *fixture) bid(t *testing.T, lotId, companyId string, amount models.Money, compliant bool, items ...models.LineItem) *models.Bid {
	t.Helper()
	bid, err := f.bids.SubmitBid(context.Background(), lotId, models.BidRequest{
		CompanyID:           companyId,
		CompanyName:         "Company " + companyId,
		Amount:              amount,
		SolvencyScore:       models.SolvencyExcellent,
		AdministrativeScore: 80,
		LineItems:           items,
	})
	require.NoError(t, err)
	if compliant {
		bid, err = f.bids.MarkComplianceInLot(context.Background(), lotId, bid.ID, true, nil)
		require.NoError(t, err)
	}
	return bid
}

// grosOeuvre создает лот с тремя предложениями: два соответствуют требованиям, одно нет.
func (f *fixture) grosOeuvre(t *testing.T) (lot *models.Lot, a, b, c *models.Bid) {
	t.Helper()
	tender := f.tender(t, models.OpenType)
	lot = f.lot(t, tender.ID, 300000)
	a = f.bid(t, lot.ID, "company-a", 300000, true)
	b = f.bid(t, lot.ID, "company-b", 360000, true)
	c = f.bid(t, lot.ID, "company-c", 280000, false)

	lot, err := f.tenders.GetLot(context.Background(), lot.ID)
	require.NoError(t, err)
	f.recorder.Drain()
	return lot, a, b, c
}

func item(designation string, quantity string, price models.Money) models.LineItem {
	return models.LineItem{
		Designation: designation,
		Quantity:    decimal.RequireFromString(quantity),
		Unit:        "m3",
		Price:       price,
	}
}
