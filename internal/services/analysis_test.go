package services

import (
	"context"
	"testing"

	"github.com/senyabanana/tender-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectedLot(budget, amount models.Money) *models.Lot {
	return &models.Lot{
		ID:     "lot-1",
		Budget: budget,
		Status: models.AssignedLot,
		Bids: []models.Bid{
			{ID: "bid-1", Amount: amount, Compliant: true, Selected: true},
		},
	}
}

func TestComputeBudgetImpact(t *testing.T) {
	tests := []struct {
		name       string
		budget     models.Money
		amount     models.Money
		deviation  models.Money
		percentage float64
	}{
		{"savings", 100000, 90000, -10000, -10},
		{"overrun", 100000, 110000, 10000, 10},
		{"on budget", 300000, 300000, 0, 0},
		{"gros oeuvre overrun", 300000, 360000, 60000, 20},
		{"rounded to two places", 300000, 100000, -200000, -66.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact, err := ComputeBudgetImpact(selectedLot(tt.budget, tt.amount))
			require.NoError(t, err)
			assert.Equal(t, "bid-1", impact.BidID)
			assert.Equal(t, tt.deviation, impact.Deviation)
			assert.Equal(t, tt.percentage, impact.DeviationPercentage)
		})
	}
}

func TestComputeBudgetImpact_Errors(t *testing.T) {
	_, err := ComputeBudgetImpact(selectedLot(0, 1000))
	var invalidBudget *models.InvalidBudgetError
	require.ErrorAs(t, err, &invalidBudget)
	assert.Equal(t, "lot-1", invalidBudget.LotID)

	lot := selectedLot(100000, 90000)
	lot.Bids[0].Selected = false
	lot.Status = models.OpenLot
	_, err = ComputeBudgetImpact(lot)
	var noSelected *models.NoSelectedBidError
	require.ErrorAs(t, err, &noSelected)

	lot.Budget = 0
	_, err = ComputeBudgetImpact(lot)
	assert.ErrorAs(t, err, &noSelected, "missing selection is reported before the budget")
}

func TestCompareBids(t *testing.T) {
	a := &models.Bid{ID: "a", LineItems: []models.LineItem{
		item("Terrassement", "1", 1000),
		item("Béton", "10", 2000),
		item("Gratuit", "1", 0),
		item("Béton", "2", 500),
	}}
	b := &models.Bid{ID: "b", LineItems: []models.LineItem{
		item("Béton", "10", 2200),
		item("Gratuit", "1", 300),
		item("Charpente", "1", 4000),
		item("terrassement", "1", 900),
	}}

	diffs := CompareBids(a, b)

	assert.Equal(t, []models.LineDiff{
		{Designation: "Terrassement", PriceA: 1000, PriceB: 0, PercentageDiff: -100, InA: true},
		{Designation: "Béton", PriceA: 2500, PriceB: 2200, PercentageDiff: -12, InA: true, InB: true},
		{Designation: "Gratuit", PriceA: 0, PriceB: 300, PercentageDiff: 0, InA: true, InB: true},
		{Designation: "Charpente", PriceA: 0, PriceB: 4000, PercentageDiff: 0, InB: true},
		{Designation: "terrassement", PriceA: 0, PriceB: 900, PercentageDiff: 0, InB: true},
	}, diffs)
}

func TestCompareBids_Empty(t *testing.T) {
	diffs := CompareBids(&models.Bid{ID: "a"}, &models.Bid{ID: "b"})
	assert.Empty(t, diffs)
}

func TestAnalysisService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot, a, b, _ := f.grosOeuvre(t)

	_, err := f.analysis.BudgetImpact(ctx, lot.ID)
	var noSelected *models.NoSelectedBidError
	require.ErrorAs(t, err, &noSelected)

	_, err = f.bids.ToggleBidSelection(ctx, lot.ID, b.ID)
	require.NoError(t, err)

	impact, err := f.analysis.BudgetImpact(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, impact.BidID)
	assert.Equal(t, 20.0, impact.DeviationPercentage)

	comparison, err := f.analysis.Compare(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, comparison.BidA)
	assert.Equal(t, b.ID, comparison.BidB)
	assert.Empty(t, comparison.Lines)

	_, err = f.analysis.Compare(ctx, a.ID, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
