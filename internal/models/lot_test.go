package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLot() *Lot {
	return &Lot{
		ID:      "lot-1",
		Name:    "Gros Œuvre",
		Budget:  300000,
		Status:  OpenLot,
		Version: 1,
		Bids: []Bid{
			{ID: "bid-a", CompanyID: "company-a", Amount: 300000, Compliant: true},
			{ID: "bid-b", CompanyID: "company-b", Amount: 360000, Compliant: true},
			{ID: "bid-c", CompanyID: "company-c", Amount: 280000, Compliant: false},
		},
	}
}

func TestLot_ToggleSelection(t *testing.T) {
	lot := newTestLot()

	require.NoError(t, lot.ToggleSelection("bid-a"))
	assert.Equal(t, AssignedLot, lot.Status)
	assert.Equal(t, "bid-a", lot.SelectedBid().ID)

	require.NoError(t, lot.ToggleSelection("bid-b"))
	assert.Equal(t, AssignedLot, lot.Status)
	assert.Equal(t, "bid-b", lot.SelectedBid().ID)
	assert.False(t, lot.FindBid("bid-a").Selected)

	require.NoError(t, lot.ToggleSelection("bid-b"))
	assert.Equal(t, OpenLot, lot.Status)
	assert.Nil(t, lot.SelectedBid())
	assert.NoError(t, lot.CheckInvariants())
}

func TestLot_ToggleSelection_NonCompliant(t *testing.T) {
	lot := newTestLot()

	err := lot.ToggleSelection("bid-c")

	var ineligible *IneligibleBidError
	require.ErrorAs(t, err, &ineligible)
	assert.Equal(t, "bid-c", ineligible.BidID)
	assert.Equal(t, "select", ineligible.Action)
	assert.Equal(t, OpenLot, lot.Status)
	assert.Nil(t, lot.SelectedBid())
}

func TestLot_ToggleSelection_UnknownBid(t *testing.T) {
	lot := newTestLot()

	assert.ErrorIs(t, lot.ToggleSelection("missing"), ErrNotFound)
}

func TestLot_ToggleFavorite(t *testing.T) {
	lot := newTestLot()
	require.NoError(t, lot.ToggleSelection("bid-a"))

	require.NoError(t, lot.ToggleFavorite("bid-b"))
	assert.Equal(t, "bid-b", lot.FavoriteBid().ID)
	assert.Equal(t, "bid-a", lot.SelectedBid().ID, "favorite must not change selection")
	assert.Equal(t, AssignedLot, lot.Status)

	require.NoError(t, lot.ToggleFavorite("bid-a"))
	assert.Equal(t, "bid-a", lot.FavoriteBid().ID)
	assert.False(t, lot.FindBid("bid-b").IsFavorite)

	require.NoError(t, lot.ToggleFavorite("bid-a"))
	assert.Nil(t, lot.FavoriteBid())

	var ineligible *IneligibleBidError
	require.ErrorAs(t, lot.ToggleFavorite("bid-c"), &ineligible)
	assert.Equal(t, "favorite", ineligible.Action)
}

func TestLot_SetCompliance_Cascade(t *testing.T) {
	lot := newTestLot()
	require.NoError(t, lot.ToggleSelection("bid-a"))
	require.NoError(t, lot.ToggleFavorite("bid-a"))

	notes := "missing insurance certificate"
	require.NoError(t, lot.SetCompliance("bid-a", false, &notes))

	bid := lot.FindBid("bid-a")
	assert.False(t, bid.Compliant)
	assert.False(t, bid.Selected)
	assert.False(t, bid.IsFavorite)
	assert.Equal(t, &notes, bid.ComplianceNotes)
	assert.Equal(t, OpenLot, lot.Status)
	assert.NoError(t, lot.CheckInvariants())
}

func TestLot_SetCompliance_OtherBidKeepsSelection(t *testing.T) {
	lot := newTestLot()
	require.NoError(t, lot.ToggleSelection("bid-a"))

	require.NoError(t, lot.SetCompliance("bid-b", false, nil))

	assert.Equal(t, AssignedLot, lot.Status)
	assert.Equal(t, "bid-a", lot.SelectedBid().ID)
}

func TestLot_SetCompliance_Restore(t *testing.T) {
	lot := newTestLot()

	require.NoError(t, lot.SetCompliance("bid-c", true, nil))
	require.NoError(t, lot.ToggleSelection("bid-c"))

	assert.Equal(t, "bid-c", lot.SelectedBid().ID)
	assert.Nil(t, lot.FindBid("bid-c").ComplianceNotes)
}

func TestLot_Clone(t *testing.T) {
	lot := newTestLot()
	lot.Bids[0].LineItems = []LineItem{{Designation: "Béton", Price: 1000}}

	clone := lot.Clone()
	require.NoError(t, clone.ToggleSelection("bid-a"))
	clone.Bids[0].LineItems[0].Price = 1

	assert.Equal(t, OpenLot, lot.Status)
	assert.False(t, lot.Bids[0].Selected)
	assert.Equal(t, Money(1000), lot.Bids[0].LineItems[0].Price)
}

func TestLot_CheckInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Lot)
		reason string
	}{
		{
			name:   "two selected bids",
			mutate: func(l *Lot) { l.Bids[0].Selected, l.Bids[1].Selected, l.Status = true, true, AssignedLot },
			reason: "more than one selected bid",
		},
		{
			name:   "two favorite bids",
			mutate: func(l *Lot) { l.Bids[0].IsFavorite, l.Bids[1].IsFavorite = true, true },
			reason: "more than one favorite bid",
		},
		{
			name:   "selected non compliant bid",
			mutate: func(l *Lot) { l.Bids[2].Selected, l.Status = true, AssignedLot },
			reason: "selected bid bid-c is not compliant",
		},
		{
			name:   "assigned without selection",
			mutate: func(l *Lot) { l.Status = AssignedLot },
			reason: "status does not match selection",
		},
		{
			name:   "selection on open lot",
			mutate: func(l *Lot) { l.Bids[0].Selected = true },
			reason: "status does not match selection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := newTestLot()
			tt.mutate(lot)

			var invariant *InvariantError
			require.ErrorAs(t, lot.CheckInvariants(), &invariant)
			assert.Equal(t, tt.reason, invariant.Reason)
		})
	}
}

func TestIsDomainError(t *testing.T) {
	assert.True(t, IsDomainError(ErrNotFound))
	assert.True(t, IsDomainError(&IneligibleBidError{BidID: "b"}))
	assert.True(t, IsDomainError(&DuplicateRequestError{}))
	assert.False(t, IsDomainError(errors.New("connection reset")))
	assert.False(t, IsDomainError(&PersistenceError{Op: "get lot", Err: errors.New("boom")}))
}
