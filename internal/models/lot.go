package models

import "time"

type LotStatus string // Статус лота

const (
	OpenLot     LotStatus = "open"     // Лот ожидает выбора победителя
	AssignedLot LotStatus = "assigned" // Победитель выбран
)

// Money - денежная сумма в минимальных единицах валюты (центах).
type Money int64

// Lot представляет лот тендера вместе с предложениями и запросами доступа.
type Lot struct {
	ID             string          `json:"id"`
	TenderID       string          `json:"tenderId"`
	Name           string          `json:"name"`
	Budget         Money           `json:"budget"`
	Status         LotStatus       `json:"status"`
	Version        int             `json:"version"`
	Bids           []Bid           `json:"bids"`
	AccessRequests []AccessRequest `json:"accessRequests,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// LotRequest представляет структуру запроса для создания лота.
type LotRequest struct {
	Name   string `json:"name" validate:"required,max=255"`
	Budget Money  `json:"budget" validate:"gte=0"`
}

// Clone возвращает глубокую копию лота, чтобы мутации не затрагивали исходное состояние.
func (l *Lot) Clone() *Lot {
	c := *l
	c.Bids = make([]Bid, len(l.Bids))
	for i := range l.Bids {
		c.Bids[i] = l.Bids[i].Clone()
	}
	if l.AccessRequests != nil {
		c.AccessRequests = append([]AccessRequest(nil), l.AccessRequests...)
	}
	return &c
}

// FindBid возвращает указатель на предложение лота или nil.
func (l *Lot) FindBid(bidID string) *Bid {
	for i := range l.Bids {
		if l.Bids[i].ID == bidID {
			return &l.Bids[i]
		}
	}
	return nil
}

// SelectedBid возвращает выбранное (победившее) предложение или nil.
func (l *Lot) SelectedBid() *Bid {
	for i := range l.Bids {
		if l.Bids[i].Selected {
			return &l.Bids[i]
		}
	}
	return nil
}

// FavoriteBid возвращает предпочтительное предложение или nil.
func (l *Lot) FavoriteBid() *Bid {
	for i := range l.Bids {
		if l.Bids[i].IsFavorite {
			return &l.Bids[i]
		}
	}
	return nil
}

// ToggleSelection переключает выбор победителя.
// Выбор допустим только для соответствующего требованиям предложения; остальные предложения
// лота при этом снимаются с выбора.
func (l *Lot) ToggleSelection(bidID string) error {
	target := l.FindBid(bidID)
	if target == nil {
		return ErrNotFound
	}
	if !target.Compliant {
		return &IneligibleBidError{BidID: bidID, Action: "select"}
	}

	if target.Selected {
		target.Selected = false
		l.Status = OpenLot
		return nil
	}

	for i := range l.Bids {
		l.Bids[i].Selected = l.Bids[i].ID == bidID
	}
	l.Status = AssignedLot
	return nil
}

// ToggleFavorite переключает предпочтительное предложение. Не зависит от выбора победителя.
func (l *Lot) ToggleFavorite(bidID string) error {
	target := l.FindBid(bidID)
	if target == nil {
		return ErrNotFound
	}
	if !target.Compliant {
		return &IneligibleBidError{BidID: bidID, Action: "favorite"}
	}

	if target.IsFavorite {
		target.IsFavorite = false
		return nil
	}

	for i := range l.Bids {
		l.Bids[i].IsFavorite = l.Bids[i].ID == bidID
	}
	return nil
}

// SetCompliance меняет признак соответствия предложения.
// Несоответствующее предложение теряет выбор и предпочтение, а лот возвращается в статус open,
// если это предложение было победителем.
func (l *Lot) SetCompliance(bidID string, compliant bool, notes *string) error {
	target := l.FindBid(bidID)
	if target == nil {
		return ErrNotFound
	}

	target.Compliant = compliant
	target.ComplianceNotes = notes
	if compliant {
		return nil
	}

	target.IsFavorite = false
	if target.Selected {
		target.Selected = false
		l.Status = OpenLot
	}
	return nil
}

// CheckInvariants проверяет согласованность лота. Используется хранилищами перед записью.
func (l *Lot) CheckInvariants() error {
	var selected, favorite int
	for i := range l.Bids {
		b := &l.Bids[i]
		if b.Selected {
			selected++
			if !b.Compliant {
				return &InvariantError{LotID: l.ID, Reason: "selected bid " + b.ID + " is not compliant"}
			}
		}
		if b.IsFavorite {
			favorite++
			if !b.Compliant {
				return &InvariantError{LotID: l.ID, Reason: "favorite bid " + b.ID + " is not compliant"}
			}
		}
	}
	switch {
	case selected > 1:
		return &InvariantError{LotID: l.ID, Reason: "more than one selected bid"}
	case favorite > 1:
		return &InvariantError{LotID: l.ID, Reason: "more than one favorite bid"}
	case (selected == 1) != (l.Status == AssignedLot):
		return &InvariantError{LotID: l.ID, Reason: "status does not match selection"}
	}
	return nil
}
