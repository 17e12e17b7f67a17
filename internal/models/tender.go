package models

import "time"

type (
	TenderStatus string // Статус тендера
	TenderType   string // Тип доступа к документам тендера
)

const (
	OpenTender     TenderStatus = "open"     // Тендер принимает предложения
	ClosedTender   TenderStatus = "closed"   // Тендер закрыт (срок истек), изменения запрещены
	AssignedTender TenderStatus = "assigned" // Все лоты тендера присуждены

	OpenType       TenderType = "open"       // Документы видны всем компаниям
	RestrictedType TenderType = "restricted" // Доступ к документам лота выдается по запросу
)

// ValidTenderType проверяет тип тендера.
func ValidTenderType(t TenderType) bool {
	switch t {
	case OpenType, RestrictedType:
		return true
	default:
		return false
	}
}

// Tender представляет модель тендера (appel d'offres).
type Tender struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Status     TenderStatus `json:"status"`
	TenderType TenderType   `json:"tenderType"`
	Lots       []Lot        `json:"lots"`
	CreatedAt  time.Time    `json:"createdAt"`
	ClosedAt   *time.Time   `json:"closedAt,omitempty"`
}

// TenderRequest представляет структуру запроса для создания тендера.
type TenderRequest struct {
	Name       string     `json:"name" validate:"required,max=255"`
	TenderType TenderType `json:"tenderType" validate:"required,oneof=open restricted"`
}

// IsClosed сообщает, закрыт ли тендер явным образом.
func (t *Tender) IsClosed() bool {
	return t.ClosedAt != nil
}

// DeriveStatus вычисляет статус тендера по состоянию его лотов.
// Тендер без лотов считается открытым.
func (t *Tender) DeriveStatus() TenderStatus {
	if t.IsClosed() {
		return ClosedTender
	}
	if len(t.Lots) == 0 {
		return OpenTender
	}
	for i := range t.Lots {
		if t.Lots[i].Status != AssignedLot {
			return OpenTender
		}
	}
	return AssignedTender
}

// Refresh пересчитывает производный статус тендера.
func (t *Tender) Refresh() {
	t.Status = t.DeriveStatus()
}
