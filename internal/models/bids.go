package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SolvencyScore string // Оценка платежеспособности компании

const (
	SolvencyExcellent SolvencyScore = "excellent"
	SolvencyAverage   SolvencyScore = "average"
	SolvencyAtRisk    SolvencyScore = "at-risk"
)

// ValidSolvencyScore проверяет оценку платежеспособности.
func ValidSolvencyScore(s SolvencyScore) bool {
	switch s {
	case SolvencyExcellent, SolvencyAverage, SolvencyAtRisk:
		return true
	default:
		return false
	}
}

// Bid представляет модель предложения (devis) компании по лоту.
type Bid struct {
	ID                  string        `json:"id"`
	LotID               string        `json:"lotId"`
	CompanyID           string        `json:"companyId"`
	CompanyName         string        `json:"companyName"`
	Amount              Money         `json:"amount"`
	SubmissionDate      time.Time     `json:"submissionDate"`
	Compliant           bool          `json:"compliant"`
	ComplianceNotes     *string       `json:"complianceNotes,omitempty"`
	SolvencyScore       SolvencyScore `json:"solvencyScore"`
	AdministrativeScore int           `json:"administrativeScore"`
	Selected            bool          `json:"selected"`
	IsFavorite          bool          `json:"isFavorite"`
	LineItems           []LineItem    `json:"lineItems,omitempty"`
}

// LineItem представляет строку сметы предложения.
type LineItem struct {
	Designation string          `json:"designation" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	Price       Money           `json:"price" validate:"gte=0"`
}

// BidRequest представляет структуру запроса для подачи предложения.
// Предложение создаётся несоответствующим; соответствие отмечает заказчик.
type BidRequest struct {
	CompanyID           string        `json:"companyId" validate:"required"`
	CompanyName         string        `json:"companyName" validate:"required"`
	Amount              Money         `json:"amount" validate:"gte=0"`
	SolvencyScore       SolvencyScore `json:"solvencyScore" validate:"required,oneof=excellent average at-risk"`
	AdministrativeScore int           `json:"administrativeScore" validate:"gte=0,lte=100"`
	LineItems           []LineItem    `json:"lineItems" validate:"dive"`
}

// ComplianceRequest представляет тело запроса на изменение соответствия предложения.
type ComplianceRequest struct {
	Compliant *bool   `json:"compliant" validate:"required"`
	Notes     *string `json:"notes"`
}

// Clone возвращает копию предложения с собственным срезом строк.
func (b Bid) Clone() Bid {
	if b.LineItems != nil {
		b.LineItems = append([]LineItem(nil), b.LineItems...)
	}
	if b.ComplianceNotes != nil {
		notes := *b.ComplianceNotes
		b.ComplianceNotes = &notes
	}
	return b
}
