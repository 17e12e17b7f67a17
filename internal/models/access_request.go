package models

import "time"

type AccessStatus string // Статус запроса доступа к документам лота

const (
	PendingAccess  AccessStatus = "pending"
	ApprovedAccess AccessStatus = "approved"
	RejectedAccess AccessStatus = "rejected"
)

// IsDecision сообщает, является ли статус допустимым итоговым решением.
func (s AccessStatus) IsDecision() bool {
	return s == ApprovedAccess || s == RejectedAccess
}

// AccessRequest представляет запрос компании на просмотр документов лота закрытого тендера.
type AccessRequest struct {
	ID           string       `json:"id"`
	CompanyID    string       `json:"companyId"`
	LotID        string       `json:"lotId"`
	Status       AccessStatus `json:"status"`
	RequestDate  time.Time    `json:"requestDate"`
	DecisionDate *time.Time   `json:"decisionDate,omitempty"`
}

// AccessRequestBody представляет тело запроса на получение доступа.
type AccessRequestBody struct {
	CompanyID string `json:"companyId" validate:"required"`
}

// DecisionBody представляет тело запроса с решением по доступу.
type DecisionBody struct {
	Outcome AccessStatus `json:"outcome" validate:"required,oneof=approved rejected"`
}

// Visibility - результат проверки видимости документов лота для компании.
type Visibility struct {
	CompanyID  string         `json:"companyId"`
	LotID      string         `json:"lotId"`
	TenderType TenderType     `json:"tenderType"`
	Visible    bool           `json:"visible"`
	Request    *AccessRequest `json:"request,omitempty"`
}

// CanViewDocuments решает, может ли компания видеть документы лота:
// открытый тендер виден всем, закрытый - только по одобренному запросу этой компании.
func CanViewDocuments(tenderType TenderType, companyID string, req *AccessRequest) bool {
	if tenderType == OpenType {
		return true
	}
	return req != nil && req.CompanyID == companyID && req.Status == ApprovedAccess
}
