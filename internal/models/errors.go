package models

import (
	"errors"
	"fmt"
)

// domainError отмечает ошибки предметной области, которые хранилище не должно повторять
// и не должно заворачивать в PersistenceError.
type domainError interface {
	error
	domainError()
}

type sentinel string

func (s sentinel) Error() string { return string(s) }
func (sentinel) domainError()    {}

var (
	ErrNotFound        error = sentinel("not found")
	ErrVersionConflict error = sentinel("lot was modified concurrently")
	ErrTenderClosed    error = sentinel("tender is closed")
	ErrLotNotOpen      error = sentinel("lot is not open for bids")
	ErrDuplicateBid    error = sentinel("company has already submitted a bid for this lot")

	ErrPreconditionFailed error = sentinel("lot version does not match the expected version")
)

// IsDomainError сообщает, относится ли ошибка к предметной области.
func IsDomainError(err error) bool {
	var d domainError
	return errors.As(err, &d)
}

// IneligibleBidError - предложение не соответствует требованиям и не может быть выбрано.
type IneligibleBidError struct {
	BidID  string
	Action string
}

func (e *IneligibleBidError) Error() string {
	return fmt.Sprintf("bid %s is not compliant and cannot be used to %s", e.BidID, e.Action)
}

func (*IneligibleBidError) domainError() {}

// NoSelectedBidError - у лота нет выбранного предложения.
type NoSelectedBidError struct {
	LotID string
}

func (e *NoSelectedBidError) Error() string {
	return fmt.Sprintf("lot %s has no selected bid", e.LotID)
}

func (*NoSelectedBidError) domainError() {}

// InvalidBudgetError - бюджет лота не позволяет вычислить отклонение.
type InvalidBudgetError struct {
	LotID  string
	Budget Money
}

func (e *InvalidBudgetError) Error() string {
	return fmt.Sprintf("lot %s has invalid budget %d", e.LotID, e.Budget)
}

func (*InvalidBudgetError) domainError() {}

// DuplicateRequestError - запрос доступа для пары (компания, лот) уже существует.
type DuplicateRequestError struct {
	CompanyID string
	LotID     string
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("company %s has already requested access to lot %s", e.CompanyID, e.LotID)
}

func (*DuplicateRequestError) domainError() {}

// AlreadyDecidedError - по запросу доступа уже принято решение.
type AlreadyDecidedError struct {
	RequestID string
	Status    AccessStatus
}

func (e *AlreadyDecidedError) Error() string {
	return fmt.Sprintf("access request %s is already %s", e.RequestID, e.Status)
}

func (*AlreadyDecidedError) domainError() {}

// InvariantError - попытка сохранить лот в несогласованном состоянии.
type InvariantError struct {
	LotID  string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("lot %s invariant violated: %s", e.LotID, e.Reason)
}

func (*InvariantError) domainError() {}

// PersistenceError - сбой хранилища, оставшийся после всех повторных попыток.
type PersistenceError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
