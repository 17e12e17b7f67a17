package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/senyabanana/tender-portal/internal/events"
	"github.com/senyabanana/tender-portal/internal/models"
	"github.com/senyabanana/tender-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AccessService управляет запросами доступа к документам лотов закрытых тендеров.
// Запрос переходит из pending в approved или rejected ровно один раз.
type AccessService struct {
	Repo    repository.AccessRepository
	Lots    repository.BidRepository
	Tenders repository.TenderRepository
	Events  events.Publisher
	Logger  *logrus.Logger
	Now     func() time.Time
}

// NewAccessService создает новый экземпляр AccessService.
func NewAccessService(repo repository.AccessRepository, lots repository.BidRepository, tenders repository.TenderRepository, publisher events.Publisher, logger *logrus.Logger) *AccessService {
	return &AccessService{
		Repo:    repo,
		Lots:    lots,
		Tenders: tenders,
		Events:  publisher,
		Logger:  logger,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// RequestAccess создает запрос компании на доступ к документам лота.
func (s *AccessService) RequestAccess(ctx context.Context, companyId, lotId string) (*models.AccessRequest, error) {
	if companyId == "" || lotId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameters: companyId or lotId")
	}

	tenderType, err := s.tenderTypeOf(ctx, lotId)
	if err != nil {
		return nil, err
	}
	if tenderType != models.RestrictedType {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "lot belongs to an open tender, its documents are public")
	}

	existing, err := s.Repo.FindAccessRequest(ctx, companyId, lotId)
	switch {
	case err == nil:
		return nil, &models.DuplicateRequestError{CompanyID: existing.CompanyID, LotID: existing.LotID}
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	req := &models.AccessRequest{
		ID:          uuid.New().String(),
		CompanyID:   companyId,
		LotID:       lotId,
		Status:      models.PendingAccess,
		RequestDate: s.Now(),
	}
	if err := s.Repo.CreateAccessRequest(ctx, req); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New("access", req.ID, events.AccessRequested, req))
	return req, nil
}

// Decide фиксирует решение по запросу доступа. Повторное решение возвращает AlreadyDecidedError,
// сохраненное состояние при этом не меняется.
func (s *AccessService) Decide(ctx context.Context, requestId string, outcome models.AccessStatus) (*models.AccessRequest, error) {
	if requestId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameter: requestId")
	}
	if !outcome.IsDecision() {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid outcome, must be either 'approved' or 'rejected'")
	}

	req, err := s.Repo.DecideAccessRequest(ctx, requestId, outcome, s.Now())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New("access", req.ID, events.AccessDecided, req))
	return req, nil
}

// GetAccessRequest возвращает запрос доступа по ID.
func (s *AccessService) GetAccessRequest(ctx context.Context, requestId string) (*models.AccessRequest, error) {
	return s.Repo.GetAccessRequest(ctx, requestId)
}

// ListAccessRequests возвращает запросы доступа к лоту.
func (s *AccessService) ListAccessRequests(ctx context.Context, lotId string) ([]models.AccessRequest, error) {
	if _, err := s.Lots.GetLot(ctx, lotId); err != nil {
		return nil, err
	}
	requests, err := s.Repo.ListAccessRequests(ctx, lotId)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.AccessRequest{}
	}
	return requests, nil
}

// DocumentVisibility проверяет, может ли компания видеть документы лота. Ничего не изменяет.
func (s *AccessService) DocumentVisibility(ctx context.Context, companyId, lotId string) (*models.Visibility, error) {
	if companyId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required query parameter: companyId")
	}

	tenderType, err := s.tenderTypeOf(ctx, lotId)
	if err != nil {
		return nil, err
	}

	req, err := s.Repo.FindAccessRequest(ctx, companyId, lotId)
	if errors.Is(err, models.ErrNotFound) {
		req, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &models.Visibility{
		CompanyID:  companyId,
		LotID:      lotId,
		TenderType: tenderType,
		Visible:    models.CanViewDocuments(tenderType, companyId, req),
		Request:    req,
	}, nil
}

func (s *AccessService) tenderTypeOf(ctx context.Context, lotId string) (models.TenderType, error) {
	lot, err := s.Lots.GetLot(ctx, lotId)
	if err != nil {
		return "", err
	}
	tender, err := s.Tenders.GetTenderHeader(ctx, lot.TenderID)
	if err != nil {
		return "", err
	}
	return tender.TenderType, nil
}

func (s *AccessService) publish(ctx context.Context, e events.Event) {
	if err := s.Events.Publish(ctx, e); err != nil {
		s.Logger.WithError(err).WithField("subject", e.Subject).Warn("failed to publish event")
	}
}
