package services

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/tender-portal/internal/events"
	"github.com/senyabanana/tender-portal/internal/models"
	"github.com/senyabanana/tender-portal/internal/repository"
	"github.com/senyabanana/tender-portal/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TenderService struct {
	Repo   repository.TenderRepository
	Lots   repository.BidRepository
	Events events.Publisher
	Logger *logrus.Logger
	Now    func() time.Time
}

// NewTenderService создает новый экземпляр TenderService.
func NewTenderService(repo repository.TenderRepository, lots repository.BidRepository, publisher events.Publisher, logger *logrus.Logger) *TenderService {
	return &TenderService{
		Repo:   repo,
		Lots:   lots,
		Events: publisher,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateTender создает новый тендер.
func (s *TenderService) CreateTender(ctx context.Context, req models.TenderRequest) (*models.Tender, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	tender := &models.Tender{
		ID:         uuid.New().String(),
		Name:       req.Name,
		TenderType: req.TenderType,
		Lots:       []models.Lot{},
		CreatedAt:  s.Now(),
	}
	if err := s.Repo.CreateTender(ctx, tender); err != nil {
		return nil, err
	}
	tender.Refresh()
	return tender, nil
}

// GetTender возвращает тендер со статусом, вычисленным по лотам.
func (s *TenderService) GetTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	if tenderId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameter: tenderId")
	}
	return s.Repo.GetTender(ctx, tenderId)
}

// ListTenders возвращает страницу тендеров.
func (s *TenderService) ListTenders(ctx context.Context, limitStr, offsetStr string) ([]models.Tender, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	tenders, err := s.Repo.ListTenders(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if tenders == nil {
		tenders = []models.Tender{}
	}
	return tenders, nil
}

// CloseTender закрывает тендер. После закрытия лоты и предложения не меняются.
func (s *TenderService) CloseTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	tender, err := s.Repo.CloseTender(ctx, tenderId, s.Now())
	if err != nil {
		return nil, err
	}

	e := events.New("tenders", tender.ID, events.TenderClosed, map[string]any{"tenderId": tender.ID, "closedAt": tender.ClosedAt})
	if err := s.Events.Publish(ctx, e); err != nil {
		s.Logger.WithError(err).WithField("subject", e.Subject).Warn("failed to publish event")
	}
	return tender, nil
}

// CreateLot создает лот в открытом тендере.
func (s *TenderService) CreateLot(ctx context.Context, tenderId string, req models.LotRequest) (*models.Lot, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	tender, err := s.Repo.GetTenderHeader(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if tender.IsClosed() {
		return nil, models.ErrTenderClosed
	}

	lot := &models.Lot{
		ID:        uuid.New().String(),
		TenderID:  tender.ID,
		Name:      req.Name,
		Budget:    req.Budget,
		Status:    models.OpenLot,
		Version:   1,
		Bids:      []models.Bid{},
		CreatedAt: s.Now(),
	}
	if err := s.Repo.CreateLot(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// GetLot возвращает агрегат лота.
func (s *TenderService) GetLot(ctx context.Context, lotId string) (*models.Lot, error) {
	if lotId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameter: lotId")
	}
	return s.Lots.GetLot(ctx, lotId)
}
