package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/senyabanana/tender-portal/internal/events"
	"github.com/senyabanana/tender-portal/internal/lock"
	"github.com/senyabanana/tender-portal/internal/models"
	"github.com/senyabanana/tender-portal/internal/repository"
	"github.com/senyabanana/tender-portal/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BidService применяет правила оценки предложений: выбор победителя, предпочтение и соответствие.
// Все изменения лота выполняются под блокировкой лота и сохраняются одной записью с проверкой версии.
type BidService struct {
	Repo    repository.BidRepository
	Tenders repository.TenderRepository
	Locker  lock.Locker
	Events  events.Publisher
	Logger  *logrus.Logger
	Now     func() time.Time
}

// NewBidService создает новый экземпляр BidService.
func NewBidService(repo repository.BidRepository, tenders repository.TenderRepository, locker lock.Locker, publisher events.Publisher, logger *logrus.Logger) *BidService {
	return &BidService{
		Repo:    repo,
		Tenders: tenders,
		Locker:  locker,
		Events:  publisher,
		Logger:  logger,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// SubmitBid регистрирует предложение компании по открытому лоту.
func (s *BidService) SubmitBid(ctx context.Context, lotId string, req models.BidRequest) (*models.Bid, error) {
	if lotId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameter: lotId")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	amount := req.Amount
	if amount == 0 {
		var err error
		if amount, err = sumLinePrices(req.LineItems); err != nil {
			return nil, err
		}
	}

	unlock, err := s.Locker.Lock(ctx, lotId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	lot, err := s.Repo.GetLot(ctx, lotId)
	if err != nil {
		return nil, err
	}
	if err := checkExpectedVersion(ctx, lot); err != nil {
		return nil, err
	}
	tender, err := s.Tenders.GetTenderHeader(ctx, lot.TenderID)
	if err != nil {
		return nil, err
	}
	if tender.IsClosed() {
		return nil, models.ErrTenderClosed
	}
	if lot.Status != models.OpenLot {
		return nil, models.ErrLotNotOpen
	}

	bid := &models.Bid{
		ID:                  uuid.New().String(),
		LotID:               lotId,
		CompanyID:           req.CompanyID,
		CompanyName:         req.CompanyName,
		Amount:              amount,
		SubmissionDate:      s.Now(),
		Compliant:           false,
		SolvencyScore:       req.SolvencyScore,
		AdministrativeScore: req.AdministrativeScore,
		LineItems:           req.LineItems,
	}
	if err := s.Repo.AddBid(ctx, lot, bid); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New("bids", bid.ID, events.BidSubmitted, bid))
	return bid, nil
}

// GetBid возвращает предложение по ID.
func (s *BidService) GetBid(ctx context.Context, bidId string) (*models.Bid, error) {
	if bidId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameter: bidId")
	}
	return s.Repo.GetBid(ctx, bidId)
}

// ToggleBidSelection выбирает предложение победителем лота или снимает выбор.
// Для закрытого тендера возвращает лот без изменений.
func (s *BidService) ToggleBidSelection(ctx context.Context, lotId, bidId string) (*models.Lot, error) {
	return s.mutateLot(ctx, lotId, func(lot *models.Lot) ([]events.Event, error) {
		if err := lot.ToggleSelection(bidId); err != nil {
			return nil, err
		}
		kind := events.LotReopened
		if lot.Status == models.AssignedLot {
			kind = events.LotAssigned
		}
		return []events.Event{events.New("lots", lot.ID, kind, lotSummary(lot))}, nil
	})
}

// ToggleFavoriteBid отмечает предложение как предпочтительное или снимает отметку.
func (s *BidService) ToggleFavoriteBid(ctx context.Context, lotId, bidId string) (*models.Lot, error) {
	return s.mutateLot(ctx, lotId, func(lot *models.Lot) ([]events.Event, error) {
		if err := lot.ToggleFavorite(bidId); err != nil {
			return nil, err
		}
		return []events.Event{events.New("lots", lot.ID, events.LotFavorite, lotSummary(lot))}, nil
	})
}

// MarkCompliance меняет признак соответствия предложения, находя его лот по ID предложения.
func (s *BidService) MarkCompliance(ctx context.Context, bidId string, compliant bool, notes *string) (*models.Bid, error) {
	lotId, err := s.Repo.GetLotIDByBid(ctx, bidId)
	if err != nil {
		return nil, err
	}
	return s.MarkComplianceInLot(ctx, lotId, bidId, compliant, notes)
}

// MarkComplianceInLot меняет признак соответствия предложения лота.
// Несоответствующее предложение теряет выбор и предпочтение; лот-победитель возвращается в open.
func (s *BidService) MarkComplianceInLot(ctx context.Context, lotId, bidId string, compliant bool, notes *string) (*models.Bid, error) {
	lot, err := s.mutateLot(ctx, lotId, func(lot *models.Lot) ([]events.Event, error) {
		wasAssigned := lot.Status == models.AssignedLot
		if err := lot.SetCompliance(bidId, compliant, notes); err != nil {
			return nil, err
		}

		evts := []events.Event{events.New("bids", bidId, events.BidCompliance, lot.FindBid(bidId))}
		if wasAssigned && lot.Status == models.OpenLot {
			evts = append(evts, events.New("lots", lot.ID, events.LotReopened, lotSummary(lot)))
		}
		return evts, nil
	})
	if err != nil {
		return nil, err
	}

	bid := lot.FindBid(bidId).Clone()
	return &bid, nil
}

// mutateLot выполняет изменение агрегата лота: блокировка, загрузка, изменение копии, запись.
// Если изменение нарушает правила, ничего не записывается.
func (s *BidService) mutateLot(ctx context.Context, lotId string, mutate func(*models.Lot) ([]events.Event, error)) (*models.Lot, error) {
	if lotId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameter: lotId")
	}

	unlock, err := s.Locker.Lock(ctx, lotId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.Repo.GetLot(ctx, lotId)
	if err != nil {
		return nil, err
	}
	if err := checkExpectedVersion(ctx, current); err != nil {
		return nil, err
	}
	tender, err := s.Tenders.GetTenderHeader(ctx, current.TenderID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	evts, err := mutate(next)
	if err != nil {
		return nil, err
	}
	if tender.IsClosed() {
		return current, nil
	}

	if err := s.Repo.SaveLot(ctx, next); err != nil {
		if errors.Is(err, models.ErrTenderClosed) {
			return current, nil
		}
		return nil, err
	}

	s.publish(ctx, evts...)
	return next, nil
}

// sumLinePrices складывает цены строк сметы; сумма, не помещающаяся в Money, - ошибка запроса.
func sumLinePrices(items []models.LineItem) (models.Money, error) {
	var total models.Money
	for _, item := range items {
		if item.Price > math.MaxInt64-total {
			return 0, models.NewErrorResponse(http.StatusBadRequest, "sum of line item prices is too large")
		}
		total += item.Price
	}
	return total, nil
}

func (s *BidService) publish(ctx context.Context, evts ...events.Event) {
	for _, e := range evts {
		if err := s.Events.Publish(ctx, e); err != nil {
			s.Logger.WithError(err).WithField("subject", e.Subject).Warn("failed to publish event")
		}
	}
}

type lotEventPayload struct {
	LotID         string           `json:"lotId"`
	Status        models.LotStatus `json:"status"`
	SelectedBidID string           `json:"selectedBidId,omitempty"`
	FavoriteBidID string           `json:"favoriteBidId,omitempty"`
}

func lotSummary(lot *models.Lot) lotEventPayload {
	p := lotEventPayload{LotID: lot.ID, Status: lot.Status}
	if b := lot.SelectedBid(); b != nil {
		p.SelectedBidID = b.ID
	}
	if b := lot.FavoriteBid(); b != nil {
		p.FavoriteBidID = b.ID
	}
	return p
}
