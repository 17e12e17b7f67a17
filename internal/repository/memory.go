package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/tender-portal/internal/models"
)

// MemoryStore - хранилище в памяти, реализующее TenderRepository, BidRepository и AccessRepository.
// Все методы возвращают копии, поэтому вызывающий код не может изменить состояние в обход записи.
type MemoryStore struct {
	mu sync.RWMutex

	tenders     map[string]models.Tender
	tenderOrder []string
	lots        map[string]*models.Lot
	lotOrder    map[string][]string // tenderId -> lotIds
	bidLot      map[string]string   // bidId -> lotId
	access      map[string]models.AccessRequest
	accessKey   map[[2]string]string // (companyId, lotId) -> requestId
	accessOrder map[string][]string  // lotId -> requestIds
}

var (
	_ TenderRepository = (*MemoryStore)(nil)
	_ BidRepository    = (*MemoryStore)(nil)
	_ AccessRepository = (*MemoryStore)(nil)
)

// NewMemoryStore создает пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenders:     make(map[string]models.Tender),
		lots:        make(map[string]*models.Lot),
		lotOrder:    make(map[string][]string),
		bidLot:      make(map[string]string),
		access:      make(map[string]models.AccessRequest),
		accessKey:   make(map[[2]string]string),
		accessOrder: make(map[string][]string),
	}
}

// CreateTender создает новый тендер.
func (s *MemoryStore) CreateTender(_ context.Context, tender *models.Tender) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header := *tender
	header.Lots = nil
	s.tenders[tender.ID] = header
	s.tenderOrder = append(s.tenderOrder, tender.ID)
	return nil
}

// GetTenderHeader возвращает тендер без лотов.
func (s *MemoryStore) GetTenderHeader(_ context.Context, tenderId string) (*models.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenders[tenderId]
	if !ok {
		return nil, models.ErrNotFound
	}
	t.Refresh()
	return &t, nil
}

// GetTender возвращает тендер с лотами и производным статусом.
func (s *MemoryStore) GetTender(_ context.Context, tenderId string) (*models.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenders[tenderId]
	if !ok {
		return nil, models.ErrNotFound
	}
	s.attachLots(&t)
	return &t, nil
}

// ListTenders возвращает страницу тендеров в порядке создания.
func (s *MemoryStore) ListTenders(_ context.Context, limit, offset int) ([]models.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tenders []models.Tender
	for i := offset; i < len(s.tenderOrder) && len(tenders) < limit; i++ {
		t := s.tenders[s.tenderOrder[i]]
		s.attachLots(&t)
		tenders = append(tenders, t)
	}
	return tenders, nil
}

// CloseTender переводит тендер в конечный статус closed.
func (s *MemoryStore) CloseTender(_ context.Context, tenderId string, closedAt time.Time) (*models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenders[tenderId]
	if !ok {
		return nil, models.ErrNotFound
	}
	if t.IsClosed() {
		return nil, models.ErrTenderClosed
	}
	t.ClosedAt = &closedAt
	s.tenders[tenderId] = t

	s.attachLots(&t)
	return &t, nil
}

// CreateLot создает лот в открытом тендере.
func (s *MemoryStore) CreateLot(_ context.Context, lot *models.Lot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenders[lot.TenderID]
	if !ok || t.IsClosed() {
		return models.ErrTenderClosed
	}
	stored := lot.Clone()
	stored.AccessRequests = nil
	s.lots[lot.ID] = stored
	s.lotOrder[lot.TenderID] = append(s.lotOrder[lot.TenderID], lot.ID)
	return nil
}

// GetLot возвращает копию агрегата лота.
func (s *MemoryStore) GetLot(_ context.Context, lotId string) (*models.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lot, ok := s.lots[lotId]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s.lotView(lot), nil
}

// GetLotIDByBid возвращает идентификатор лота предложения.
func (s *MemoryStore) GetLotIDByBid(_ context.Context, bidId string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lotId, ok := s.bidLot[bidId]
	if !ok {
		return "", models.ErrNotFound
	}
	return lotId, nil
}

// GetBid возвращает копию предложения.
func (s *MemoryStore) GetBid(_ context.Context, bidId string) (*models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lotId, ok := s.bidLot[bidId]
	if !ok {
		return nil, models.ErrNotFound
	}
	bid := s.lots[lotId].FindBid(bidId).Clone()
	return &bid, nil
}

// AddBid добавляет предложение с проверкой версии лота.
func (s *MemoryStore) AddBid(_ context.Context, lot *models.Lot, bid *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.lockedLot(lot)
	if err != nil {
		return err
	}
	if stored.Status != models.OpenLot {
		return models.ErrLotNotOpen
	}
	for i := range stored.Bids {
		if stored.Bids[i].CompanyID == bid.CompanyID {
			return models.ErrDuplicateBid
		}
	}

	b := bid.Clone()
	b.LotID = lot.ID
	b.Selected, b.IsFavorite = false, false
	stored.Bids = append(stored.Bids, b)
	stored.Version++
	s.bidLot[bid.ID] = lot.ID
	lot.Version = stored.Version
	return nil
}

// SaveLot сохраняет статус лота и флаги предложений с проверкой версии.
func (s *MemoryStore) SaveLot(_ context.Context, lot *models.Lot) error {
	if err := lot.CheckInvariants(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.lockedLot(lot)
	if err != nil {
		return err
	}

	next := stored.Clone()
	next.Status = lot.Status
	for _, b := range lot.Bids {
		target := next.FindBid(b.ID)
		if target == nil {
			continue
		}
		target.Compliant = b.Compliant
		target.ComplianceNotes = b.ComplianceNotes
		target.Selected = b.Selected
		target.IsFavorite = b.IsFavorite
	}
	next.Version++
	s.lots[lot.ID] = next
	lot.Version = next.Version
	return nil
}

// lockedLot проверяет тендер и версию лота. Вызывается под s.mu.
func (s *MemoryStore) lockedLot(lot *models.Lot) (*models.Lot, error) {
	stored, ok := s.lots[lot.ID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if t := s.tenders[stored.TenderID]; t.IsClosed() {
		return nil, models.ErrTenderClosed
	}
	if stored.Version != lot.Version {
		return nil, models.ErrVersionConflict
	}
	return stored, nil
}

// CreateAccessRequest сохраняет новый запрос доступа.
func (s *MemoryStore) CreateAccessRequest(_ context.Context, req *models.AccessRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{req.CompanyID, req.LotID}
	if _, exists := s.accessKey[key]; exists {
		return &models.DuplicateRequestError{CompanyID: req.CompanyID, LotID: req.LotID}
	}
	if _, ok := s.lots[req.LotID]; !ok {
		return models.ErrNotFound
	}
	s.access[req.ID] = *req
	s.accessKey[key] = req.ID
	s.accessOrder[req.LotID] = append(s.accessOrder[req.LotID], req.ID)
	return nil
}

// GetAccessRequest возвращает запрос доступа по ID.
func (s *MemoryStore) GetAccessRequest(_ context.Context, requestId string) (*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.access[requestId]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &req, nil
}

// FindAccessRequest возвращает запрос доступа компании к лоту.
func (s *MemoryStore) FindAccessRequest(_ context.Context, companyId, lotId string) (*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.accessKey[[2]string{companyId, lotId}]
	if !ok {
		return nil, models.ErrNotFound
	}
	req := s.access[id]
	return &req, nil
}

// ListAccessRequests возвращает запросы доступа к лоту в порядке поступления.
func (s *MemoryStore) ListAccessRequests(_ context.Context, lotId string) ([]models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accessRequestsOf(lotId), nil
}

// DecideAccessRequest фиксирует решение по запросу доступа.
func (s *MemoryStore) DecideAccessRequest(_ context.Context, requestId string, outcome models.AccessStatus, decidedAt time.Time) (*models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.access[requestId]
	if !ok {
		return nil, models.ErrNotFound
	}
	if req.Status != models.PendingAccess {
		return nil, &models.AlreadyDecidedError{RequestID: requestId, Status: req.Status}
	}
	req.Status = outcome
	req.DecisionDate = &decidedAt
	s.access[requestId] = req
	return &req, nil
}

func (s *MemoryStore) accessRequestsOf(lotId string) []models.AccessRequest {
	ids := s.accessOrder[lotId]
	if len(ids) == 0 {
		return nil
	}
	requests := make([]models.AccessRequest, 0, len(ids))
	for _, id := range ids {
		requests = append(requests, s.access[id])
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].RequestDate.Before(requests[j].RequestDate)
	})
	return requests
}

func (s *MemoryStore) lotView(lot *models.Lot) *models.Lot {
	view := lot.Clone()
	view.AccessRequests = s.accessRequestsOf(lot.ID)
	return view
}

func (s *MemoryStore) attachLots(t *models.Tender) {
	t.Lots = make([]models.Lot, 0, len(s.lotOrder[t.ID]))
	for _, id := range s.lotOrder[t.ID] {
		t.Lots = append(t.Lots, *s.lotView(s.lots[id]))
	}
	t.Refresh()
}
