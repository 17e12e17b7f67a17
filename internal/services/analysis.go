package services

import (
	"context"

	"github.com/senyabanana/tender-portal/internal/models"
	"github.com/senyabanana/tender-portal/internal/repository"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeBudgetImpact вычисляет отклонение выбранного предложения от бюджета лота.
// Отрицательный процент означает экономию, положительный - превышение бюджета.
func ComputeBudgetImpact(lot *models.Lot) (*models.BudgetImpact, error) {
	selected := lot.SelectedBid()
	if selected == nil {
		return nil, &models.NoSelectedBidError{LotID: lot.ID}
	}
	if lot.Budget <= 0 {
		return nil, &models.InvalidBudgetError{LotID: lot.ID, Budget: lot.Budget}
	}

	deviation := selected.Amount - lot.Budget
	return &models.BudgetImpact{
		LotID:               lot.ID,
		BidID:               selected.ID,
		LotBudget:           lot.Budget,
		BidAmount:           selected.Amount,
		Deviation:           deviation,
		DeviationPercentage: percentOf(deviation, lot.Budget),
	}, nil
}

// CompareBids сравнивает строки смет двух предложений по точному совпадению designation.
// Порядок: строки A, затем строки, которые есть только в B. Повторяющиеся строки одного
// предложения суммируются.
func CompareBids(a, b *models.Bid) []models.LineDiff {
	pricesA, orderA := linePrices(a.LineItems)
	pricesB, orderB := linePrices(b.LineItems)

	diffs := make([]models.LineDiff, 0, len(orderA)+len(orderB))
	for _, designation := range orderA {
		diff := models.LineDiff{Designation: designation, PriceA: pricesA[designation], InA: true}
		if price, ok := pricesB[designation]; ok {
			diff.PriceB = price
			diff.InB = true
		}
		diff.PercentageDiff = percentageDiff(diff.PriceA, diff.PriceB)
		diffs = append(diffs, diff)
	}
	for _, designation := range orderB {
		if _, ok := pricesA[designation]; ok {
			continue
		}
		diffs = append(diffs, models.LineDiff{
			Designation:    designation,
			PriceB:         pricesB[designation],
			InB:            true,
			PercentageDiff: 0,
		})
	}
	return diffs
}

func linePrices(items []models.LineItem) (map[string]models.Money, []string) {
	prices := make(map[string]models.Money, len(items))
	var order []string
	for _, item := range items {
		if _, seen := prices[item.Designation]; !seen {
			order = append(order, item.Designation)
		}
		prices[item.Designation] += item.Price
	}
	return prices, order
}

// percentageDiff возвращает (b - a) / a * 100; при a == 0 результат 0.
func percentageDiff(a, b models.Money) float64 {
	if a == 0 {
		return 0
	}
	return percentOf(b-a, a)
}

func percentOf(delta, base models.Money) float64 {
	p, _ := decimal.NewFromInt(int64(delta)).Mul(hundred).DivRound(decimal.NewFromInt(int64(base)), 2).Float64()
	return p
}

// AnalysisService отвечает на запросы анализа предложений.
type AnalysisService struct {
	Repo repository.BidRepository
}

// NewAnalysisService создает новый экземпляр AnalysisService.
func NewAnalysisService(repo repository.BidRepository) *AnalysisService {
	return &AnalysisService{Repo: repo}
}

// BudgetImpact загружает лот и вычисляет влияние выбранного предложения на бюджет.
func (s *AnalysisService) BudgetImpact(ctx context.Context, lotId string) (*models.BudgetImpact, error) {
	lot, err := s.Repo.GetLot(ctx, lotId)
	if err != nil {
		return nil, err
	}
	return ComputeBudgetImpact(lot)
}

// Compare загружает два предложения и сравнивает их сметы.
func (s *AnalysisService) Compare(ctx context.Context, bidA, bidB string) (*models.Comparison, error) {
	a, err := s.Repo.GetBid(ctx, bidA)
	if err != nil {
		return nil, err
	}
	b, err := s.Repo.GetBid(ctx, bidB)
	if err != nil {
		return nil, err
	}
	return &models.Comparison{BidA: a.ID, BidB: b.ID, Lines: CompareBids(a, b)}, nil
}
