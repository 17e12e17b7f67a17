package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/senyabanana/tender-portal/internal/models"
	"github.com/senyabanana/tender-portal/internal/services"
	"github.com/senyabanana/tender-portal/internal/utils"

	"github.com/sirupsen/logrus"
)

// BidHandler - структура для обработки HTTP-запросов по предложениям.
type BidHandler struct {
	Service  *services.BidService
	Analysis *services.AnalysisService
	Logger   *logrus.Logger
	Timeout  time.Duration
}

// NewBidHandler создает новый экземпляр BidHandler.
func NewBidHandler(service *services.BidService, analysis *services.AnalysisService, logger *logrus.Logger, timeout time.Duration) *BidHandler {
	return &BidHandler{
		Service:  service,
		Analysis: analysis,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// SubmitBid обрабатывает запросы для подачи предложения по лоту.
func (h *BidHandler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx, err := withIfMatch(ctx, r)
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "invalid If-Match header")
		return
	}

	bid, err := h.Service.SubmitBid(ctx, r.PathValue("lotId"), req)
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to submit bid")
		return
	}

	utils.SendJSON(w, http.StatusCreated, bid)
}

// GetBid обрабатывает запросы для получения предложения.
func (h *BidHandler) GetBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	bid, err := h.Service.GetBid(ctx, r.PathValue("bidId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to retrieve bid")
		return
	}

	utils.SendJSON(w, http.StatusOK, bid)
}

// ToggleSelection обрабатывает запросы на выбор предложения победителем.
func (h *BidHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	ctx, err := withIfMatch(ctx, r)
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "invalid If-Match header")
		return
	}

	lot, err := h.Service.ToggleBidSelection(ctx, r.PathValue("lotId"), r.PathValue("bidId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to toggle bid selection")
		return
	}

	sendLot(w, http.StatusOK, lot)
}

// ToggleFavorite обрабатывает запросы на отметку предложения как предпочтительного.
func (h *BidHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	ctx, err := withIfMatch(ctx, r)
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "invalid If-Match header")
		return
	}

	lot, err := h.Service.ToggleFavoriteBid(ctx, r.PathValue("lotId"), r.PathValue("bidId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to toggle favorite bid")
		return
	}

	sendLot(w, http.StatusOK, lot)
}

// MarkCompliance обрабатывает запросы на изменение соответствия предложения.
// lotId в пути необязателен: без него лот определяется по предложению.
func (h *BidHandler) MarkCompliance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.ComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.SendServiceError(w, h.Logger, err, "invalid request body")
		return
	}
	ctx, err := withIfMatch(ctx, r)
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "invalid If-Match header")
		return
	}

	var (
		bid   *models.Bid
		lotId = r.PathValue("lotId")
		bidId = r.PathValue("bidId")
	)
	if lotId != "" {
		bid, err = h.Service.MarkComplianceInLot(ctx, lotId, bidId, *req.Compliant, req.Notes)
	} else {
		bid, err = h.Service.MarkCompliance(ctx, bidId, *req.Compliant, req.Notes)
	}
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to update bid compliance")
		return
	}

	utils.SendJSON(w, http.StatusOK, bid)
}

// GetBudgetImpact обрабатывает запросы на расчет отклонения выбранного предложения от бюджета.
func (h *BidHandler) GetBudgetImpact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	impact, err := h.Analysis.BudgetImpact(ctx, r.PathValue("lotId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to compute budget impact")
		return
	}

	utils.SendJSON(w, http.StatusOK, impact)
}

// CompareBids обрабатывает запросы на построчное сравнение двух предложений.
func (h *BidHandler) CompareBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	comparison, err := h.Analysis.Compare(ctx, r.PathValue("bidA"), r.PathValue("bidB"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to compare bids")
		return
	}

	utils.SendJSON(w, http.StatusOK, comparison)
}
