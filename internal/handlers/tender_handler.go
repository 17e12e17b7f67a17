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

// TenderHandler - структура для обработки HTTP-запросов по тендерам и лотам.
type TenderHandler struct {
	Service *services.TenderService
	Logger  *logrus.Logger
	Timeout time.Duration
}

// NewTenderHandler создает новый экземпляр TenderHandler.
func NewTenderHandler(service *services.TenderService, logger *logrus.Logger, timeout time.Duration) *TenderHandler {
	return &TenderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateTender обрабатывает запросы для создания тендера.
func (h *TenderHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.TenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.CreateTender(ctx, req)
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to create tender")
		return
	}

	utils.SendJSON(w, http.StatusCreated, tender)
}

// GetTenders обрабатывает запросы для получения списка тендеров.
func (h *TenderHandler) GetTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	tenders, err := h.Service.ListTenders(ctx, limitStr, offsetStr)
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to retrieve tenders")
		return
	}

	utils.SendJSON(w, http.StatusOK, tenders)
}

// GetTender обрабатывает запросы для получения тендера с лотами.
func (h *TenderHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tender, err := h.Service.GetTender(ctx, r.PathValue("tenderId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to retrieve tender")
		return
	}

	utils.SendJSON(w, http.StatusOK, tender)
}

// CloseTender обрабатывает запросы на закрытие тендера.
func (h *TenderHandler) CloseTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tender, err := h.Service.CloseTender(ctx, r.PathValue("tenderId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to close tender")
		return
	}

	h.Logger.WithField("tenderId", tender.ID).Info("tender closed")
	utils.SendJSON(w, http.StatusOK, tender)
}

// CreateLot обрабатывает запросы для создания лота в тендере.
func (h *TenderHandler) CreateLot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.LotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lot, err := h.Service.CreateLot(ctx, r.PathValue("tenderId"), req)
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to create lot")
		return
	}

	sendLot(w, http.StatusCreated, lot)
}

// GetLot обрабатывает запросы для получения лота с предложениями.
func (h *TenderHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	lot, err := h.Service.GetLot(ctx, r.PathValue("lotId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to retrieve lot")
		return
	}

	sendLot(w, http.StatusOK, lot)
}
