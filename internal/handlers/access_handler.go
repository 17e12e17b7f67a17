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

// AccessHandler - структура для обработки HTTP-запросов доступа к документам лота.
type AccessHandler struct {
	Service *services.AccessService
	Logger  *logrus.Logger
	Timeout time.Duration
}

// NewAccessHandler создает новый экземпляр AccessHandler.
func NewAccessHandler(service *services.AccessService, logger *logrus.Logger, timeout time.Duration) *AccessHandler {
	return &AccessHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// RequestAccess обрабатывает запросы компании на доступ к документам лота.
func (h *AccessHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var body models.AccessRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(body); err != nil {
		utils.SendServiceError(w, h.Logger, err, "invalid request body")
		return
	}

	req, err := h.Service.RequestAccess(ctx, body.CompanyID, r.PathValue("lotId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to create access request")
		return
	}

	utils.SendJSON(w, http.StatusCreated, req)
}

// ListAccessRequests обрабатывает запросы на получение запросов доступа к лоту.
func (h *AccessHandler) ListAccessRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requests, err := h.Service.ListAccessRequests(ctx, r.PathValue("lotId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to retrieve access requests")
		return
	}

	utils.SendJSON(w, http.StatusOK, requests)
}

// GetAccessRequest обрабатывает запросы на получение запроса доступа.
func (h *AccessHandler) GetAccessRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	req, err := h.Service.GetAccessRequest(ctx, r.PathValue("requestId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to retrieve access request")
		return
	}

	utils.SendJSON(w, http.StatusOK, req)
}

// Decide обрабатывает запросы с решением по запросу доступа.
func (h *AccessHandler) Decide(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var body models.DecisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(body); err != nil {
		utils.SendServiceError(w, h.Logger, err, "invalid request body")
		return
	}

	req, err := h.Service.Decide(ctx, r.PathValue("requestId"), body.Outcome)
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to decide access request")
		return
	}

	utils.SendJSON(w, http.StatusOK, req)
}

// GetVisibility обрабатывает запросы на проверку видимости документов лота для компании.
func (h *AccessHandler) GetVisibility(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	visibility, err := h.Service.DocumentVisibility(ctx, r.URL.Query().Get("companyId"), r.PathValue("lotId"))
	if err != nil {
		utils.SendServiceError(w, h.Logger, err, "failed to check document visibility")
		return
	}

	utils.SendJSON(w, http.StatusOK, visibility)
}
