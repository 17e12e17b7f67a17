package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/senyabanana/tender-portal/internal/lock"
	"github.com/senyabanana/tender-portal/internal/models"

	"github.com/sirupsen/logrus"
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	SendJSON(w, statusCode, models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	})
}

// SendJSON отправляет ответ в формате JSON
func SendJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

// SendServiceError переводит ошибку сервиса в HTTP-ответ.
// Неизвестные ошибки скрываются за fallback-сообщением и логируются.
func SendServiceError(w http.ResponseWriter, logger *logrus.Logger, err error, fallback string) {
	var (
		errorResponse *models.ErrorResponse
		ineligible    *models.IneligibleBidError
		noSelected    *models.NoSelectedBidError
		invalidBudget *models.InvalidBudgetError
		duplicate     *models.DuplicateRequestError
		decided       *models.AlreadyDecidedError
		invariant     *models.InvariantError
		persistence   *models.PersistenceError
	)

	entry := logger.WithError(err)
	switch {
	case errors.As(err, &errorResponse):
		entry.Info("request rejected")
		SendJSON(w, errorResponse.StatusCode, errorResponse)
	case errors.As(err, &ineligible):
		SendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &invalidBudget):
		SendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &noSelected), errors.As(err, &duplicate), errors.As(err, &decided):
		SendErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrNotFound):
		SendErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrPreconditionFailed):
		SendErrorResponse(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, models.ErrVersionConflict),
		errors.Is(err, models.ErrTenderClosed),
		errors.Is(err, models.ErrLotNotOpen),
		errors.Is(err, models.ErrDuplicateBid):
		SendErrorResponse(w, http.StatusConflict, err.Error())
	case errors.As(err, &invariant):
		entry.Error("lot invariant violated")
		SendErrorResponse(w, http.StatusInternalServerError, fallback)
	case errors.As(err, &persistence), errors.Is(err, lock.ErrLockTimeout),
		errors.Is(err, context.DeadlineExceeded):
		entry.Error("storage unavailable")
		SendErrorResponse(w, http.StatusServiceUnavailable, fallback)
	default:
		entry.Error(fallback)
		SendErrorResponse(w, http.StatusInternalServerError, fallback)
	}
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 5
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}
