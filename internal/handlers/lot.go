package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/senyabanana/tender-portal/internal/models"
	"github.com/senyabanana/tender-portal/internal/services"
	"github.com/senyabanana/tender-portal/internal/utils"
)

// sendLot отправляет агрегат лота с его версией в заголовке ETag.
func sendLot(w http.ResponseWriter, statusCode int, lot *models.Lot) {
	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(lot.Version)))
	utils.SendJSON(w, statusCode, lot)
}

// withIfMatch переносит версию из If-Match в контекст сервиса.
// Пустой заголовок и "*" не ограничивают изменение.
func withIfMatch(ctx context.Context, r *http.Request) (context.Context, error) {
	tag := strings.TrimSpace(r.Header.Get("If-Match"))
	if tag == "" || tag == "*" {
		return ctx, nil
	}

	tag = strings.TrimPrefix(tag, "W/")
	if unquoted, err := strconv.Unquote(tag); err == nil {
		tag = unquoted
	}
	version, err := strconv.Atoi(tag)
	if err != nil || version < 1 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid If-Match header")
	}
	return services.WithExpectedVersion(ctx, version), nil
}
