package services

import (
	"context"

	"github.com/senyabanana/tender-portal/internal/models"
)

type expectedVersionKey struct{}

// WithExpectedVersion задает версию лота, на которую рассчитывает клиент (If-Match).
// Изменение лота другой версии завершается ErrPreconditionFailed.
func WithExpectedVersion(ctx context.Context, version int) context.Context {
	return context.WithValue(ctx, expectedVersionKey{}, version)
}

func checkExpectedVersion(ctx context.Context, lot *models.Lot) error {
	version, ok := ctx.Value(expectedVersionKey{}).(int)
	if !ok || version == lot.Version {
		return nil
	}
	return models.ErrPreconditionFailed
}
