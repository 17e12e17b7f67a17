package repository

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/tender-portal/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TenderRepository - интерфейс для работы с тендерами и их лотами.
type TenderRepository interface {
	CreateTender(ctx context.Context, tender *models.Tender) error
	GetTender(ctx context.Context, tenderId string) (*models.Tender, error)
	GetTenderHeader(ctx context.Context, tenderId string) (*models.Tender, error)
	ListTenders(ctx context.Context, limit, offset int) ([]models.Tender, error)
	CloseTender(ctx context.Context, tenderId string, closedAt time.Time) (*models.Tender, error)
	CreateLot(ctx context.Context, lot *models.Lot) error
}

// PostgresTenderRepository - реализация TenderRepository для базы данных.
type PostgresTenderRepository struct {
	DB    *pgxpool.Pool
	retry retrier
}

// NewPostgresTenderRepository создаёт новый экземпляр PostgresTenderRepository.
func NewPostgresTenderRepository(db *pgxpool.Pool, retries int) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: db, retry: newRetrier(retries)}
}

const tenderColumns = `id, name, tender_type, created_at, closed_at`

func scanTender(row pgx.Row) (models.Tender, error) {
	var t models.Tender
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.TenderType,
		&t.CreatedAt,
		&t.ClosedAt,
	)
	return t, err
}

// CreateTender создает новый тендер.
func (r *PostgresTenderRepository) CreateTender(ctx context.Context, tender *models.Tender) error {
	return r.retry.do(ctx, "create tender", func(ctx context.Context) error {
		_, err := r.DB.Exec(ctx, `
			INSERT INTO tender (id, name, tender_type, status, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			tender.ID,
			tender.Name,
			tender.TenderType,
			models.OpenTender,
			tender.CreatedAt)
		return err
	})
}

// GetTenderHeader возвращает тендер без лотов.
func (r *PostgresTenderRepository) GetTenderHeader(ctx context.Context, tenderId string) (*models.Tender, error) {
	var tender models.Tender
	err := r.retry.do(ctx, "get tender", func(ctx context.Context) error {
		var err error
		tender, err = scanTender(r.DB.QueryRow(ctx, `SELECT `+tenderColumns+` FROM tender WHERE id = $1`, tenderId))
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	tender.Refresh()
	return &tender, nil
}

// GetTender возвращает тендер вместе с лотами и производным статусом.
func (r *PostgresTenderRepository) GetTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	tender, err := r.GetTenderHeader(ctx, tenderId)
	if err != nil {
		return nil, err
	}

	err = r.retry.do(ctx, "get tender lots", func(ctx context.Context) error {
		lots, err := loadLots(ctx, r.DB, "tender_id", []string{tenderId})
		if err != nil {
			return err
		}
		tender.Lots = append(make([]models.Lot, 0, len(lots)), lots...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tender.Refresh()
	return tender, nil
}

// ListTenders возвращает список тендеров с лотами.
func (r *PostgresTenderRepository) ListTenders(ctx context.Context, limit, offset int) ([]models.Tender, error) {
	var tenders []models.Tender
	err := r.retry.do(ctx, "list tenders", func(ctx context.Context) error {
		rows, err := r.DB.Query(ctx, `SELECT `+tenderColumns+` FROM tender ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		tenders, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Tender, error) {
			return scanTender(row)
		})
		if err != nil || len(tenders) == 0 {
			return err
		}

		ids := make([]string, len(tenders))
		index := make(map[string]int, len(tenders))
		for i := range tenders {
			ids[i] = tenders[i].ID
			index[tenders[i].ID] = i
			tenders[i].Lots = []models.Lot{}
		}
		lots, err := loadLots(ctx, r.DB, "tender_id", ids)
		if err != nil {
			return err
		}
		for _, lot := range lots {
			i := index[lot.TenderID]
			tenders[i].Lots = append(tenders[i].Lots, lot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range tenders {
		tenders[i].Refresh()
	}
	return tenders, nil
}

// CloseTender переводит тендер в конечный статус closed.
func (r *PostgresTenderRepository) CloseTender(ctx context.Context, tenderId string, closedAt time.Time) (*models.Tender, error) {
	err := r.retry.do(ctx, "close tender", func(ctx context.Context) error {
		tag, err := r.DB.Exec(ctx, `
			UPDATE tender SET status = $1, closed_at = $2
			WHERE id = $3 AND status = $4`,
			models.ClosedTender, closedAt, tenderId, models.OpenTender)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tender WHERE id = $1)`, tenderId).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return models.ErrNotFound
			}
			return models.ErrTenderClosed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetTender(ctx, tenderId)
}

// CreateLot создает новый лот в открытом тендере.
func (r *PostgresTenderRepository) CreateLot(ctx context.Context, lot *models.Lot) error {
	return r.retry.do(ctx, "create lot", func(ctx context.Context) error {
		tag, err := r.DB.Exec(ctx, `
			INSERT INTO lot (id, tender_id, name, budget, status, version, created_at)
			SELECT $1, t.id, $3, $4, $5, $6, $7 FROM tender t WHERE t.id = $2 AND t.status = 'open'`,
			lot.ID,
			lot.TenderID,
			lot.Name,
			lot.Budget,
			lot.Status,
			lot.Version,
			lot.CreatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrTenderClosed
		}
		return nil
	})
}
