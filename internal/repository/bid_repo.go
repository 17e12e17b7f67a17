package repository

import (
	"context"

	"github.com/senyabanana/tender-portal/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidRepository - интерфейс для работы с агрегатом лота и его предложениями.
type BidRepository interface {
	GetLot(ctx context.Context, lotId string) (*models.Lot, error)
	GetLotIDByBid(ctx context.Context, bidId string) (string, error)
	GetBid(ctx context.Context, bidId string) (*models.Bid, error)
	// AddBid добавляет предложение, если версия лота совпадает с lot.Version; при успехе версия увеличивается.
	AddBid(ctx context.Context, lot *models.Lot, bid *models.Bid) error
	// SaveLot записывает статус лота и флаги всех его предложений одной транзакцией.
	SaveLot(ctx context.Context, lot *models.Lot) error
}

// PostgresBidRepository - реализация BidRepository для базы данных.
type PostgresBidRepository struct {
	DB    *pgxpool.Pool
	retry retrier
}

// NewPostgresBidRepository создает новый экземпляр PostgresBidRepository.
func NewPostgresBidRepository(db *pgxpool.Pool, retries int) *PostgresBidRepository {
	return &PostgresBidRepository{DB: db, retry: newRetrier(retries)}
}

// GetLot возвращает лот со всеми предложениями и запросами доступа.
func (r *PostgresBidRepository) GetLot(ctx context.Context, lotId string) (*models.Lot, error) {
	var lot models.Lot
	err := r.retry.do(ctx, "get lot", func(ctx context.Context) error {
		lots, err := loadLots(ctx, r.DB, "id", []string{lotId})
		if err != nil {
			return err
		}
		if len(lots) == 0 {
			return models.ErrNotFound
		}
		lot = lots[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// GetLotIDByBid возвращает идентификатор лота, которому принадлежит предложение.
func (r *PostgresBidRepository) GetLotIDByBid(ctx context.Context, bidId string) (string, error) {
	var lotId string
	err := r.retry.do(ctx, "get lot by bid", func(ctx context.Context) error {
		err := r.DB.QueryRow(ctx, `SELECT lot_id FROM bid WHERE id = $1`, bidId).Scan(&lotId)
		if err == pgx.ErrNoRows {
			return models.ErrNotFound
		}
		return err
	})
	return lotId, err
}

// GetBid возвращает предложение со строками сметы.
func (r *PostgresBidRepository) GetBid(ctx context.Context, bidId string) (*models.Bid, error) {
	var bid models.Bid
	err := r.retry.do(ctx, "get bid", func(ctx context.Context) error {
		bids, err := loadBids(ctx, r.DB, "id", []string{bidId})
		if err != nil {
			return err
		}
		if len(bids) == 0 {
			return models.ErrNotFound
		}
		bid = bids[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// AddBid создает новое предложение по открытому лоту.
func (r *PostgresBidRepository) AddBid(ctx context.Context, lot *models.Lot, bid *models.Bid) error {
	err := r.retry.do(ctx, "add bid", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
			if err := lockTenderOfLot(ctx, tx, lot.ID); err != nil {
				return err
			}

			var status models.LotStatus
			err := tx.QueryRow(ctx, `
				UPDATE lot SET version = version + 1
				WHERE id = $1 AND version = $2
				RETURNING status`, lot.ID, lot.Version).Scan(&status)
			if err == pgx.ErrNoRows {
				return models.ErrVersionConflict
			}
			if err != nil {
				return err
			}
			if status != models.OpenLot {
				return models.ErrLotNotOpen
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO bid (id, lot_id, company_id, company_name, amount, submission_date, compliant,
				                 compliance_notes, solvency_score, administrative_score, selected, is_favorite)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, FALSE)`,
				bid.ID,
				lot.ID,
				bid.CompanyID,
				bid.CompanyName,
				bid.Amount,
				bid.SubmissionDate,
				bid.Compliant,
				bid.ComplianceNotes,
				bid.SolvencyScore,
				bid.AdministrativeScore)
			if isUniqueViolation(err, "bid_lot_company_key") {
				return models.ErrDuplicateBid
			}
			if err != nil {
				return err
			}

			if len(bid.LineItems) == 0 {
				return nil
			}
			batch := &pgx.Batch{}
			for i, item := range bid.LineItems {
				batch.Queue(`
					INSERT INTO bid_line_item (bid_id, position, designation, quantity, unit, price)
					VALUES ($1, $2, $3, $4::text::numeric, $5, $6)`,
					bid.ID, i, item.Designation, item.Quantity.String(), item.Unit, item.Price)
			}
			return tx.SendBatch(ctx, batch).Close()
		})
	})
	if err != nil {
		return err
	}
	lot.Version++
	return nil
}

// SaveLot сохраняет статус лота и флаги предложений с проверкой версии.
func (r *PostgresBidRepository) SaveLot(ctx context.Context, lot *models.Lot) error {
	if err := lot.CheckInvariants(); err != nil {
		return err
	}

	err := r.retry.do(ctx, "save lot", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
			if err := lockTenderOfLot(ctx, tx, lot.ID); err != nil {
				return err
			}

			tag, err := tx.Exec(ctx, `
				UPDATE lot SET status = $1, version = version + 1
				WHERE id = $2 AND version = $3`, lot.Status, lot.ID, lot.Version)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return models.ErrVersionConflict
			}

			// Сначала снимаем флаги: частичные уникальные индексы проверяются построчно.
			if _, err := tx.Exec(ctx, `UPDATE bid SET selected = FALSE, is_favorite = FALSE WHERE lot_id = $1`, lot.ID); err != nil {
				return err
			}

			batch := &pgx.Batch{}
			for _, b := range lot.Bids {
				batch.Queue(`
					UPDATE bid SET compliant = $1, compliance_notes = $2, selected = $3, is_favorite = $4
					WHERE id = $5 AND lot_id = $6`,
					b.Compliant, b.ComplianceNotes, b.Selected, b.IsFavorite, b.ID, lot.ID)
			}
			return tx.SendBatch(ctx, batch).Close()
		})
	})
	if err != nil {
		return err
	}
	lot.Version++
	return nil
}
