package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/tender-portal/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// querier - общее подмножество *pgxpool.Pool и pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	lotColumns = `id, tender_id, name, budget, status, version, created_at`
	bidColumns = `id, lot_id, company_id, company_name, amount, submission_date, compliant, compliance_notes,
	              solvency_score, administrative_score, selected, is_favorite`
	accessColumns = `id, company_id, lot_id, status, request_date, decision_date`
)

func scanLot(row pgx.Row) (models.Lot, error) {
	var lot models.Lot
	err := row.Scan(
		&lot.ID,
		&lot.TenderID,
		&lot.Name,
		&lot.Budget,
		&lot.Status,
		&lot.Version,
		&lot.CreatedAt,
	)
	return lot, err
}

func scanBid(row pgx.Row) (models.Bid, error) {
	var bid models.Bid
	err := row.Scan(
		&bid.ID,
		&bid.LotID,
		&bid.CompanyID,
		&bid.CompanyName,
		&bid.Amount,
		&bid.SubmissionDate,
		&bid.Compliant,
		&bid.ComplianceNotes,
		&bid.SolvencyScore,
		&bid.AdministrativeScore,
		&bid.Selected,
		&bid.IsFavorite,
	)
	return bid, err
}

func scanAccessRequest(row pgx.Row) (models.AccessRequest, error) {
	var req models.AccessRequest
	err := row.Scan(
		&req.ID,
		&req.CompanyID,
		&req.LotID,
		&req.Status,
		&req.RequestDate,
		&req.DecisionDate,
	)
	return req, err
}

// loadLots загружает агрегаты лотов (предложения, строки смет, запросы доступа),
// отбирая лоты по значению column из ids.
func loadLots(ctx context.Context, q querier, column string, ids []string) ([]models.Lot, error) {
	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT %s FROM lot WHERE %s = ANY($1) ORDER BY created_at, id`, lotColumns, column), pq.Array(ids))
	if err != nil {
		return nil, err
	}
	lots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Lot, error) {
		return scanLot(row)
	})
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return lots, nil
	}

	lotIDs := make([]string, len(lots))
	index := make(map[string]int, len(lots))
	for i := range lots {
		lotIDs[i] = lots[i].ID
		index[lots[i].ID] = i
		lots[i].Bids = []models.Bid{}
	}

	bids, err := loadBids(ctx, q, "lot_id", lotIDs)
	if err != nil {
		return nil, err
	}
	for _, bid := range bids {
		i := index[bid.LotID]
		lots[i].Bids = append(lots[i].Bids, bid)
	}

	rows, err = q.Query(ctx, `SELECT `+accessColumns+` FROM access_request WHERE lot_id = ANY($1) ORDER BY request_date, id`, pq.Array(lotIDs))
	if err != nil {
		return nil, err
	}
	requests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AccessRequest, error) {
		return scanAccessRequest(row)
	})
	if err != nil {
		return nil, err
	}
	for _, req := range requests {
		i := index[req.LotID]
		lots[i].AccessRequests = append(lots[i].AccessRequests, req)
	}
	return lots, nil
}

// loadBids загружает предложения вместе со строками смет.
func loadBids(ctx context.Context, q querier, column string, ids []string) ([]models.Bid, error) {
	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT %s FROM bid WHERE %s = ANY($1) ORDER BY submission_date, id`, bidColumns, column), pq.Array(ids))
	if err != nil {
		return nil, err
	}
	bids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Bid, error) {
		return scanBid(row)
	})
	if err != nil || len(bids) == 0 {
		return bids, err
	}

	bidIDs := make([]string, len(bids))
	index := make(map[string]int, len(bids))
	for i := range bids {
		bidIDs[i] = bids[i].ID
		index[bids[i].ID] = i
	}

	rows, err = q.Query(ctx, `
		SELECT bid_id, designation, quantity::text, unit, price
		FROM bid_line_item WHERE bid_id = ANY($1) ORDER BY bid_id, position`, pq.Array(bidIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bidID    string
			quantity string
			item     models.LineItem
		)
		if err := rows.Scan(&bidID, &item.Designation, &quantity, &item.Unit, &item.Price); err != nil {
			return nil, err
		}
		if item.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("invalid quantity %q for bid %s: %w", quantity, bidID, err)
		}
		i := index[bidID]
		bids[i].LineItems = append(bids[i].LineItems, item)
	}
	return bids, rows.Err()
}

// lockTenderOfLot блокирует строку тендера на время транзакции, чтобы закрытие тендера
// не могло пройти между проверкой и записью лота.
func lockTenderOfLot(ctx context.Context, tx pgx.Tx, lotID string) error {
	var status string
	err := tx.QueryRow(ctx, `
		SELECT t.status FROM tender t JOIN lot l ON l.tender_id = t.id
		WHERE l.id = $1 FOR SHARE OF t`, lotID).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return models.ErrNotFound
		}
		return err
	}
	if models.TenderStatus(status) == models.ClosedTender {
		return models.ErrTenderClosed
	}
	return nil
}
