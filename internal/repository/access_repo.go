package repository

import (
	"context"
	"time"

	"github.com/senyabanana/tender-portal/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccessRepository - интерфейс для работы с запросами доступа к документам лота.
type AccessRepository interface {
	CreateAccessRequest(ctx context.Context, req *models.AccessRequest) error
	GetAccessRequest(ctx context.Context, requestId string) (*models.AccessRequest, error)
	FindAccessRequest(ctx context.Context, companyId, lotId string) (*models.AccessRequest, error)
	ListAccessRequests(ctx context.Context, lotId string) ([]models.AccessRequest, error)
	// DecideAccessRequest переводит запрос из pending в итоговый статус; первое решение побеждает.
	DecideAccessRequest(ctx context.Context, requestId string, outcome models.AccessStatus, decidedAt time.Time) (*models.AccessRequest, error)
}

// PostgresAccessRepository - реализация AccessRepository для базы данных.
type PostgresAccessRepository struct {
	DB    *pgxpool.Pool
	retry retrier
}

// NewPostgresAccessRepository создает новый экземпляр PostgresAccessRepository.
func NewPostgresAccessRepository(db *pgxpool.Pool, retries int) *PostgresAccessRepository {
	return &PostgresAccessRepository{DB: db, retry: newRetrier(retries)}
}

// CreateAccessRequest сохраняет новый запрос доступа.
func (r *PostgresAccessRepository) CreateAccessRequest(ctx context.Context, req *models.AccessRequest) error {
	return r.retry.do(ctx, "create access request", func(ctx context.Context) error {
		_, err := r.DB.Exec(ctx, `
			INSERT INTO access_request (id, company_id, lot_id, status, request_date)
			VALUES ($1, $2, $3, $4, $5)`,
			req.ID,
			req.CompanyID,
			req.LotID,
			req.Status,
			req.RequestDate)
		if isUniqueViolation(err, "access_request_company_lot_key") {
			return &models.DuplicateRequestError{CompanyID: req.CompanyID, LotID: req.LotID}
		}
		return err
	})
}

// GetAccessRequest возвращает запрос доступа по ID.
func (r *PostgresAccessRepository) GetAccessRequest(ctx context.Context, requestId string) (*models.AccessRequest, error) {
	return r.queryOne(ctx, "get access request", `SELECT `+accessColumns+` FROM access_request WHERE id = $1`, requestId)
}

// FindAccessRequest возвращает запрос доступа компании к лоту.
func (r *PostgresAccessRepository) FindAccessRequest(ctx context.Context, companyId, lotId string) (*models.AccessRequest, error) {
	return r.queryOne(ctx, "find access request",
		`SELECT `+accessColumns+` FROM access_request WHERE company_id = $1 AND lot_id = $2`, companyId, lotId)
}

// ListAccessRequests возвращает все запросы доступа к лоту.
func (r *PostgresAccessRepository) ListAccessRequests(ctx context.Context, lotId string) ([]models.AccessRequest, error) {
	var requests []models.AccessRequest
	err := r.retry.do(ctx, "list access requests", func(ctx context.Context) error {
		rows, err := r.DB.Query(ctx, `SELECT `+accessColumns+` FROM access_request WHERE lot_id = $1 ORDER BY request_date, id`, lotId)
		if err != nil {
			return err
		}
		requests, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AccessRequest, error) {
			return scanAccessRequest(row)
		})
		return err
	})
	return requests, err
}

// DecideAccessRequest фиксирует решение по запросу доступа.
func (r *PostgresAccessRepository) DecideAccessRequest(ctx context.Context, requestId string, outcome models.AccessStatus, decidedAt time.Time) (*models.AccessRequest, error) {
	var decided models.AccessRequest
	err := r.retry.do(ctx, "decide access request", func(ctx context.Context) error {
		var err error
		decided, err = scanAccessRequest(r.DB.QueryRow(ctx, `
			UPDATE access_request SET status = $1, decision_date = $2
			WHERE id = $3 AND status = $4
			RETURNING `+accessColumns,
			outcome, decidedAt, requestId, models.PendingAccess))
		if err != pgx.ErrNoRows {
			return err
		}

		current, err := scanAccessRequest(r.DB.QueryRow(ctx, `SELECT `+accessColumns+` FROM access_request WHERE id = $1`, requestId))
		if err == pgx.ErrNoRows {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}
		return &models.AlreadyDecidedError{RequestID: requestId, Status: current.Status}
	})
	if err != nil {
		return nil, err
	}
	return &decided, nil
}

func (r *PostgresAccessRepository) queryOne(ctx context.Context, op, query string, args ...any) (*models.AccessRequest, error) {
	var req models.AccessRequest
	err := r.retry.do(ctx, op, func(ctx context.Context) error {
		var err error
		req, err = scanAccessRequest(r.DB.QueryRow(ctx, query, args...))
		if err == pgx.ErrNoRows {
			return models.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}
