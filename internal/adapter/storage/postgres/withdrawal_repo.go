package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	pool Pool
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(pool Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

const withdrawalColumns = `id, seller_id, currency, requested_amount, fee_amount, status, rejection_reason, created_at, updated_at`

// Create inserts a new withdrawal request within a database transaction.
// Creation always happens under the same transaction that places the
// wallet hold.
func (r *WithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	query := `INSERT INTO withdrawal_requests (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.SellerID, w.Currency, w.RequestedAmount, w.FeeAmount,
		w.Status, w.RejectionReason, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal request: %w", err)
	}
	return nil
}

// GetByID fetches a withdrawal request by UUID (non-locking).
func (r *WithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`
	return r.scanWithdrawal(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a withdrawal request with pessimistic locking.
// This MUST be called within a transaction.
func (r *WithdrawalRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`
	return r.scanWithdrawal(tx.QueryRow(ctx, query, id))
}

// UpdateStatus transitions a request within a database transaction.
func (r *WithdrawalRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.WithdrawalStatus, rejectionReason *string) error {
	query := `UPDATE withdrawal_requests SET status = $1, rejection_reason = $2, updated_at = $3 WHERE id = $4`

	tag, err := tx.Exec(ctx, query, status, rejectionReason, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update withdrawal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal request not found: %s", id)
	}
	return nil
}

// List fetches withdrawal requests with filtering and pagination.
func (r *WithdrawalRepo) List(ctx context.Context, params ports.WithdrawalListParams) ([]domain.WithdrawalRequest, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIdx))
		args = append(args, *params.SellerID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Currency != nil {
		conditions = append(conditions, fmt.Sprintf("currency = $%d", argIdx))
		args = append(args, *params.Currency)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM withdrawal_requests %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count withdrawal requests: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+withdrawalColumns+` FROM withdrawal_requests %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list withdrawal requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.WithdrawalRequest
	for rows.Next() {
		var w domain.WithdrawalRequest
		if err := rows.Scan(
			&w.ID, &w.SellerID, &w.Currency, &w.RequestedAmount, &w.FeeAmount,
			&w.Status, &w.RejectionReason, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan withdrawal request: %w", err)
		}
		requests = append(requests, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate withdrawal requests: %w", err)
	}
	return requests, total, nil
}

func (r *WithdrawalRepo) scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	w := &domain.WithdrawalRequest{}
	err := row.Scan(
		&w.ID, &w.SellerID, &w.Currency, &w.RequestedAmount, &w.FeeAmount,
		&w.Status, &w.RejectionReason, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan withdrawal request: %w", err)
	}
	return w, nil
}
