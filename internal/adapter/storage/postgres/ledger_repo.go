package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Append inserts a ledger entry within a database transaction. The unique
// index on (source, source_id) makes repeated settlement of the same sale
// a no-op: ON CONFLICT DO NOTHING reports zero rows affected and Append
// returns false.
func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) (bool, error) {
	query := `INSERT INTO ledger_entries (id, seller_id, currency, amount, direction, source, source_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source, source_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query,
		e.ID, e.SellerID, e.Currency, e.Amount, e.Direction, e.Source, e.SourceID, e.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert ledger entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExistsBySource reports whether an entry for this source record exists.
func (r *LedgerRepo) ExistsBySource(ctx context.Context, source domain.LedgerSource, sourceID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE source = $1 AND source_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, source, sourceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check ledger entry exists: %w", err)
	}
	return exists, nil
}

// List fetches ledger entries with filtering and pagination.
func (r *LedgerRepo) List(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIdx))
	args = append(args, params.SellerID)
	argIdx++

	if params.Currency != nil {
		conditions = append(conditions, fmt.Sprintf("currency = $%d", argIdx))
		args = append(args, *params.Currency)
		argIdx++
	}
	if params.Direction != nil {
		conditions = append(conditions, fmt.Sprintf("direction = $%d", argIdx))
		args = append(args, *params.Direction)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ledger_entries %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, seller_id, currency, amount, direction, source, source_id, created_at
		FROM ledger_entries %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.SellerID, &e.Currency, &e.Amount, &e.Direction, &e.Source, &e.SourceID, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, total, nil
}

// SumByDirection aggregates total credits and debits for one wallet.
func (r *LedgerRepo) SumByDirection(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (int64, int64, error) {
	query := `SELECT
		COALESCE(SUM(amount) FILTER (WHERE direction = 'CREDIT'), 0),
		COALESCE(SUM(amount) FILTER (WHERE direction = 'DEBIT'), 0)
		FROM ledger_entries WHERE seller_id = $1 AND currency = $2`

	var credits, debits int64
	if err := r.pool.QueryRow(ctx, query, sellerID, currency).Scan(&credits, &debits); err != nil {
		return 0, 0, fmt.Errorf("sum ledger entries: %w", err)
	}
	return credits, debits, nil
}
