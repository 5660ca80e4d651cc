package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/domain"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) CreateInTx(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if existing.SellerID == w.SellerID && existing.Currency == w.Currency {
			return fmt.Errorf("wallet already exists for seller %s currency %s", w.SellerID, w.Currency)
		}
	}
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetBySellerID(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.SellerID == sellerID && w.Currency == currency {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

// GetBySellerIDForUpdate delegates to the plain read; row-level exclusivity
// comes from the transactor, which holds a process-wide lock for the
// lifetime of the transaction.
func (r *inMemoryWalletRepo) GetBySellerIDForUpdate(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	return r.GetBySellerID(ctx, sellerID, currency)
}

func (r *inMemoryWalletRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Wallet
	for _, w := range r.wallets {
		if w.SellerID == sellerID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (r *inMemoryWalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance, held int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet %s not found", walletID)
	}
	w.Balance = balance
	w.Held = held
	w.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Withdrawal Repo ---

type inMemoryWithdrawalRepo struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*domain.WithdrawalRequest
}

func newInMemoryWithdrawalRepo() *inMemoryWithdrawalRepo {
	return &inMemoryWithdrawalRepo{requests: make(map[uuid.UUID]*domain.WithdrawalRequest)}
}

func (r *inMemoryWithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.requests[w.ID] = &cp
	return nil
}

func (r *inMemoryWithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWithdrawalRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryWithdrawalRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.WithdrawalStatus, rejectionReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.requests[id]
	if !ok {
		return fmt.Errorf("withdrawal request %s not found", id)
	}
	w.Status = status
	w.RejectionReason = rejectionReason
	w.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryWithdrawalRepo) List(ctx context.Context, params ports.WithdrawalListParams) ([]domain.WithdrawalRequest, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []domain.WithdrawalRequest
	for _, w := range r.requests {
		if params.SellerID != nil && w.SellerID != *params.SellerID {
			continue
		}
		if params.Status != nil && w.Status != *params.Status {
			continue
		}
		if params.Currency != nil && w.Currency != *params.Currency {
			continue
		}
		matched = append(matched, *w)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	return paginate(matched, params.Page, params.PageSize), total, nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu       sync.RWMutex
	entries  []domain.LedgerEntry
	bySource map[string]struct{}
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{bySource: make(map[string]struct{})}
}

func sourceKey(source domain.LedgerSource, sourceID uuid.UUID) string {
	return string(source) + "|" + sourceID.String()
}

func (r *inMemoryLedgerRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sourceKey(e.Source, e.SourceID)
	if _, ok := r.bySource[key]; ok {
		return false, nil
	}
	r.bySource[key] = struct{}{}
	r.entries = append(r.entries, *e)
	return true, nil
}

func (r *inMemoryLedgerRepo) ExistsBySource(ctx context.Context, source domain.LedgerSource, sourceID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bySource[sourceKey(source, sourceID)]
	return ok, nil
}

func (r *inMemoryLedgerRepo) List(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []domain.LedgerEntry
	for _, e := range r.entries {
		if e.SellerID != params.SellerID {
			continue
		}
		if params.Currency != nil && e.Currency != *params.Currency {
			continue
		}
		if params.Direction != nil && e.Direction != *params.Direction {
			continue
		}
		if params.From != nil && e.CreatedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && e.CreatedAt.Unix() > *params.To {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	return paginate(matched, params.Page, params.PageSize), total, nil
}

func (r *inMemoryLedgerRepo) SumByDirection(ctx context.Context, sellerID uuid.UUID, currency domain.Currency) (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var credits, debits int64
	for _, e := range r.entries {
		if e.SellerID != sellerID || e.Currency != currency {
			continue
		}
		switch e.Direction {
		case domain.LedgerDirectionCredit:
			credits += e.Amount
		case domain.LedgerDirectionDebit:
			debits += e.Amount
		}
	}
	return credits, debits, nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = len(items)
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// --- In-Memory Policy Repo ---

type inMemoryPolicyRepo struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]*domain.FeePolicy
}

func newInMemoryPolicyRepo() *inMemoryPolicyRepo {
	return &inMemoryPolicyRepo{plans: make(map[uuid.UUID]*domain.FeePolicy)}
}

func (r *inMemoryPolicyRepo) GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.FeePolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plans[sellerID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPolicyRepo) setPlan(sellerID uuid.UUID, p domain.FeePolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[sellerID] = &p
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transactions with a process-wide mutex
// held from Begin until Commit or Rollback. This reproduces in-process
// what SELECT ... FOR UPDATE gives the services against PostgreSQL, so
// the concurrency tests can assert exact outcomes.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: &t.mu}, nil
}

// memTx is a no-op pgx.Tx that releases the transactor lock exactly once,
// on whichever of Commit or Rollback runs first.
type memTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *memTx) done() {
	t.once.Do(t.release.Unlock)
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
