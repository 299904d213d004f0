package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"balance-topup-service/internal/core/domain"
	"balance-topup-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Seller Repo ---

type inMemorySellerRepo struct {
	mu      sync.RWMutex
	sellers map[uuid.UUID]*domain.Seller
}

func newInMemorySellerRepo() *inMemorySellerRepo {
	return &inMemorySellerRepo{sellers: make(map[uuid.UUID]*domain.Seller)}
}

func (r *inMemorySellerRepo) Create(ctx context.Context, s *domain.Seller) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sellers {
		if existing.Username == s.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *s
	r.sellers[s.ID] = &cp
	return nil
}

func (r *inMemorySellerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sellers[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *inMemorySellerRepo) GetByUsername(ctx context.Context, username string) (*domain.Seller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sellers {
		if s.Username == username {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Payment Method Repo ---

type inMemoryMethodRepo struct {
	mu      sync.RWMutex
	methods map[uuid.UUID]*domain.BackupPaymentMethod
}

func newInMemoryMethodRepo() *inMemoryMethodRepo {
	return &inMemoryMethodRepo{methods: make(map[uuid.UUID]*domain.BackupPaymentMethod)}
}

func (r *inMemoryMethodRepo) Create(ctx context.Context, tx pgx.Tx, m *domain.BackupPaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.methods[m.ID] = &cp
	return nil
}

func (r *inMemoryMethodRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BackupPaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMethodRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.BackupPaymentMethod, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryMethodRepo) GetDefault(ctx context.Context, sellerID uuid.UUID) (*domain.BackupPaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.methods {
		if m.SellerID == sellerID && m.IsDefault && m.DeletedAt == nil {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMethodRepo) ListActive(ctx context.Context, sellerID uuid.UUID) ([]domain.BackupPaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.BackupPaymentMethod
	for _, m := range r.methods {
		if m.SellerID == sellerID && m.DeletedAt == nil {
			result = append(result, *m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryMethodRepo) CountActive(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, m := range r.methods {
		if m.SellerID == sellerID && m.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *inMemoryMethodRepo) ClearDefault(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.methods {
		if m.SellerID == sellerID {
			m.IsDefault = false
		}
	}
	return nil
}

func (r *inMemoryMethodRepo) SetDefault(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.methods[id]
	if !ok {
		return fmt.Errorf("payment method not found")
	}
	m.IsDefault = true
	return nil
}

func (r *inMemoryMethodRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.methods[id]
	if !ok || m.DeletedAt != nil {
		return fmt.Errorf("payment method not found")
	}
	m.DeletedAt = &deletedAt
	m.IsDefault = false
	return nil
}

func (r *inMemoryMethodRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.methods, id)
	return nil
}

// --- In-Memory TopUp Charge Repo ---

type inMemoryChargeRepo struct {
	mu      sync.RWMutex
	charges map[uuid.UUID]*domain.TopUpCharge
}

func newInMemoryChargeRepo() *inMemoryChargeRepo {
	return &inMemoryChargeRepo{charges: make(map[uuid.UUID]*domain.TopUpCharge)}
}

func (r *inMemoryChargeRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.TopUpCharge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.charges[c.ID] = &cp
	return nil
}

func (r *inMemoryChargeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TopUpCharge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.charges[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryChargeRepo) MarkSuccessful(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayChargeID string, processedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.charges[id]
	if !ok || c.Status != domain.TopUpStatusPending {
		return fmt.Errorf("charge not pending")
	}
	c.Status = domain.TopUpStatusSuccessful
	c.GatewayChargeID = &gatewayChargeID
	c.ProcessedAt = &processedAt
	return nil
}

func (r *inMemoryChargeRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, processedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.charges[id]
	if !ok || c.Status != domain.TopUpStatusPending {
		return fmt.Errorf("charge not pending")
	}
	c.Status = domain.TopUpStatusFailed
	c.ErrorMessage = &errorMessage
	c.ProcessedAt = &processedAt
	return nil
}

func (r *inMemoryChargeRepo) CountByMethod(ctx context.Context, methodID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, c := range r.charges {
		if c.PaymentMethodID == methodID {
			n++
		}
	}
	return n, nil
}

func (r *inMemoryChargeRepo) List(ctx context.Context, params ports.TopUpListParams) ([]domain.TopUpCharge, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.TopUpCharge
	for _, c := range r.charges {
		if c.SellerID != params.SellerID {
			continue
		}
		if params.Status != nil && c.Status != *params.Status {
			continue
		}
		if params.From != nil && c.CreatedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && c.CreatedAt.Unix() > *params.To {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))

	// Simple pagination
	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.TopUpCharge{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryChargeRepo) GetStats(ctx context.Context, sellerID uuid.UUID) (*ports.TopUpStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.TopUpStats{}
	for _, c := range r.charges {
		if c.SellerID != sellerID {
			continue
		}
		stats.TotalCharges++
		switch c.Status {
		case domain.TopUpStatusSuccessful:
			stats.Successful++
			stats.TotalLoaded += c.Amount
		case domain.TopUpStatusFailed:
			stats.Failed++
		case domain.TopUpStatusPending:
			stats.Pending++
		}
	}
	return stats, nil
}

func (r *inMemoryChargeRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.TopUpCharge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.TopUpCharge
	for _, c := range r.charges {
		if c.Status == domain.TopUpStatusPending && c.CreatedAt.Before(olderThan) {
			result = append(result, *c)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *inMemoryChargeRepo) ListFailedLinkedToRefunds(ctx context.Context, since time.Time) ([]domain.TopUpCharge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.TopUpCharge
	for _, c := range r.charges {
		if c.Status == domain.TopUpStatusFailed && c.RefundID != nil && c.ProcessedAt != nil && !c.ProcessedAt.Before(since) {
			result = append(result, *c)
		}
	}
	return result, nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.TopUpChargeID == e.TopUpChargeID {
			return fmt.Errorf("duplicate ledger entry for charge")
		}
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *inMemoryLedgerRepo) SumAvailable(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum int64
	for _, e := range r.entries {
		if e.SellerID == sellerID {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (r *inMemoryLedgerRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.LedgerEntry
	for _, e := range r.entries {
		if e.SellerID == sellerID {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu   sync.RWMutex
	logs map[string]*domain.IdempotencyLog
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{logs: make(map[string]*domain.IdempotencyLog)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[log.Key]; ok {
		return fmt.Errorf("idempotency key already exists: %s", log.Key)
	}
	r.logs[log.Key] = log
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[key]
	if !ok {
		return nil, nil
	}
	return l, nil
}

// --- Fake Payment Gateway ---

// fakeGateway simulates the card processor. Tokens listed in declines
// produce card-declined errors on charge.
type fakeGateway struct {
	mu        sync.Mutex
	customers int
	attached  map[string]string // token -> customerID
	declines  map[string]bool   // token -> decline on charge
	charges   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		attached: make(map[string]string),
		declines: make(map[string]bool),
	}
}

func (g *fakeGateway) declineToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.declines[token] = true
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customers++
	return fmt.Sprintf("cus_fake%03d", g.customers), nil
}

func (g *fakeGateway) GetPaymentMethod(ctx context.Context, token string) (*ports.GatewayPaymentMethod, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &ports.GatewayPaymentMethod{
		Token:      token,
		CustomerID: g.attached[token],
		Brand:      "Visa",
		Last4:      "4242",
		ExpMonth:   12,
		ExpYear:    time.Now().Year() + 3,
	}, nil
}

func (g *fakeGateway) AttachPaymentMethod(ctx context.Context, token string, customerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attached[token] = customerID
	return nil
}

func (g *fakeGateway) DetachPaymentMethod(ctx context.Context, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attached, token)
	return nil
}

func (g *fakeGateway) CreateOffSessionCharge(ctx context.Context, req ports.OffSessionChargeRequest) (*ports.GatewayCharge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.declines[req.PaymentMethodToken] {
		return nil, &ports.CardDeclinedError{Code: "insufficient_funds", Message: "Your card has insufficient funds."}
	}
	g.charges++
	return &ports.GatewayCharge{
		ID:     fmt.Sprintf("pi_fake%03d", g.charges),
		Status: "succeeded",
	}, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
