package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"gopay/internal/domain"
	"gopay/internal/mpesa"
	"gopay/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount int32
	CreditCallCount int32

	// Error injection
	CreateError error
	CreditError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.drivers)), nil
}

func (m *MockDriverRepository) Credit(ctx context.Context, id string, amount float64) error {
	atomic.AddInt32(&m.CreditCallCount, 1)
	if m.CreditError != nil {
		return m.CreditError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Balance += amount
	driver.TotalEarnings += amount
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK TRANSACTION REPOSITORY
// ──────────────────────────────────────────────

// MockTransactionRepository is a mock implementation of TransactionRepository.
// It enforces checkout request ID uniqueness the way the database index does.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	byCheckout   map[string]string // checkoutRequestID -> transactionID

	// Counters for verification
	CreateCallCount int32
	AttachCallCount int32

	// Error injection
	CreateError error
	GetError    error
	MarkError   error
}

// NewMockTransactionRepository creates a new mock transaction repository.
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
		byCheckout:   make(map[string]string),
	}
}

// AddTransaction adds a transaction to the mock repository.
func (m *MockTransactionRepository) AddTransaction(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
	if txn.CheckoutRequestID != "" {
		m.byCheckout[txn.CheckoutRequestID] = txn.ID
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *txn
	return &copy, nil
}

func (m *MockTransactionRepository) GetByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byCheckout[checkoutRequestID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *m.transactions[id]
	return &copy, nil
}

func (m *MockTransactionRepository) GetByDriverID(ctx context.Context, driverID string, limit int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Transaction
	for _, t := range m.transactions {
		if t.DriverID == driverID && len(result) < limit {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTransactionRepository) GetAll(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Transaction
	for _, t := range m.transactions {
		if len(result) < limit {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTransactionRepository) AttachCheckoutID(ctx context.Context, id, checkoutRequestID string) error {
	atomic.AddInt32(&m.AttachCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if txn.CheckoutRequestID != "" {
		return repository.ErrAlreadyCorrelated
	}
	if _, taken := m.byCheckout[checkoutRequestID]; taken {
		return repository.ErrAlreadyCorrelated
	}
	txn.CheckoutRequestID = checkoutRequestID
	m.byCheckout[checkoutRequestID] = id
	return nil
}

func (m *MockTransactionRepository) MarkTerminalIfPending(ctx context.Context, id string, status domain.TransactionStatus, receipt string) (bool, error) {
	if m.MarkError != nil {
		return false, m.MarkError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return false, nil
	}
	if txn.Status != domain.TransactionStatusPending {
		return false, nil
	}
	txn.Status = status
	if receipt != "" {
		txn.MpesaReceipt = receipt
	}
	return true, nil
}

// GetTransaction returns transaction for test assertions.
func (m *MockTransactionRepository) GetTransaction(id string) *domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transactions[id]
}

// CountTransactions returns the number of transactions.
func (m *MockTransactionRepository) CountTransactions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transactions)
}

// ──────────────────────────────────────────────
// MOCK STATS REPOSITORY
// ──────────────────────────────────────────────

// MockStatsRepository is a mock implementation of StatsRepository.
type MockStatsRepository struct {
	mu    sync.RWMutex
	stats domain.AdminStats

	// Counters for verification
	IncrementCallCount int32

	// Error injection
	IncrementError error
}

// NewMockStatsRepository creates a new mock stats repository.
func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{}
}

func (m *MockStatsRepository) Get(ctx context.Context) (*domain.AdminStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	copy := m.stats
	return &copy, nil
}

func (m *MockStatsRepository) Increment(ctx context.Context, countDelta int64, revenueDelta, feeDelta float64) error {
	atomic.AddInt32(&m.IncrementCallCount, 1)
	if m.IncrementError != nil {
		return m.IncrementError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.TotalTransactions += countDelta
	m.stats.TotalRevenue += revenueDelta
	m.stats.TotalPlatformFees += feeDelta
	return nil
}

// GetStats returns stats for test assertions.
func (m *MockStatsRepository) GetStats() domain.AdminStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// ──────────────────────────────────────────────
// MOCK LEDGER
// ──────────────────────────────────────────────

// MockLedger is a mock implementation of repository.Ledger. The conditional
// transition in the transaction repository is the arbiter, so the credit
// and stats increment apply exactly once no matter how many callers race.
type MockLedger struct {
	TransactionRepo *MockTransactionRepository
	DriverRepo      *MockDriverRepository
	StatsRepo       *MockStatsRepository

	// Error injection: fail the whole unit, applying nothing.
	CompleteError error

	// Counters for verification
	CompleteCallCount int32
}

// NewMockLedger creates a mock ledger over the given mock repositories.
func NewMockLedger(txnRepo *MockTransactionRepository, driverRepo *MockDriverRepository, statsRepo *MockStatsRepository) *MockLedger {
	return &MockLedger{
		TransactionRepo: txnRepo,
		DriverRepo:      driverRepo,
		StatsRepo:       statsRepo,
	}
}

func (l *MockLedger) Complete(ctx context.Context, transactionID, receipt string) (bool, error) {
	atomic.AddInt32(&l.CompleteCallCount, 1)
	if l.CompleteError != nil {
		return false, l.CompleteError
	}

	transitioned, err := l.TransactionRepo.MarkTerminalIfPending(ctx, transactionID, domain.TransactionStatusCompleted, receipt)
	if err != nil || !transitioned {
		return false, err
	}

	txn := l.TransactionRepo.GetTransaction(transactionID)
	if err := l.DriverRepo.Credit(ctx, txn.DriverID, txn.DriverAmount); err != nil {
		return false, err
	}
	if err := l.StatsRepo.Increment(ctx, 1, txn.AmountPaid, txn.PlatformFee); err != nil {
		return false, err
	}

	return true, nil
}

// ──────────────────────────────────────────────
// MOCK GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a mock implementation of the payment gateway.
type MockGateway struct {
	mu sync.Mutex

	// CheckoutID is returned from STKPush when PushError is nil.
	CheckoutID string

	// Status is returned from QueryStatus when QueryError is nil.
	Status *mpesa.StatusResult

	// Error injection
	PushError  error
	QueryError error

	// Counters for verification
	PushCallCount  int32
	QueryCallCount int32
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{CheckoutID: "ws_CO_mock"}
}

func (g *MockGateway) STKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (string, error) {
	atomic.AddInt32(&g.PushCallCount, 1)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.PushError != nil {
		return "", g.PushError
	}
	return g.CheckoutID, nil
}

func (g *MockGateway) QueryStatus(ctx context.Context, checkoutRequestID string) (*mpesa.StatusResult, error) {
	atomic.AddInt32(&g.QueryCallCount, 1)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.QueryError != nil {
		return nil, g.QueryError
	}
	if g.Status == nil {
		return &mpesa.StatusResult{Pending: true}, nil
	}
	status := *g.Status
	return &status, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory mock of the Redis lock store.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Counters for verification
	AcquireCallCount int32
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquirePushLock(ctx context.Context, transactionID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[transactionID] {
		return false, nil
	}
	m.locks[transactionID] = true
	return true, nil
}

func (m *MockLockStore) ReleasePushLock(ctx context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, transactionID)
	return nil
}
