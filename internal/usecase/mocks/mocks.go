// Package mocks provides test doubles for the usecase interfaces.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Put seeds an account.
func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Email == email {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.LastBalanceUpdate = &updatedAt
	acc.UpdatedAt = updatedAt
	return nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.BalanceTransaction

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, transaction *domain.BalanceTransaction) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.BalanceTransaction, error)
	ListByAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceTransaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.BalanceTransaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, transaction *domain.BalanceTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transaction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[transaction.ID] = transaction
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.BalanceTransaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceTransaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transactions []*domain.BalanceTransaction
	for _, t := range m.transactions {
		if t.AccountID == accountID {
			transactions = append(transactions, t)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	if offset >= len(transactions) {
		return nil, nil
	}
	transactions = transactions[offset:]
	if limit < len(transactions) {
		transactions = transactions[:limit]
	}
	return transactions, nil
}

// All returns every stored transaction.
func (m *MockTransactionRepository) All() []*domain.BalanceTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.BalanceTransaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		result = append(result, t)
	}
	return result
}

// MockGiftCardRepository is a mock implementation of GiftCardRepository.
type MockGiftCardRepository struct {
	mu    sync.RWMutex
	cards map[string]*domain.GiftCard

	CreateFunc           func(ctx context.Context, card *domain.GiftCard) error
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.GiftCard, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, card *domain.GiftCard) error
}

func NewMockGiftCardRepository() *MockGiftCardRepository {
	return &MockGiftCardRepository{
		cards: make(map[string]*domain.GiftCard),
	}
}

// Put seeds a gift card.
func (m *MockGiftCardRepository) Put(card *domain.GiftCard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card
}

func (m *MockGiftCardRepository) Create(ctx context.Context, card *domain.GiftCard) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card
	return nil
}

func (m *MockGiftCardRepository) GetByID(ctx context.Context, id string) (*domain.GiftCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if card, ok := m.cards[id]; ok {
		return card, nil
	}
	return nil, domain.ErrGiftCardNotFound
}

func (m *MockGiftCardRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.GiftCard, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockGiftCardRepository) GetByVerificationTokenForUpdate(ctx context.Context, tx usecase.Transaction, token string) (*domain.GiftCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, card := range m.cards {
		if card.VerificationToken == token {
			return card, nil
		}
	}
	return nil, domain.ErrGiftCardNotFound
}

func (m *MockGiftCardRepository) Update(ctx context.Context, tx usecase.Transaction, card *domain.GiftCard) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[card.ID]; !ok {
		return domain.ErrGiftCardNotFound
	}
	m.cards[card.ID] = card
	return nil
}

func (m *MockGiftCardRepository) ListActiveUnlocked(ctx context.Context) ([]*domain.GiftCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cards []*domain.GiftCard
	for _, card := range m.cards {
		if card.Status == domain.GiftCardStatusActive && !card.IsLocked {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (m *MockGiftCardRepository) ListExpiredActive(ctx context.Context, before time.Time) ([]*domain.GiftCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cards []*domain.GiftCard
	for _, card := range m.cards {
		if card.Status == domain.GiftCardStatusActive && card.ExpirationDate.Before(before) {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (m *MockGiftCardRepository) ListByPurchaserEmail(ctx context.Context, email string) ([]*domain.GiftCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cards []*domain.GiftCard
	for _, card := range m.cards {
		if card.PurchaserEmail == email {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (m *MockGiftCardRepository) ListByRecipientEmail(ctx context.Context, email string) ([]*domain.GiftCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cards []*domain.GiftCard
	for _, card := range m.cards {
		if card.RecipientEmail == email {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	mu        sync.Mutex
	Commits   int
	Rollbacks int

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	m.mu.Lock()
	m.Commits++
	m.mu.Unlock()
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	m.mu.Lock()
	m.Rollbacks++
	m.mu.Unlock()
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockCodeHasher is a deterministic stand-in for the bcrypt hasher.
type MockCodeHasher struct{}

func NewMockCodeHasher() *MockCodeHasher {
	return &MockCodeHasher{}
}

func (m *MockCodeHasher) Hash(code string) (string, error) {
	return "hashed:" + code, nil
}

func (m *MockCodeHasher) Verify(hash, code string) bool {
	return strings.TrimPrefix(hash, "hashed:") == code
}

// MockNotifier records notification calls.
type MockNotifier struct {
	mu    sync.Mutex
	Calls []string

	FailAll bool
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) record(kind string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, kind)
	m.mu.Unlock()
	if m.FailAll {
		return fmt.Errorf("notification failed")
	}
	return nil
}

// CallCount returns the number of recorded calls of a kind.
func (m *MockNotifier) CallCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.Calls {
		if c == kind {
			count++
		}
	}
	return count
}

func (m *MockNotifier) NotifyPurchase(ctx context.Context, card *domain.GiftCard, code string) error {
	return m.record("purchase")
}

func (m *MockNotifier) NotifyReceived(ctx context.Context, card *domain.GiftCard, code string) error {
	return m.record("received")
}

func (m *MockNotifier) NotifyRedeemed(ctx context.Context, card *domain.GiftCard, redeemerEmail string) error {
	return m.record("redeemed")
}

func (m *MockNotifier) NotifyRedeemedToPurchaser(ctx context.Context, card *domain.GiftCard) error {
	return m.record("redeemed_purchaser")
}

func (m *MockNotifier) NotifyServiceUsed(ctx context.Context, card *domain.GiftCard, to string) error {
	return m.record("service_used")
}

func (m *MockNotifier) NotifyExpired(ctx context.Context, card *domain.GiftCard, to string) error {
	return m.record("expired")
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
