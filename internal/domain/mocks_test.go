package domain_test

import (
	"context"
	"sync"

	"github.com/finbank/ledger-service/internal/domain"
)

// memStore is an in-memory stand-in for the ledger store shared by the mock
// repositories. A single mutex guards all state.
type memStore struct {
	mu            sync.Mutex
	accounts      map[int64]*domain.Account
	accountNums   map[string]int64
	transactions  []*domain.Transaction
	references    map[string]bool
	users         map[int64]*domain.User
	nextAccountID int64
	nextTxID      int64
}

func newMemStore() *memStore {
	return &memStore{
		accounts:    make(map[int64]*domain.Account),
		accountNums: make(map[string]int64),
		references:  make(map[string]bool),
		users:       make(map[int64]*domain.User),
	}
}

func (s *memStore) addUser(id int64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = &domain.User{ID: id, Username: username}
}

// snapshot captures the full store state so the mock transaction manager can
// roll back on error.
func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := newMemStore()
	snap.nextAccountID = s.nextAccountID
	snap.nextTxID = s.nextTxID
	for id, a := range s.accounts {
		copied := *a
		snap.accounts[id] = &copied
	}
	for num, id := range s.accountNums {
		snap.accountNums[num] = id
	}
	for _, t := range s.transactions {
		copied := *t
		snap.transactions = append(snap.transactions, &copied)
	}
	for ref := range s.references {
		snap.references[ref] = true
	}
	for id, u := range s.users {
		copied := *u
		snap.users[id] = &copied
	}
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = snap.accounts
	s.accountNums = snap.accountNums
	s.transactions = snap.transactions
	s.references = snap.references
	s.users = snap.users
	s.nextAccountID = snap.nextAccountID
	s.nextTxID = snap.nextTxID
}

// memAccounts implements domain.AccountRepository.
type memAccounts struct {
	s *memStore
}

func (r *memAccounts) Create(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.accountNums[account.AccountNumber]; exists {
		return domain.ErrDuplicateAccountNumber
	}
	r.s.nextAccountID++
	account.ID = r.s.nextAccountID
	copied := *account
	r.s.accounts[account.ID] = &copied
	r.s.accountNums[account.AccountNumber] = account.ID
	return nil
}

func (r *memAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	account, ok := r.s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *memAccounts) GetByUser(_ context.Context, userID int64) ([]*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var accounts []*domain.Account
	for id := int64(1); id <= r.s.nextAccountID; id++ {
		if account, ok := r.s.accounts[id]; ok && account.UserID == userID {
			copied := *account
			accounts = append(accounts, &copied)
		}
	}
	return accounts, nil
}

func (r *memAccounts) Lock(ctx context.Context, id int64) (*domain.Account, error) {
	// Row locking is modeled by the transaction manager's serialization.
	return r.GetByID(ctx, id)
}

func (r *memAccounts) UpdateBalance(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	stored.Balance = account.Balance
	return nil
}

// memTransactions implements domain.TransactionRepository.
type memTransactions struct {
	s *memStore
}

func (r *memTransactions) Create(_ context.Context, transaction *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.references[transaction.ReferenceID] {
		return domain.ErrDuplicateReference
	}
	r.s.nextTxID++
	transaction.ID = r.s.nextTxID
	copied := *transaction
	r.s.transactions = append(r.s.transactions, &copied)
	r.s.references[transaction.ReferenceID] = true
	return nil
}

func (r *memTransactions) ReferenceExists(_ context.Context, referenceID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.references[referenceID], nil
}

func (r *memTransactions) ListByUser(_ context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var transactions []*domain.Transaction
	for i := len(r.s.transactions) - 1; i >= 0 && len(transactions) < limit; i-- {
		if r.s.transactions[i].UserID == userID {
			copied := *r.s.transactions[i]
			transactions = append(transactions, &copied)
		}
	}
	return transactions, nil
}

func (r *memTransactions) ListByAccount(_ context.Context, accountID int64, limit int) ([]*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var transactions []*domain.Transaction
	for i := len(r.s.transactions) - 1; i >= 0 && len(transactions) < limit; i-- {
		if r.s.transactions[i].AccountID == accountID {
			copied := *r.s.transactions[i]
			transactions = append(transactions, &copied)
		}
	}
	return transactions, nil
}

// memUsers implements domain.UserRepository.
type memUsers struct {
	s *memStore
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, user := range r.s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrRecipientNotFound
}

// memTxManager implements domain.TransactionManager. Units of work are
// serialized by a mutex; on error the store is restored from a snapshot so
// partial writes never survive, mirroring a database rollback.
type memTxManager struct {
	s  *memStore
	mu sync.Mutex
}

func (m *memTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.s.snapshot()
	if err := fn(ctx); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

// seqRefs is a ReferenceGenerator returning a scripted sequence of values,
// cycling on the last one.
type seqRefs struct {
	mu       sync.Mutex
	numbers  []string
	refs     []string
	numIndex int
	refIndex int
}

func (g *seqRefs) AccountNumber() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.numbers[g.numIndex]
	if g.numIndex < len(g.numbers)-1 {
		g.numIndex++
	}
	return n, nil
}

func (g *seqRefs) TransactionReference() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.refs[g.refIndex]
	if g.refIndex < len(g.refs)-1 {
		g.refIndex++
	}
	return r, nil
}

// ledgerFixture wires the services against the in-memory store.
type ledgerFixture struct {
	store        *memStore
	accounts     *domain.AccountService
	transactions *domain.TransactionService
	transfers    *domain.TransferService
}

func newLedgerFixture() *ledgerFixture {
	return newLedgerFixtureWithRefs(domain.RandomReferenceGenerator{})
}

func newLedgerFixtureWithRefs(refs domain.ReferenceGenerator) *ledgerFixture {
	store := newMemStore()
	accountRepo := &memAccounts{s: store}
	transactionRepo := &memTransactions{s: store}
	userRepo := &memUsers{s: store}
	txManager := &memTxManager{s: store}

	return &ledgerFixture{
		store:        store,
		accounts:     domain.NewAccountService(accountRepo, refs),
		transactions: domain.NewTransactionService(accountRepo, transactionRepo, txManager, refs, nil),
		transfers:    domain.NewTransferService(userRepo, accountRepo, transactionRepo, txManager, refs, nil),
	}
}
