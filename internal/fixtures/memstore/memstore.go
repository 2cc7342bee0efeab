// Package memstore is an in-memory, transactional UnitOfWork used by
// service tests. Do serializes units of work behind one mutex and applies
// staged writes only when the closure succeeds, so the all-or-nothing
// behavior of the real store can be asserted without a database.
package memstore

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zokasta/bank/pkg/domain/account"
	"github.com/zokasta/bank/pkg/domain/card"
	"github.com/zokasta/bank/pkg/domain/ledger"
	"github.com/zokasta/bank/pkg/domain/user"
	"github.com/zokasta/bank/pkg/dto"
	"github.com/zokasta/bank/pkg/repository"
)

// Store holds the durable state.
type Store struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]dto.AccountRead
	cards    map[uuid.UUID]dto.CardRead
	users    map[uuid.UUID]dto.UserRead
	txs      map[uuid.UUID]dto.TransactionRead
	txOrder  []uuid.UUID
	clock    int64

	// FailTransactionCreate, when set, makes every transaction insert fail
	// with this error. Used to assert atomicity.
	FailTransactionCreate error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		accounts: map[uuid.UUID]dto.AccountRead{},
		cards:    map[uuid.UUID]dto.CardRead{},
		users:    map[uuid.UUID]dto.UserRead{},
		txs:      map[uuid.UUID]dto.TransactionRead{},
	}
}

// Seeding helpers. They write directly, outside any unit of work.

func (s *Store) PutUser(u dto.UserRead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) PutAccount(a dto.AccountRead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}

func (s *Store) PutCard(c dto.CardRead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[c.ID] = c
}

// Assertion helpers.

func (s *Store) Account(id uuid.UUID) dto.AccountRead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id]
}

func (s *Store) Card(id uuid.UUID) dto.CardRead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards[id]
}

func (s *Store) Transaction(id uuid.UUID) (dto.TransactionRead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	return tx, ok
}

// Transactions returns all rows in creation order.
func (s *Store) Transactions() []dto.TransactionRead {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.TransactionRead, 0, len(s.txOrder))
	for _, id := range s.txOrder {
		out = append(out, s.txs[id])
	}
	return out
}

// Do implements repository.UnitOfWork. The whole unit runs under the store
// mutex, which stands in for the row locks of the real store.
func (s *Store) Do(_ context.Context, fn func(uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &view{store: s}
	v.accounts = cloneMap(s.accounts)
	v.cards = cloneMap(s.cards)
	v.users = cloneMap(s.users)
	v.txs = cloneMap(s.txs)
	v.txOrder = append([]uuid.UUID(nil), s.txOrder...)

	if err := fn(v); err != nil {
		return err
	}

	s.accounts = v.accounts
	s.cards = v.cards
	s.users = v.users
	s.txs = v.txs
	s.txOrder = v.txOrder
	return nil
}

func (s *Store) GetRepository(repoType reflect.Type) (any, error) {
	// Top-level repository access happens inside Do in production code;
	// tests never need it on the bare store.
	panic("memstore: GetRepository outside Do")
}

func (s *Store) AccountRepository() (repository.AccountRepository, error) {
	panic("memstore: repository access outside Do")
}

func (s *Store) CardRepository() (repository.CardRepository, error) {
	panic("memstore: repository access outside Do")
}

func (s *Store) TransactionRepository() (repository.TransactionRepository, error) {
	panic("memstore: repository access outside Do")
}

func (s *Store) UserRepository() (repository.UserRepository, error) {
	panic("memstore: repository access outside Do")
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// view is one in-flight unit of work.
type view struct {
	store    *Store
	accounts map[uuid.UUID]dto.AccountRead
	cards    map[uuid.UUID]dto.CardRead
	users    map[uuid.UUID]dto.UserRead
	txs      map[uuid.UUID]dto.TransactionRead
	txOrder  []uuid.UUID
}

func (v *view) Do(_ context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(v)
}

func (v *view) GetRepository(repoType reflect.Type) (any, error) {
	switch repoType {
	case reflect.TypeOf((*repository.AccountRepository)(nil)).Elem():
		return accountRepo{v}, nil
	case reflect.TypeOf((*repository.CardRepository)(nil)).Elem():
		return cardRepo{v}, nil
	case reflect.TypeOf((*repository.TransactionRepository)(nil)).Elem():
		return txRepo{v}, nil
	case reflect.TypeOf((*repository.UserRepository)(nil)).Elem():
		return userRepo{v}, nil
	}
	panic("memstore: unsupported repository type " + repoType.String())
}

func (v *view) AccountRepository() (repository.AccountRepository, error) {
	return accountRepo{v}, nil
}

func (v *view) CardRepository() (repository.CardRepository, error) {
	return cardRepo{v}, nil
}

func (v *view) TransactionRepository() (repository.TransactionRepository, error) {
	return txRepo{v}, nil
}

func (v *view) UserRepository() (repository.UserRepository, error) {
	return userRepo{v}, nil
}

// next returns a strictly increasing timestamp so history ordering is
// deterministic.
func (v *view) next() time.Time {
	v.store.clock++
	return time.Unix(0, v.store.clock*int64(time.Millisecond))
}

type accountRepo struct{ v *view }

func (r accountRepo) Get(_ context.Context, id uuid.UUID) (*dto.AccountRead, error) {
	if a, ok := r.v.accounts[id]; ok {
		return &a, nil
	}
	return nil, account.ErrAccountNotFound
}

func (r accountRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*dto.AccountRead, error) {
	return r.Get(ctx, id)
}

func (r accountRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*dto.AccountRead, error) {
	for _, a := range r.v.accounts {
		if a.UserID == userID {
			a := a
			return &a, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r accountRepo) GetByPaymentID(_ context.Context, paymentID string) (*dto.AccountRead, error) {
	for _, a := range r.v.accounts {
		if a.PaymentID == paymentID {
			a := a
			return &a, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r accountRepo) Create(_ context.Context, create dto.AccountCreate) error {
	now := r.v.next()
	r.v.accounts[create.ID] = dto.AccountRead{
		ID:            create.ID,
		UserID:        create.UserID,
		AccountNumber: create.AccountNumber,
		DebitCard:     create.DebitCard,
		PaymentID:     create.PaymentID,
		CVV:           create.CVV,
		Expiration:    create.Expiration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return nil
}

func (r accountRepo) Update(_ context.Context, id uuid.UUID, update dto.AccountUpdate) error {
	a, ok := r.v.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	if update.Balance != nil {
		a.Balance = *update.Balance
	}
	if update.Frozen != nil {
		a.Frozen = *update.Frozen
	}
	a.UpdatedAt = r.v.next()
	r.v.accounts[id] = a
	return nil
}

func (r accountRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.v.accounts[id]; !ok {
		return account.ErrAccountNotFound
	}
	delete(r.v.accounts, id)
	return nil
}

type cardRepo struct{ v *view }

func (r cardRepo) Get(_ context.Context, id uuid.UUID) (*dto.CardRead, error) {
	if c, ok := r.v.cards[id]; ok {
		return &c, nil
	}
	return nil, card.ErrCardNotFound
}

func (r cardRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*dto.CardRead, error) {
	for _, c := range r.v.cards {
		if c.UserID == userID {
			c := c
			return &c, nil
		}
	}
	return nil, card.ErrCardNotFound
}

func (r cardRepo) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*dto.CardRead, error) {
	return r.GetByUserID(ctx, userID)
}

func (r cardRepo) ExistsByUserID(_ context.Context, userID uuid.UUID) (bool, error) {
	for _, c := range r.v.cards {
		if c.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r cardRepo) Create(_ context.Context, create dto.CardCreate) error {
	now := r.v.next()
	r.v.cards[create.ID] = dto.CardRead{
		ID:         create.ID,
		UserID:     create.UserID,
		CardNumber: create.CardNumber,
		Expiration: create.Expiration,
		CVV:        create.CVV,
		Status:     create.Status,
		Limit:      create.Limit,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return nil
}

func (r cardRepo) Update(_ context.Context, id uuid.UUID, update dto.CardUpdate) error {
	c, ok := r.v.cards[id]
	if !ok {
		return card.ErrCardNotFound
	}
	if update.Used != nil {
		c.Used = *update.Used
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	if update.Frozen != nil {
		c.Frozen = *update.Frozen
	}
	c.UpdatedAt = r.v.next()
	r.v.cards[id] = c
	return nil
}

type txRepo struct{ v *view }

func (r txRepo) Create(_ context.Context, create dto.TransactionCreate) error {
	if err := r.v.store.FailTransactionCreate; err != nil {
		return err
	}
	now := r.v.next()
	row := dto.TransactionRead{
		ID:         create.ID,
		SenderID:   create.SenderID,
		ReceiverID: create.ReceiverID,
		Amount:     create.Amount,
		Instrument: create.Instrument,
		ReversesID: create.ReversesID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if a, ok := r.v.accounts[create.SenderID]; ok {
		if u, ok := r.v.users[a.UserID]; ok {
			row.SenderName = u.Name
		}
	}
	if a, ok := r.v.accounts[create.ReceiverID]; ok {
		if u, ok := r.v.users[a.UserID]; ok {
			row.ReceiverName = u.Name
		}
	}
	r.v.txs[create.ID] = row
	r.v.txOrder = append(r.v.txOrder, create.ID)
	return nil
}

func (r txRepo) Get(_ context.Context, id uuid.UUID) (*dto.TransactionRead, error) {
	if tx, ok := r.v.txs[id]; ok {
		return &tx, nil
	}
	return nil, ledger.ErrAlreadyRolledBack
}

func (r txRepo) MarkRolledBack(_ context.Context, id uuid.UUID) error {
	tx, ok := r.v.txs[id]
	if !ok || tx.RolledBack {
		return ledger.ErrAlreadyRolledBack
	}
	tx.RolledBack = true
	tx.UpdatedAt = r.v.next()
	r.v.txs[id] = tx
	return nil
}

func (r txRepo) ListByAccount(_ context.Context, accountID uuid.UUID, filter dto.TransactionFilter) ([]*dto.TransactionRead, error) {
	var out []*dto.TransactionRead
	for i := len(r.v.txOrder) - 1; i >= 0; i-- {
		tx := r.v.txs[r.v.txOrder[i]]
		if tx.SenderID != accountID && tx.ReceiverID != accountID {
			continue
		}
		if !matches(tx, filter) {
			continue
		}
		out = append(out, &tx)
	}
	return out, nil
}

func (r txRepo) List(_ context.Context, filter dto.TransactionFilter) ([]*dto.TransactionRead, error) {
	var out []*dto.TransactionRead
	for i := len(r.v.txOrder) - 1; i >= 0; i-- {
		tx := r.v.txs[r.v.txOrder[i]]
		if !matches(tx, filter) {
			continue
		}
		out = append(out, &tx)
	}
	return out, nil
}

func (r txRepo) SumAmount(_ context.Context, filter dto.TransactionFilter) (int64, error) {
	var sum int64
	for _, id := range r.v.txOrder {
		if tx := r.v.txs[id]; matches(tx, filter) {
			sum += tx.Amount
		}
	}
	return sum, nil
}

func (r txRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.v.txs[id]; !ok {
		return ledger.ErrAlreadyRolledBack
	}
	delete(r.v.txs, id)
	for i, other := range r.v.txOrder {
		if other == id {
			r.v.txOrder = append(r.v.txOrder[:i], r.v.txOrder[i+1:]...)
			break
		}
	}
	return nil
}

func matches(tx dto.TransactionRead, filter dto.TransactionFilter) bool {
	if filter.Instrument != "" && tx.Instrument != filter.Instrument {
		return false
	}
	if filter.RolledBackOnly && !tx.RolledBack {
		return false
	}
	if !filter.From.IsZero() && tx.CreatedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !tx.CreatedAt.Before(filter.To) {
		return false
	}
	return true
}

type userRepo struct{ v *view }

func (r userRepo) Get(_ context.Context, id uuid.UUID) (*dto.UserRead, error) {
	if u, ok := r.v.users[id]; ok {
		return &u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*dto.UserRead, error) {
	for _, u := range r.v.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r userRepo) Create(_ context.Context, create dto.UserCreate) error {
	now := r.v.next()
	r.v.users[create.ID] = dto.UserRead{
		ID:        create.ID,
		Name:      create.Name,
		Email:     create.Email,
		Phone:     create.Phone,
		Handle:    create.Handle,
		MPINHash:  create.MPINHash,
		Role:      create.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}
