// Package memory is an in-process ledger store with the same locking and
// uniqueness contract as the Postgres store. Writes are applied immediately;
// a unit of work that returns an error is not rolled back.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/repository"
)

type enrollmentKey struct {
	userID   int64
	courseID int64
}

// Store holds every table in memory
type Store struct {
	mu sync.Mutex

	lockMu   sync.Mutex
	rowLocks map[string]*sync.Mutex

	nextID map[string]int64

	transactions      map[int64]*model.Transaction
	transactionOrders map[string]int64
	donations         map[int64]*model.Donation
	donationOrders    map[string]int64
	enrollments       map[enrollmentKey]*model.Enrollment
	events            map[string][]*model.PaymentEvent
	courses           map[int64]*model.Course
	promos            map[string]*model.PromoCode

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		rowLocks:          make(map[string]*sync.Mutex),
		nextID:            make(map[string]int64),
		transactions:      make(map[int64]*model.Transaction),
		transactionOrders: make(map[string]int64),
		donations:         make(map[int64]*model.Donation),
		donationOrders:    make(map[string]int64),
		enrollments:       make(map[enrollmentKey]*model.Enrollment),
		events:            make(map[string][]*model.PaymentEvent),
		courses:           make(map[int64]*model.Course),
		promos:            make(map[string]*model.PromoCode),
		now:               time.Now,
	}
}

func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *Store) rowLock(key string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.rowLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[key] = l
	}
	return l
}

// session tracks the row locks taken inside one Do call
type session struct {
	store *Store
	held  map[string]*sync.Mutex
}

func (ss *session) lock(key string) {
	if ss == nil {
		return
	}
	if _, ok := ss.held[key]; ok {
		return
	}
	l := ss.store.rowLock(key)
	l.Lock()
	ss.held[key] = l
}

func (ss *session) release() {
	for _, l := range ss.held {
		l.Unlock()
	}
	ss.held = nil
}

func rowKey(table string, id int64) string {
	return fmt.Sprintf("%s/%d", table, id)
}

// Do runs fn while holding every row lock fn takes until it returns
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	ss := &session{store: s, held: make(map[string]*sync.Mutex)}
	defer ss.release()
	return fn(ctx, &repos{store: s, session: ss})
}

// Repositories returns stores that take no row locks
func (s *Store) Repositories() repository.Repositories {
	return &repos{store: s}
}

// Courses returns the course catalog
func (s *Store) Courses() repository.CourseRepository {
	return &courseRepo{store: s}
}

// PromoCodes returns the promo code catalog
func (s *Store) PromoCodes() repository.PromoCodeRepository {
	return &promoRepo{store: s}
}

type repos struct {
	store   *Store
	session *session
}

func (r *repos) Transactions() repository.TransactionRepository {
	return &transactionRepo{store: r.store, session: r.session}
}

func (r *repos) Donations() repository.DonationRepository {
	return &donationRepo{store: r.store, session: r.session}
}

func (r *repos) Enrollments() repository.EnrollmentRepository {
	return &enrollmentRepo{store: r.store}
}

func (r *repos) PaymentEvents() repository.PaymentEventRepository {
	return &eventRepo{store: r.store}
}

// transactions

type transactionRepo struct {
	store   *Store
	session *session
}

func copyTransaction(tx *model.Transaction) *model.Transaction {
	c := *tx
	c.PaymentDetails = tx.PaymentDetails.Merge(nil)
	return &c
}

func (r *transactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactionOrders[tx.OrderID]; ok {
		return fmt.Errorf("duplicate order_id %s", tx.OrderID)
	}
	now := s.now()
	tx.ID = s.id(model.LedgerTransactions)
	tx.CreatedAt = now
	tx.UpdatedAt = now
	s.transactions[tx.ID] = copyTransaction(tx)
	s.transactionOrders[tx.OrderID] = tx.ID
	return nil
}

func (r *transactionRepo) lookupOrder(orderID string) (int64, bool) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id, ok := r.store.transactionOrders[orderID]
	return id, ok
}

func (r *transactionRepo) get(id int64) *model.Transaction {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tx, ok := r.store.transactions[id]
	if !ok {
		return nil
	}
	return copyTransaction(tx)
}

func (r *transactionRepo) GetByOrderID(ctx context.Context, orderID string) (*model.Transaction, error) {
	id, ok := r.lookupOrder(orderID)
	if !ok {
		return nil, nil
	}
	return r.get(id), nil
}

func (r *transactionRepo) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*model.Transaction, error) {
	id, ok := r.lookupOrder(orderID)
	if !ok {
		return nil, nil
	}
	return r.GetByIDForUpdate(ctx, id)
}

func (r *transactionRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Transaction, error) {
	r.session.lock(rowKey(model.LedgerTransactions, id))
	return r.get(id), nil
}

func (r *transactionRepo) Save(ctx context.Context, tx *model.Transaction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.ID]; !ok {
		return fmt.Errorf("transaction %d does not exist", tx.ID)
	}
	tx.UpdatedAt = s.now()
	s.transactions[tx.ID] = copyTransaction(tx)
	return nil
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Transaction, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []*model.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			rows = append(rows, copyTransaction(tx))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })

	total := int64(len(rows))
	if offset >= len(rows) {
		return []*model.Transaction{}, total, nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (r *transactionRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*model.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []*model.Transaction
	for _, tx := range s.transactions {
		if tx.Status == model.TransactionStatusPending && tx.Type == model.TransactionTypePurchase && tx.CreatedAt.Before(olderThan) {
			rows = append(rows, copyTransaction(tx))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

// donations

type donationRepo struct {
	store   *Store
	session *session
}

func copyDonation(d *model.Donation) *model.Donation {
	c := *d
	c.PaymentDetails = d.PaymentDetails.Merge(nil)
	c.Transaction = nil
	return &c
}

func (r *donationRepo) Create(ctx context.Context, donation *model.Donation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.donationOrders[donation.OrderID]; ok {
		return fmt.Errorf("duplicate order_id %s", donation.OrderID)
	}
	now := s.now()
	donation.ID = s.id(model.LedgerDonations)
	donation.CreatedAt = now
	donation.UpdatedAt = now
	s.donations[donation.ID] = copyDonation(donation)
	s.donationOrders[donation.OrderID] = donation.ID
	return nil
}

func (r *donationRepo) lookupOrder(orderID string) (int64, bool) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id, ok := r.store.donationOrders[orderID]
	return id, ok
}

func (r *donationRepo) get(id int64) *model.Donation {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.donations[id]
	if !ok {
		return nil
	}
	return copyDonation(d)
}

func (r *donationRepo) GetByOrderID(ctx context.Context, orderID string) (*model.Donation, error) {
	id, ok := r.lookupOrder(orderID)
	if !ok {
		return nil, nil
	}
	return r.get(id), nil
}

func (r *donationRepo) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*model.Donation, error) {
	id, ok := r.lookupOrder(orderID)
	if !ok {
		return nil, nil
	}
	r.session.lock(rowKey(model.LedgerDonations, id))
	return r.get(id), nil
}

func (r *donationRepo) Save(ctx context.Context, donation *model.Donation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.donations[donation.ID]; !ok {
		return fmt.Errorf("donation %d does not exist", donation.ID)
	}
	donation.UpdatedAt = s.now()
	s.donations[donation.ID] = copyDonation(donation)
	return nil
}

func (r *donationRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*model.Donation, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []*model.Donation
	for _, d := range s.donations {
		if d.Status == model.TransactionStatusPending && d.CreatedAt.Before(olderThan) {
			rows = append(rows, copyDonation(d))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

// enrollments

type enrollmentRepo struct {
	store *Store
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := enrollmentKey{userID: enrollment.UserID, courseID: enrollment.CourseID}
	if _, ok := s.enrollments[key]; ok {
		return domainErrors.ErrEnrollmentExists
	}
	now := s.now()
	enrollment.ID = s.id("enrollments")
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	c := *enrollment
	s.enrollments[key] = &c
	return nil
}

func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID int64) (*model.Enrollment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[enrollmentKey{userID: userID, courseID: courseID}]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

// payment events

type eventRepo struct {
	store *Store
}

func (r *eventRepo) Append(ctx context.Context, event *model.PaymentEvent) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rowKey(event.Ledger, event.LedgerID)
	event.ID = s.id("payment_events")
	event.Sequence = len(s.events[key]) + 1
	event.CreatedAt = s.now()
	c := *event
	s.events[key] = append(s.events[key], &c)
	return nil
}

func (r *eventRepo) ListByLedger(ctx context.Context, ledger string, ledgerID int64) ([]*model.PaymentEvent, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.events[rowKey(ledger, ledgerID)]
	out := make([]*model.PaymentEvent, 0, len(stored))
	for _, e := range stored {
		c := *e
		out = append(out, &c)
	}
	return out, nil
}

// catalog

type courseRepo struct {
	store *Store
}

func (r *courseRepo) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[id]
	if !ok {
		return nil, nil
	}
	course := *c
	return &course, nil
}

func (r *courseRepo) Upsert(ctx context.Context, course *model.Course) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if course.ID == 0 {
		course.ID = s.id("courses")
	}
	c := *course
	s.courses[course.ID] = &c
	return nil
}

type promoRepo struct {
	store *Store
}

func (r *promoRepo) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.promos[strings.ToUpper(code)]
	if !ok {
		return nil, nil
	}
	promo := *p
	return &promo, nil
}

func (r *promoRepo) Upsert(ctx context.Context, promo *model.PromoCode) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(promo.Code)
	if existing, ok := s.promos[key]; ok {
		promo.ID = existing.ID
	} else {
		promo.ID = s.id("promo_codes")
	}
	p := *promo
	s.promos[key] = &p
	return nil
}
