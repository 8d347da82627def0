package testutil

import (
	"context"
	"sync"

	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/auctionworks/settlement/internal/domain/bid"
	"github.com/auctionworks/settlement/internal/domain/deadletter"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/domain/invoice"
	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/domain/payment"
	"github.com/google/uuid"
)

// --- Auction Repository Mock ---

// MockAuctionRepository is a mock implementation of auction.Repository.
type MockAuctionRepository struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*auction.Auction

	CreateFunc  func(ctx context.Context, a *auction.Auction) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*auction.Auction, error)
	UpdateFunc  func(ctx context.Context, a *auction.Auction) error
	DeleteFunc  func(ctx context.Context, id uuid.UUID) error
	ListFunc    func(ctx context.Context, filter auction.ListFilter) ([]*auction.Auction, error)
}

func NewMockAuctionRepository() *MockAuctionRepository {
	return &MockAuctionRepository{auctions: make(map[uuid.UUID]*auction.Auction)}
}

// AddAuction pre-populates the mock with an auction.
func (m *MockAuctionRepository) AddAuction(a *auction.Auction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auctions[a.ID] = a
}

// GetAuctionByID returns the stored auction (test helper, no context needed).
func (m *MockAuctionRepository) GetAuctionByID(id uuid.UUID) *auction.Auction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auctions[id]
}

func (m *MockAuctionRepository) Create(ctx context.Context, a *auction.Auction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auctions[a.ID] = a
	return nil
}

func (m *MockAuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[id]
	if !ok {
		return nil, domainErrors.ErrAuctionNotFound
	}
	return a, nil
}

func (m *MockAuctionRepository) Update(ctx context.Context, a *auction.Auction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auctions[a.ID] = a
	return nil
}

func (m *MockAuctionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.auctions, id)
	return nil
}

func (m *MockAuctionRepository) List(ctx context.Context, filter auction.ListFilter) ([]*auction.Auction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*auction.Auction, 0, len(m.auctions))
	for _, a := range m.auctions {
		if filter.Seller != "" && a.Seller != filter.Seller {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

// --- Bid Repository Mock ---

// MockBidRepository is a mock implementation of bid.Repository.
type MockBidRepository struct {
	mu   sync.Mutex
	bids map[uuid.UUID][]*bid.Bid

	InsertFunc         func(ctx context.Context, b *bid.Bid) error
	HighestAmountFunc  func(ctx context.Context, auctionID uuid.UUID) (*int64, error)
	ListForAuctionFunc func(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error)
}

func NewMockBidRepository() *MockBidRepository {
	return &MockBidRepository{bids: make(map[uuid.UUID][]*bid.Bid)}
}

func (m *MockBidRepository) Insert(ctx context.Context, b *bid.Bid) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, b)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bids[b.AuctionID] = append(m.bids[b.AuctionID], b)
	return nil
}

func (m *MockBidRepository) HighestAmount(ctx context.Context, auctionID uuid.UUID) (*int64, error) {
	if m.HighestAmountFunc != nil {
		return m.HighestAmountFunc(ctx, auctionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var highest *int64
	for _, b := range m.bids[auctionID] {
		if highest == nil || b.Amount > *highest {
			amount := b.Amount
			highest = &amount
		}
	}
	return highest, nil
}

func (m *MockBidRepository) ListForAuction(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	if m.ListForAuctionFunc != nil {
		return m.ListForAuctionFunc(ctx, auctionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bids[auctionID], nil
}

// --- Auction Snapshot Repository Mock ---

// MockSnapshotRepository is a mock implementation of bid.SnapshotRepository.
type MockSnapshotRepository struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]*bid.AuctionSnapshot

	UpsertFunc       func(ctx context.Context, snap *bid.AuctionSnapshot) error
	MarkDeletedFunc  func(ctx context.Context, id uuid.UUID) error
	GetForUpdateFunc func(ctx context.Context, id uuid.UUID) (*bid.AuctionSnapshot, error)
	GetFunc          func(ctx context.Context, id uuid.UUID) (*bid.AuctionSnapshot, error)
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{snapshots: make(map[uuid.UUID]*bid.AuctionSnapshot)}
}

// AddSnapshot pre-populates the mock with a snapshot.
func (m *MockSnapshotRepository) AddSnapshot(snap *bid.AuctionSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.ID] = snap
}

// GetSnapshotByID returns the stored snapshot (test helper, no context needed).
func (m *MockSnapshotRepository) GetSnapshotByID(id uuid.UUID) *bid.AuctionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[id]
}

func (m *MockSnapshotRepository) Upsert(ctx context.Context, snap *bid.AuctionSnapshot) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, snap)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.snapshots[snap.ID]; ok && existing.Deleted {
		// Deletion wins over late lifecycle events.
		return nil
	}
	m.snapshots[snap.ID] = snap
	return nil
}

func (m *MockSnapshotRepository) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	if m.MarkDeletedFunc != nil {
		return m.MarkDeletedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.snapshots[id]; ok {
		snap.Deleted = true
	}
	return nil
}

func (m *MockSnapshotRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*bid.AuctionSnapshot, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, id)
	}
	return m.Get(ctx, id)
}

func (m *MockSnapshotRepository) Get(ctx context.Context, id uuid.UUID) (*bid.AuctionSnapshot, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[id]
	if !ok {
		return nil, domainErrors.ErrAuctionNotFound
	}
	return snap, nil
}

// --- Invoice Repository Mock ---

// MockInvoiceRepository is a mock implementation of invoice.Repository.
// Insert honors the (auction, bidder) uniqueness of the real table.
type MockInvoiceRepository struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*invoice.Invoice
	byPair   map[string]*invoice.Invoice

	InsertFunc func(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, bool, error)
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices: make(map[uuid.UUID]*invoice.Invoice),
		byPair:   make(map[string]*invoice.Invoice),
	}
}

func pairKey(auctionID uuid.UUID, bidderID string) string {
	return auctionID.String() + "/" + bidderID
}

func (m *MockInvoiceRepository) Insert(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, bool, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, inv)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey(inv.AuctionID, inv.Bidder.BidderID)
	if existing, ok := m.byPair[key]; ok {
		return existing, false, nil
	}
	m.invoices[inv.ID] = inv
	m.byPair[key] = inv
	return inv, true, nil
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, domainErrors.ErrInvoiceNotFound
	}
	return inv, nil
}

func (m *MockInvoiceRepository) GetByAuctionAndBidder(ctx context.Context, auctionID uuid.UUID, bidderID string) (*invoice.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byPair[pairKey(auctionID, bidderID)]
	if !ok {
		return nil, domainErrors.ErrInvoiceNotFound
	}
	return inv, nil
}

// --- Payment Repository Mock ---

// MockPaymentRepository is a mock implementation of payment.Repository.
// Insert honors the per-invoice uniqueness of the real table.
type MockPaymentRepository struct {
	mu        sync.Mutex
	byInvoice map[uuid.UUID]*payment.Transaction

	InsertFunc         func(ctx context.Context, t *payment.Transaction) (*payment.Transaction, bool, error)
	GetByInvoiceIDFunc func(ctx context.Context, invoiceID uuid.UUID) (*payment.Transaction, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{byInvoice: make(map[uuid.UUID]*payment.Transaction)}
}

// AddTransaction pre-populates the mock with a settled transaction.
func (m *MockPaymentRepository) AddTransaction(t *payment.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byInvoice[t.InvoiceID] = t
}

func (m *MockPaymentRepository) Insert(ctx context.Context, t *payment.Transaction) (*payment.Transaction, bool, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byInvoice[t.InvoiceID]; ok {
		return existing, false, nil
	}
	m.byInvoice[t.InvoiceID] = t
	return t, true, nil
}

func (m *MockPaymentRepository) GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*payment.Transaction, error) {
	if m.GetByInvoiceIDFunc != nil {
		return m.GetByInvoiceIDFunc(ctx, invoiceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byInvoice[invoiceID]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return t, nil
}

func (m *MockPaymentRepository) ListForAuction(ctx context.Context, auctionID uuid.UUID) ([]*payment.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*payment.Transaction
	for _, t := range m.byInvoice {
		if t.AuctionID == auctionID {
			result = append(result, t)
		}
	}
	return result, nil
}

// --- Outbox Repository Mock ---

// MockOutboxRepository is a mock implementation of outbox.Repository that
// collects inserted entries for inspection.
type MockOutboxRepository struct {
	mu      sync.Mutex
	Entries []*outbox.Entry

	InsertFunc        func(ctx context.Context, entry *outbox.Entry) error
	GetPendingFunc    func(ctx context.Context, limit int) ([]*outbox.Entry, error)
	MarkPublishedFunc func(ctx context.Context, id uuid.UUID) error
	MarkFailedFunc    func(ctx context.Context, id uuid.UUID) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Insert(ctx context.Context, entry *outbox.Entry) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Entry, error) {
	if m.GetPendingFunc != nil {
		return m.GetPendingFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id)
	}
	return nil
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id)
	}
	return nil
}

// EntriesOfType returns the collected entries matching an event type.
func (m *MockOutboxRepository) EntriesOfType(eventType string) []*outbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*outbox.Entry
	for _, e := range m.Entries {
		if e.EventType == eventType {
			result = append(result, e)
		}
	}
	return result
}

// --- Inbox Repository Mock ---

// MockInboxRepository is a mock implementation of inbox.Repository.
type MockInboxRepository struct {
	mu   sync.Mutex
	seen map[string]bool

	MarkProcessedFunc func(ctx context.Context, messageID uuid.UUID, consumer, eventType string) (bool, error)
}

func NewMockInboxRepository() *MockInboxRepository {
	return &MockInboxRepository{seen: make(map[string]bool)}
}

func inboxKey(messageID uuid.UUID, consumer string) string {
	return messageID.String() + "/" + consumer
}

func (m *MockInboxRepository) MarkProcessed(ctx context.Context, messageID uuid.UUID, consumer, eventType string) (bool, error) {
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, messageID, consumer, eventType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := inboxKey(messageID, consumer)
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *MockInboxRepository) Seen(ctx context.Context, messageID uuid.UUID, consumer string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[inboxKey(messageID, consumer)], nil
}

// Forget removes a recorded message id, simulating a rolled-back
// handler transaction.
func (m *MockInboxRepository) Forget(messageID uuid.UUID, consumer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, inboxKey(messageID, consumer))
}

// --- Dead Letter Repository Mock ---

// MockDeadLetterRepository is a mock implementation of deadletter.Repository
// that collects parked entries for inspection.
type MockDeadLetterRepository struct {
	mu      sync.Mutex
	Parked  []*deadletter.Entry
	seenKey map[string]bool

	InsertFunc func(ctx context.Context, entry *deadletter.Entry) error
}

func NewMockDeadLetterRepository() *MockDeadLetterRepository {
	return &MockDeadLetterRepository{seenKey: make(map[string]bool)}
}

func (m *MockDeadLetterRepository) Insert(ctx context.Context, entry *deadletter.Entry) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entry.MessageID.String() + "/" + entry.Consumer
	if m.seenKey[key] {
		return nil
	}
	m.seenKey[key] = true
	m.Parked = append(m.Parked, entry)
	return nil
}

func (m *MockDeadLetterRepository) List(ctx context.Context, consumer string, limit int) ([]*deadletter.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*deadletter.Entry
	for _, e := range m.Parked {
		if e.Consumer == consumer {
			result = append(result, e)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// --- Transaction Manager Mock ---

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// --- Lock Mock ---

// MockLock is a lock whose acquisition outcome is fixed up front.
type MockLock struct {
	Acquired   bool
	AcquireErr error
	Released   bool
}

func (l *MockLock) Acquire(ctx context.Context) (bool, error) {
	if l.AcquireErr != nil {
		return false, l.AcquireErr
	}
	return l.Acquired, nil
}

func (l *MockLock) Release(ctx context.Context) error {
	l.Released = true
	return nil
}
