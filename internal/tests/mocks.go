package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/redis"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK ROOM REPOSITORY
// ──────────────────────────────────────────────

// MockRoomRepository is a mock implementation of RoomRepository.
type MockRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRoomRepository creates a new mock room repository.
func NewMockRoomRepository() *MockRoomRepository {
	return &MockRoomRepository{rooms: make(map[string]*domain.Room)}
}

// AddRoom adds a room to the mock repository.
func (m *MockRoomRepository) AddRoom(room *domain.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room
}

func (m *MockRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room
	return nil
}

func (m *MockRoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *room
	return &copy, nil
}

func (m *MockRoomRepository) List(ctx context.Context, filter repository.RoomFilter) ([]*domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && r.Priority != filter.Priority {
			continue
		}
		if filter.CreatorID != "" && r.CreatorID != filter.CreatorID {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DepartureTime.Before(result[j].DepartureTime)
	})
	return result, nil
}

func (m *MockRoomRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Room, error) {
	return m.List(ctx, repository.RoomFilter{CreatorID: userID})
}

func (m *MockRoomRepository) Update(ctx context.Context, room *domain.Room) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *room
	m.rooms[room.ID] = &copy
	return nil
}

func (m *MockRoomRepository) UpdateStatus(ctx context.Context, id string, status domain.RoomStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return repository.ErrNotFound
	}
	room.Status = status
	return nil
}

func (m *MockRoomRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

// GetRoom returns the stored room for test assertions.
func (m *MockRoomRepository) GetRoom(id string) *domain.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[id]
}

// ──────────────────────────────────────────────
// MOCK PARTICIPANT REPOSITORY
// ──────────────────────────────────────────────

// MockParticipantRepository is a mock implementation of ParticipantRepository.
// It enforces the same (room, seat) and (room, user) uniqueness the storage
// layer does, so seat-race behavior can be tested against it.
type MockParticipantRepository struct {
	mu           sync.Mutex
	participants map[string]*domain.RoomParticipant // by participant ID

	CreateCallCount int32
	CreateError     error
}

// NewMockParticipantRepository creates a new mock participant repository.
func NewMockParticipantRepository() *MockParticipantRepository {
	return &MockParticipantRepository{participants: make(map[string]*domain.RoomParticipant)}
}

func (m *MockParticipantRepository) Create(ctx context.Context, p *domain.RoomParticipant) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.participants {
		if existing.RoomID != p.RoomID {
			continue
		}
		if existing.SeatNumber == p.SeatNumber || existing.UserID == p.UserID {
			return repository.ErrDuplicate
		}
	}
	copy := *p
	m.participants[p.ID] = &copy
	return nil
}

func (m *MockParticipantRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.RoomParticipant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.RoomParticipant, 0)
	for _, p := range m.participants {
		if p.RoomID == roomID {
			copy := *p
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SeatNumber < result[j].SeatNumber
	})
	return result, nil
}

func (m *MockParticipantRepository) GetByRoomAndUser(ctx context.Context, roomID, userID string) (*domain.RoomParticipant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.RoomID == roomID && p.UserID == userID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockParticipantRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.participants[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.participants, id)
	return nil
}

func (m *MockParticipantRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.participants {
		if p.RoomID == roomID {
			delete(m.participants, id)
		}
	}
	return nil
}

func (m *MockParticipantRepository) CountByRoom(ctx context.Context, roomID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, p := range m.participants {
		if p.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────
// MOCK RIDE STATE REPOSITORY
// ──────────────────────────────────────────────

// MockRideStateRepository is a mock implementation of RideStateRepository.
type MockRideStateRepository struct {
	mu     sync.RWMutex
	states map[string]*domain.RoomRideState // by room ID

	UpsertCallCount int32
	UpsertError     error
}

// NewMockRideStateRepository creates a new mock ride state repository.
func NewMockRideStateRepository() *MockRideStateRepository {
	return &MockRideStateRepository{states: make(map[string]*domain.RoomRideState)}
}

func (m *MockRideStateRepository) GetByRoom(ctx context.Context, roomID string) (*domain.RoomRideState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *state
	return &copy, nil
}

func (m *MockRideStateRepository) Upsert(ctx context.Context, state *domain.RoomRideState) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *state
	m.states[state.RoomID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User

	UpdateBalanceCallCount int32
	UpdateBalanceError     error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return m.GetByID(ctx, id)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, id string, balance int64) error {
	atomic.AddInt32(&m.UpdateBalanceCallCount, 1)
	if m.UpdateBalanceError != nil {
		return m.UpdateBalanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.WalletBalance = balance
	return nil
}

// Balance returns the stored balance for test assertions.
func (m *MockUserRepository) Balance(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u.WalletBalance
	}
	return 0
}

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORY
// ──────────────────────────────────────────────

// MockWalletRepository is a mock implementation of WalletRepository. It
// enforces idempotency key uniqueness the way the storage layer does.
type MockWalletRepository struct {
	mu    sync.Mutex
	txs   []*domain.WalletTransaction
	byKey map[string]*domain.WalletTransaction

	CreateCallCount int32
	CreateError     error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{byKey: make(map[string]*domain.WalletTransaction)}
}

func (m *MockWalletRepository) Create(ctx context.Context, tx *domain.WalletTransaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.IdempotencyKey != "" {
		if _, ok := m.byKey[tx.IdempotencyKey]; ok {
			return repository.ErrDuplicate
		}
	}
	copy := *tx
	m.txs = append(m.txs, &copy)
	if tx.IdempotencyKey != "" {
		m.byKey[tx.IdempotencyKey] = &copy
	}
	return nil
}

func (m *MockWalletRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx, ok := m.byKey[key]; ok {
		copy := *tx
		return &copy, nil
	}
	return nil, nil
}

func (m *MockWalletRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.WalletTransaction, 0)
	for i := len(m.txs) - 1; i >= 0; i-- {
		if m.txs[i].UserID != userID {
			continue
		}
		copy := *m.txs[i]
		result = append(result, &copy)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockWalletRepository) SumByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, tx := range m.txs {
		if tx.UserID == userID {
			sum += tx.Amount
		}
	}
	return sum, nil
}

// ──────────────────────────────────────────────
// MOCK SETTLEMENT / HISTORY REPOSITORIES
// ──────────────────────────────────────────────

// MockSettlementRepository is a mock implementation of SettlementRepository.
type MockSettlementRepository struct {
	mu      sync.Mutex
	records map[string]*domain.RoomSettlement // by roomID + userID
}

// NewMockSettlementRepository creates a new mock settlement repository.
func NewMockSettlementRepository() *MockSettlementRepository {
	return &MockSettlementRepository{records: make(map[string]*domain.RoomSettlement)}
}

func (m *MockSettlementRepository) Upsert(ctx context.Context, s *domain.RoomSettlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *s
	m.records[s.RoomID+"/"+s.UserID] = &copy
	return nil
}

func (m *MockSettlementRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.RoomSettlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.RoomSettlement, 0)
	for _, r := range m.records {
		if r.RoomID == roomID {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

// MockHistoryRepository is a mock implementation of HistoryRepository.
type MockHistoryRepository struct {
	mu      sync.Mutex
	records map[string]*domain.RideHistory
}

// NewMockHistoryRepository creates a new mock history repository.
func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{records: make(map[string]*domain.RideHistory)}
}

func (m *MockHistoryRepository) Upsert(ctx context.Context, h *domain.RideHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *h
	m.records[h.RoomID+"/"+h.UserID] = &copy
	return nil
}

func (m *MockHistoryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RideHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.RideHistory, 0)
	for _, r := range m.records {
		if r.UserID == userID {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SettledAt.After(result[j].SettledAt) })
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireDispatchLock(ctx context.Context, roomID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[roomID] {
		return false, nil
	}
	m.locks[roomID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseDispatchLock(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, roomID)
	return nil
}

// MockLocationStore is an in-memory implementation of LocationStoreInterface.
type MockLocationStore struct {
	mu        sync.Mutex
	locations []redis.RoomLocation
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{}
}

// SetLocations replaces the indexed locations.
func (m *MockLocationStore) SetLocations(locations []redis.RoomLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = locations
}

func (m *MockLocationStore) IndexRoom(ctx context.Context, roomID string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, redis.RoomLocation{RoomID: roomID, Lat: lat, Lng: lng})
	return nil
}

func (m *MockLocationStore) FindNearbyRooms(ctx context.Context, lat, lng, radiusKm float64) ([]redis.RoomLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]redis.RoomLocation(nil), m.locations...), nil
}

func (m *MockLocationStore) RemoveRoom(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.locations[:0]
	for _, l := range m.locations {
		if l.RoomID != roomID {
			kept = append(kept, l)
		}
	}
	m.locations = kept
	return nil
}

// MockCacheStore is a mock implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu    sync.Mutex
	rooms map[string]*redis.CachedRoomSummary

	// Counters for verification
	SetCallCount        int32
	GetBatchCallCount   int32
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{rooms: make(map[string]*redis.CachedRoomSummary)}
}

func (m *MockCacheStore) GetRoom(ctx context.Context, roomID string) (*redis.CachedRoomSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[roomID], nil
}

func (m *MockCacheStore) SetRoom(ctx context.Context, room *redis.CachedRoomSummary) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room
	return nil
}

func (m *MockCacheStore) InvalidateRoom(ctx context.Context, roomID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	return nil
}

func (m *MockCacheStore) GetRoomsBatch(ctx context.Context, roomIDs []string) (map[string]*redis.CachedRoomSummary, []string, error) {
	atomic.AddInt32(&m.GetBatchCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	found := make(map[string]*redis.CachedRoomSummary)
	var missing []string
	for _, id := range roomIDs {
		if room, ok := m.rooms[id]; ok {
			found[id] = room
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

// CachedRoom returns the cached summary for a room, or nil.
func (m *MockCacheStore) CachedRoom(roomID string) *redis.CachedRoomSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[roomID]
}

// ──────────────────────────────────────────────
// MOCK FEEDBACK REPOSITORIES
// ──────────────────────────────────────────────

// MockReviewRepository is a mock implementation of ReviewRepository.
type MockReviewRepository struct {
	mu      sync.Mutex
	reviews []*domain.Review

	CreateCallCount int32
	CreateError     error
}

// NewMockReviewRepository creates a new mock review repository.
func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{}
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, review)
	return nil
}

func (m *MockReviewRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Review
	for _, r := range m.reviews {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockReviewRepository) ListByReviewer(ctx context.Context, reviewerID string) ([]*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Review
	for _, r := range m.reviews {
		if r.ReviewerID == reviewerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// MockReportRepository is a mock implementation of ReportRepository.
type MockReportRepository struct {
	mu      sync.Mutex
	reports []*domain.Report

	CreateCallCount int32
	CreateError     error
}

// NewMockReportRepository creates a new mock report repository.
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{}
}

func (m *MockReportRepository) Create(ctx context.Context, report *domain.Report) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return nil
}

func (m *MockReportRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Report
	for _, r := range m.reports {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockReportRepository) ListByReporter(ctx context.Context, reporterID string) ([]*domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Report
	for _, r := range m.reports {
		if r.ReporterID == reporterID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────
// MOCK CHARGER / PUBLISHER
// ──────────────────────────────────────────────

// MockCharger is a test double for the external payment rail.
type MockCharger struct {
	ChargeCallCount int32
	ChargeError     error

	mu      sync.Mutex
	charges []int64
}

func (m *MockCharger) Charge(ctx context.Context, userID string, amount int64, currency string) (string, error) {
	atomic.AddInt32(&m.ChargeCallCount, 1)
	if m.ChargeError != nil {
		return "", m.ChargeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charges = append(m.charges, amount)
	return "pay_test", nil
}

// ChargedTotal returns the sum of all charges for test assertions.
func (m *MockCharger) ChargedTotal() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, c := range m.charges {
		sum += c
	}
	return sum
}
