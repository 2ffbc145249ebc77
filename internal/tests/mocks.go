package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"cabshare/internal/domain"
	"cabshare/internal/gateway"
	"cabshare/internal/redis"
	"cabshare/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	SetPaymentVerifiedCallCount int32
	AddCommissionCallCount      int32

	// Error injection
	CreateError        error
	AddCommissionError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// GetUser returns a user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrAlreadyExists
		}
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id, name, avatar, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Name = name
	user.Avatar = avatar
	user.ExternalID = externalID
	return nil
}

func (m *MockUserRepository) SetBanned(ctx context.Context, id string, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsBanned = banned
	return nil
}

func (m *MockUserRepository) SetPaymentVerified(ctx context.Context, id string) error {
	atomic.AddInt32(&m.SetPaymentVerifiedCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PaymentVerified = true
	return nil
}

func (m *MockUserRepository) AddCommission(ctx context.Context, id string, amount float64) error {
	atomic.AddInt32(&m.AddCommissionCallCount, 1)
	if m.AddCommissionError != nil {
		return m.AddCommissionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.CommissionBalance += amount
	return nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount     int32
	SetGroupIDCallCount int32

	// Error injection
	CreateError     error
	SetGroupIDError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

// GetRide returns a ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetByCreatorID(ctx context.Context, creatorID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.CreatorID == creatorID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) GetRecent(ctx context.Context, limit int) ([]*domain.Ride, error) {
	rides, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(rides) > limit {
		rides = rides[:limit]
	}
	return rides, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRideRepository) SetGroupID(ctx context.Context, rideID, groupID string) error {
	atomic.AddInt32(&m.SetGroupIDCallCount, 1)
	if m.SetGroupIDError != nil {
		return m.SetGroupIDError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.GroupID != "" && ride.GroupID != groupID {
		return repository.ErrNotFound
	}
	ride.GroupID = groupID
	return nil
}

func (m *MockRideRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.rides)), nil
}

// ──────────────────────────────────────────────
// MOCK GROUP REPOSITORY
// ──────────────────────────────────────────────

// MockGroupRepository is a mock implementation of GroupRepository with the
// same version compare-and-swap semantics as the real one.
type MockGroupRepository struct {
	mu     sync.RWMutex
	groups map[string]*domain.Group

	// Counters for verification
	UpdateCallCount   int32
	ConflictCallCount int32
	DeleteCallCount   int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockGroupRepository creates a new mock group repository.
func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups: make(map[string]*domain.Group),
	}
}

// AddGroup adds a group to the mock repository.
func (m *MockGroupRepository) AddGroup(group *domain.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group.ID] = copyGroup(group)
}

// GetGroup returns a group for test assertions.
func (m *MockGroupRepository) GetGroup(id string) *domain.Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return nil
	}
	return copyGroup(g)
}

func copyGroup(g *domain.Group) *domain.Group {
	copy := *g
	copy.Members = append([]domain.GroupMember(nil), g.Members...)
	copy.Chat = append([]domain.ChatMessage(nil), g.Chat...)
	return &copy
}

func (m *MockGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.RideID == group.RideID {
			return repository.ErrAlreadyExists
		}
	}
	m.groups[group.ID] = copyGroup(group)
	return nil
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyGroup(g), nil
}

func (m *MockGroupRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.groups {
		if g.RideID == rideID {
			return copyGroup(g), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockGroupRepository) GetOpen(ctx context.Context) ([]*domain.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Group
	for _, g := range m.groups {
		if g.Status == domain.GroupStatusOpen {
			result = append(result, copyGroup(g))
		}
	}
	return result, nil
}

func (m *MockGroupRepository) GetAll(ctx context.Context) ([]*domain.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Group, 0, len(m.groups))
	for _, g := range m.groups {
		result = append(result, copyGroup(g))
	}
	return result, nil
}

func (m *MockGroupRepository) Update(ctx context.Context, group *domain.Group) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.groups[group.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != group.Version {
		atomic.AddInt32(&m.ConflictCallCount, 1)
		return repository.ErrVersionConflict
	}
	group.Version++
	m.groups[group.ID] = copyGroup(group)
	return nil
}

func (m *MockGroupRepository) Delete(ctx context.Context, id string, version int64) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.groups[id]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != version {
		atomic.AddInt32(&m.ConflictCallCount, 1)
		return repository.ErrVersionConflict
	}
	delete(m.groups, id)
	return nil
}

func (m *MockGroupRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.groups)), nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CompleteCallCount int32

	// Error injection
	CreateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

// GetPayment returns a payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.OrderID == payment.OrderID {
			return repository.ErrAlreadyExists
		}
	}
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *MockPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.OrderID == orderID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) CompleteByOrderID(ctx context.Context, orderID, gatewayPaymentID, signature string) error {
	atomic.AddInt32(&m.CompleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.OrderID != orderID {
			continue
		}
		switch p.Status {
		case domain.PaymentStatusPending:
			p.Status = domain.PaymentStatusCompleted
			p.GatewayPaymentID = gatewayPaymentID
			p.GatewaySignature = signature
			return nil
		case domain.PaymentStatusCompleted:
			return nil
		default:
			return repository.ErrVersionConflict
		}
	}
	return repository.ErrNotFound
}

func (m *MockPaymentRepository) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		copy := *p
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockPaymentRepository) SumCompletedAmount(ctx context.Context) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	for _, p := range m.payments {
		if p.Status == domain.PaymentStatusCompleted {
			total += p.Amount
		}
	}
	return total, nil
}

func (m *MockPaymentRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.payments)), nil
}

// ──────────────────────────────────────────────
// MOCK TRACKING REPOSITORY
// ──────────────────────────────────────────────

// MockTrackingRepository is a mock implementation of TrackingRepository.
type MockTrackingRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.RideTracking // keyed by tracking token

	// Counters for verification
	CompleteProofCallCount int32

	// Error injection
	CreateError error
}

// NewMockTrackingRepository creates a new mock tracking repository.
func NewMockTrackingRepository() *MockTrackingRepository {
	return &MockTrackingRepository{
		records: make(map[string]*domain.RideTracking),
	}
}

// AddRecord adds a tracking record to the mock repository.
func (m *MockTrackingRepository) AddRecord(t *domain.RideTracking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[t.TrackingID] = t
}

// GetRecord returns a tracking record for test assertions.
func (m *MockTrackingRepository) GetRecord(trackingID string) *domain.RideTracking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[trackingID]
}

func (m *MockTrackingRepository) Create(ctx context.Context, tracking *domain.RideTracking) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[tracking.TrackingID]; exists {
		return repository.ErrAlreadyExists
	}
	copy := *tracking
	m.records[tracking.TrackingID] = &copy
	return nil
}

func (m *MockTrackingRepository) GetByTrackingID(ctx context.Context, trackingID string) (*domain.RideTracking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.records[trackingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *t
	return &copy, nil
}

func (m *MockTrackingRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.RideTracking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.RideTracking
	for _, t := range m.records {
		if t.UserID == userID {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTrackingRepository) RegisterClick(ctx context.Context, trackingID string) (*domain.RideTracking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.records[trackingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.ClickCount++
	if t.Status == domain.TrackingStatusCreated {
		t.Status = domain.TrackingStatusClicked
	}
	copy := *t
	return &copy, nil
}

func (m *MockTrackingRepository) CompleteProof(ctx context.Context, trackingID string, actualFare, commission float64, proofImage string) (*domain.RideTracking, error) {
	atomic.AddInt32(&m.CompleteProofCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.records[trackingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if t.Status != domain.TrackingStatusCreated && t.Status != domain.TrackingStatusClicked {
		return nil, repository.ErrNotFound
	}
	t.ActualFare = actualFare
	t.CommissionEarned = commission
	t.ProofImage = proofImage
	t.ProofUploaded = true
	t.Status = domain.TrackingStatusCompleted
	copy := *t
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a mock implementation of the payment gateway client.
type MockGateway struct {
	mu sync.Mutex

	// Counters for verification
	CreateOrderCallCount int32

	// Error injection
	CreateOrderError error

	// OrderID overrides the generated order id when set.
	OrderID string

	orderSeq int
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*gateway.Order, error) {
	atomic.AddInt32(&m.CreateOrderCallCount, 1)
	if m.CreateOrderError != nil {
		return nil, m.CreateOrderError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderSeq++
	id := m.OrderID
	if id == "" {
		id = "order_" + time.Now().Format("150405") + "_" + receipt
	}
	return &gateway.Order{
		ID:       id,
		Amount:   amountMinorUnits,
		Currency: currency,
	}, nil
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is an in-memory LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireGroupLock(ctx context.Context, groupID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[groupID] {
		return false, nil
	}
	m.locks[groupID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseGroupLock(ctx context.Context, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, groupID)
	return nil
}

// MockCacheStore is an in-memory CacheStoreInterface.
type MockCacheStore struct {
	mu     sync.Mutex
	groups []redis.CachedGroup
	set    bool

	// Counters for verification
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{}
}

func (m *MockCacheStore) GetOpenGroups(ctx context.Context) ([]redis.CachedGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, nil
	}
	return append([]redis.CachedGroup(nil), m.groups...), nil
}

func (m *MockCacheStore) SetOpenGroups(ctx context.Context, groups []redis.CachedGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = append([]redis.CachedGroup(nil), groups...)
	m.set = true
	return nil
}

func (m *MockCacheStore) InvalidateOpenGroups(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = nil
	m.set = false
	return nil
}
