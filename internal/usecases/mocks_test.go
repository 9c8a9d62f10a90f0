package usecases_test

import (
	"context"
	"io"
	"sync"
	"time"

	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/pkg/mail"
	"bookmarket.backend/pkg/redis"
	"bookmarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	args := m.Called(ctx)
	return args.Get(0).(context.Context)
}

// passthroughUoW runs every function directly without expectations
func passthroughUoW() *MockUnitOfWork {
	uow := new(MockUnitOfWork)
	uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	uow.On("WithLock", mock.Anything).Return(context.Background())
	return uow
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, email string, at time.Time) error {
	return m.Called(ctx, email, at).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, search string, pagination utils.PaginationParams) ([]*entities.User, int64, error) {
	args := m.Called(ctx, search, pagination)
	return args.Get(0).([]*entities.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// Mock SellerRepository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) Create(ctx context.Context, profile *entities.SellerProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockSellerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SellerProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SellerProfile), args.Error(1)
}

func (m *MockSellerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.SellerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SellerProfile), args.Error(1)
}

func (m *MockSellerRepository) Update(ctx context.Context, profile *entities.SellerProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockSellerRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockSellerRepository) RecomputeAggregate(ctx context.Context, sellerID uuid.UUID) (*entities.RatingAggregate, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RatingAggregate), args.Error(1)
}

// Mock BookRepository
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *entities.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Book), args.Error(1)
}

func (m *MockBookRepository) Update(ctx context.Context, book *entities.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *MockBookRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.BookStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockBookRepository) SetImageKey(ctx context.Context, id uuid.UUID, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

func (m *MockBookRepository) List(ctx context.Context, filter entities.BookFilter, pagination utils.PaginationParams) ([]*entities.Book, int64, error) {
	args := m.Called(ctx, filter, pagination)
	return args.Get(0).([]*entities.Book), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookRepository) Count(ctx context.Context, status entities.BookStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookRepository) FindOwned(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) ([]*entities.Book, error) {
	args := m.Called(ctx, sellerID, ids)
	return args.Get(0).([]*entities.Book), args.Error(1)
}

func (m *MockBookRepository) ListImageKeysBySeller(ctx context.Context, sellerID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBookRepository) DeleteOwned(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, sellerID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// Mock ReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *entities.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Reservation), args.Error(1)
}

func (m *MockReservationRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next entities.ReservationStatus) error {
	return m.Called(ctx, id, expected, next).Error(0)
}

func (m *MockReservationRepository) HasActive(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) ListByUser(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	args := m.Called(ctx, userID, pagination)
	return args.Get(0).([]*entities.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *MockReservationRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	args := m.Called(ctx, sellerID, status, pagination)
	return args.Get(0).([]*entities.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *MockReservationRepository) List(ctx context.Context, status entities.ReservationStatus, pagination utils.PaginationParams) ([]*entities.Reservation, int64, error) {
	args := m.Called(ctx, status, pagination)
	return args.Get(0).([]*entities.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *MockReservationRepository) Count(ctx context.Context, status entities.ReservationStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// Mock RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *entities.SellerRating) error {
	return m.Called(ctx, rating).Error(0)
}

func (m *MockRatingRepository) Update(ctx context.Context, rating *entities.SellerRating) error {
	return m.Called(ctx, rating).Error(0)
}

func (m *MockRatingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SellerRating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SellerRating), args.Error(1)
}

func (m *MockRatingRepository) GetByUserAndSeller(ctx context.Context, userID, sellerID uuid.UUID) (*entities.SellerRating, error) {
	args := m.Called(ctx, userID, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SellerRating), args.Error(1)
}

func (m *MockRatingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRatingRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SellerRating, int64, error) {
	args := m.Called(ctx, sellerID, pagination)
	return args.Get(0).([]*entities.SellerRating), args.Get(1).(int64), args.Error(2)
}

func (m *MockRatingRepository) ListSellerIDsRatedBy(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// Mock WishlistRepository
type MockWishlistRepository struct {
	mock.Mock
}

func (m *MockWishlistRepository) Add(ctx context.Context, item *entities.WishlistItem) (*entities.WishlistItem, bool, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*entities.WishlistItem), args.Bool(1), args.Error(2)
}

func (m *MockWishlistRepository) Get(ctx context.Context, userID, bookID uuid.UUID) (*entities.WishlistItem, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WishlistItem), args.Error(1)
}

func (m *MockWishlistRepository) Remove(ctx context.Context, userID, bookID uuid.UUID) error {
	return m.Called(ctx, userID, bookID).Error(0)
}

func (m *MockWishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.WishlistItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*entities.WishlistItem), args.Error(1)
}

// Mock VerificationTokenRepository
type MockVerificationTokenRepository struct {
	mock.Mock
}

func (m *MockVerificationTokenRepository) Create(ctx context.Context, token *entities.VerificationToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockVerificationTokenRepository) GetByToken(ctx context.Context, token string, purpose entities.TokenPurpose) (*entities.VerificationToken, error) {
	args := m.Called(ctx, token, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationToken), args.Error(1)
}

func (m *MockVerificationTokenRepository) Consume(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockVerificationTokenRepository) DeleteByIdentifier(ctx context.Context, identifier string, purpose entities.TokenPurpose) error {
	return m.Called(ctx, identifier, purpose).Error(0)
}

func (m *MockVerificationTokenRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// recordingMailer keeps every message it is asked to send
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingMailer) messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}

// Mock SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) CreateSession(ctx context.Context, data *redis.SessionData, expiration time.Duration) (string, error) {
	args := m.Called(ctx, data, expiration)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redis.SessionData), args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// fakeObjectStore is an in-memory object store
type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	deleteErr map[string]error
	putErr    error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, deleteErr: map[string]error{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
	return nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if err := f.deleteErr[key]; err != nil {
		return err
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}
