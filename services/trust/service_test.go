package trust

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paylane/gateway/repositories"
	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/workerpool"
)

// MockTraderStore is a mock implementation of repositories.TraderStore
type MockTraderStore struct {
	mock.Mock
}

func (m *MockTraderStore) IsBlocked(ctx context.Context, traderID string) (bool, error) {
	args := m.Called(ctx, traderID)
	return args.Bool(0), args.Error(1)
}

// MockMerchantStore is a mock implementation of repositories.MerchantStore
type MockMerchantStore struct {
	mock.Mock
}

func (m *MockMerchantStore) IsBlocked(ctx context.Context, merchantID string) (bool, error) {
	args := m.Called(ctx, merchantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMerchantStore) PublicKey(ctx context.Context, merchantID string) (string, error) {
	args := m.Called(ctx, merchantID)
	return args.String(0), args.Error(1)
}

func (m *MockMerchantStore) SetPublicKey(ctx context.Context, merchantID, publicKey string) error {
	args := m.Called(ctx, merchantID, publicKey)
	return args.Error(0)
}

// fakeCache is an in-memory TrustCache with switchable failure modes
type fakeCache struct {
	mu          sync.Mutex
	down        bool
	readErr     error
	writeErr    error
	blocked     map[string]string
	publicKeys  map[string]string
	setBlockedN int
	setKeyN     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		blocked:    make(map[string]string),
		publicKeys: make(map[string]string),
	}
}

func (f *fakeCache) Acquire(ctx context.Context) (repositories.TrustCacheConn, error) {
	if f.down {
		return nil, errors.New("redis unavailable: connection refused")
	}
	return f, nil
}

func (f *fakeCache) GetBlocked(ctx context.Context, entity repositories.BlockEntity, id string) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return false, false, f.readErr
	}
	value, ok := f.blocked[string(entity)+":"+id]
	if !ok || (value != "0" && value != "1") {
		return false, false, nil
	}
	return value == "1", true, nil
}

func (f *fakeCache) SetBlocked(ctx context.Context, entity repositories.BlockEntity, id string, blocked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setBlockedN++
	if f.writeErr != nil {
		return f.writeErr
	}
	value := "0"
	if blocked {
		value = "1"
	}
	f.blocked[string(entity)+":"+id] = value
	return nil
}

func (f *fakeCache) GetPublicKey(ctx context.Context, merchantID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", false, f.readErr
	}
	key, ok := f.publicKeys[merchantID]
	return key, ok, nil
}

func (f *fakeCache) SetPublicKey(ctx context.Context, merchantID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setKeyN++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.publicKeys[merchantID] = key
	return nil
}

// syncRunner executes submitted jobs inline for deterministic assertions
type syncRunner struct {
	submitErr error
	ran       int
}

func (r *syncRunner) Submit(ctx context.Context, job workerpool.Job) error {
	if r.submitErr != nil {
		return r.submitErr
	}
	r.ran++
	job(context.Background())
	return nil
}

func newTestService(cache *fakeCache, traders *MockTraderStore, merchants *MockMerchantStore, runner *syncRunner) *Service {
	return NewService(cache, traders, merchants, runner, zap.NewNop())
}

func TestTraderBlocked(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the store", func(t *testing.T) {
		cache := newFakeCache()
		cache.blocked["trader:t1"] = "1"
		traders := new(MockTraderStore)
		svc := newTestService(cache, traders, new(MockMerchantStore), &syncRunner{})

		blocked, err := svc.TraderBlocked(ctx, "t1")
		require.NoError(t, err)
		assert.True(t, blocked)
		traders.AssertNotCalled(t, "IsBlocked")
	})

	t.Run("cache miss resolves from store and backfills", func(t *testing.T) {
		cache := newFakeCache()
		traders := new(MockTraderStore)
		traders.On("IsBlocked", mock.Anything, "t1").Return(false, nil).Once()
		runner := &syncRunner{}
		svc := newTestService(cache, traders, new(MockMerchantStore), runner)

		blocked, err := svc.TraderBlocked(ctx, "t1")
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.Equal(t, 1, runner.ran)
		assert.Equal(t, "0", cache.blocked["trader:t1"])

		// second resolution within the TTL hits the cache, not the store
		blocked, err = svc.TraderBlocked(ctx, "t1")
		require.NoError(t, err)
		assert.False(t, blocked)
		traders.AssertNumberOfCalls(t, "IsBlocked", 1)
	})

	t.Run("cache down goes straight to store with no backfill", func(t *testing.T) {
		cache := newFakeCache()
		cache.down = true
		traders := new(MockTraderStore)
		traders.On("IsBlocked", mock.Anything, "t1").Return(false, nil)
		runner := &syncRunner{}
		svc := newTestService(cache, traders, new(MockMerchantStore), runner)

		blocked, err := svc.TraderBlocked(ctx, "t1")
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.Equal(t, 0, runner.ran)
	})

	t.Run("garbage cache value is a miss", func(t *testing.T) {
		cache := newFakeCache()
		cache.blocked["trader:t1"] = "yes"
		traders := new(MockTraderStore)
		traders.On("IsBlocked", mock.Anything, "t1").Return(true, nil)
		svc := newTestService(cache, traders, new(MockMerchantStore), &syncRunner{})

		blocked, err := svc.TraderBlocked(ctx, "t1")
		require.NoError(t, err)
		assert.True(t, blocked)
		traders.AssertNumberOfCalls(t, "IsBlocked", 1)
	})

	t.Run("store not-found propagates untouched", func(t *testing.T) {
		cache := newFakeCache()
		traders := new(MockTraderStore)
		traders.On("IsBlocked", mock.Anything, "t404").Return(false, services.ErrTraderNotFound)
		svc := newTestService(cache, traders, new(MockMerchantStore), &syncRunner{})

		_, err := svc.TraderBlocked(ctx, "t404")
		assert.True(t, errors.Is(err, services.ErrTraderNotFound))
	})

	t.Run("backfill failure never fails the request", func(t *testing.T) {
		cache := newFakeCache()
		cache.writeErr = errors.New("redis write refused")
		traders := new(MockTraderStore)
		traders.On("IsBlocked", mock.Anything, "t1").Return(true, nil)
		svc := newTestService(cache, traders, new(MockMerchantStore), &syncRunner{})

		blocked, err := svc.TraderBlocked(ctx, "t1")
		require.NoError(t, err)
		assert.True(t, blocked)
	})

	t.Run("full backfill queue never fails the request", func(t *testing.T) {
		cache := newFakeCache()
		traders := new(MockTraderStore)
		traders.On("IsBlocked", mock.Anything, "t1").Return(true, nil)
		runner := &syncRunner{submitErr: context.DeadlineExceeded}
		svc := newTestService(cache, traders, new(MockMerchantStore), runner)

		blocked, err := svc.TraderBlocked(ctx, "t1")
		require.NoError(t, err)
		assert.True(t, blocked)
	})
}

func TestMerchantBlocked(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the merchant key family", func(t *testing.T) {
		cache := newFakeCache()
		cache.blocked["merchant:m1"] = "1"
		merchants := new(MockMerchantStore)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		blocked, err := svc.MerchantBlocked(ctx, "m1")
		require.NoError(t, err)
		assert.True(t, blocked)
		merchants.AssertNotCalled(t, "IsBlocked")
	})

	t.Run("store not-found propagates for the gate to downgrade", func(t *testing.T) {
		cache := newFakeCache()
		merchants := new(MockMerchantStore)
		merchants.On("IsBlocked", mock.Anything, "m404").Return(false, services.ErrMerchantNotFound)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		_, err := svc.MerchantBlocked(ctx, "m404")
		assert.True(t, errors.Is(err, services.ErrMerchantNotFound))
	})
}

func TestMerchantPublicKey(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the store", func(t *testing.T) {
		cache := newFakeCache()
		cache.publicKeys["m1"] = "pem-cached"
		merchants := new(MockMerchantStore)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		key, err := svc.MerchantPublicKey(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "pem-cached", key)
		merchants.AssertNotCalled(t, "PublicKey")
	})

	t.Run("cache miss writes back synchronously", func(t *testing.T) {
		cache := newFakeCache()
		merchants := new(MockMerchantStore)
		merchants.On("PublicKey", mock.Anything, "m1").Return("pem-db", nil)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		key, err := svc.MerchantPublicKey(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "pem-db", key)
		assert.Equal(t, "pem-db", cache.publicKeys["m1"])
	})

	t.Run("cache read error skips the write-back", func(t *testing.T) {
		cache := newFakeCache()
		cache.readErr = errors.New("redis read failed")
		merchants := new(MockMerchantStore)
		merchants.On("PublicKey", mock.Anything, "m1").Return("pem-db", nil)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		key, err := svc.MerchantPublicKey(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "pem-db", key)
		assert.Equal(t, 0, cache.setKeyN)
	})

	t.Run("cache down falls back to store", func(t *testing.T) {
		cache := newFakeCache()
		cache.down = true
		merchants := new(MockMerchantStore)
		merchants.On("PublicKey", mock.Anything, "m1").Return("pem-db", nil)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		key, err := svc.MerchantPublicKey(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "pem-db", key)
	})

	t.Run("missing key propagates not found", func(t *testing.T) {
		cache := newFakeCache()
		merchants := new(MockMerchantStore)
		merchants.On("PublicKey", mock.Anything, "m1").Return("", services.ErrNotFound)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		_, err := svc.MerchantPublicKey(ctx, "m1")
		assert.True(t, errors.Is(err, services.ErrNotFound))
		assert.Equal(t, 0, cache.setKeyN)
	})
}

func TestRotateMerchantPublicKey(t *testing.T) {
	ctx := context.Background()

	t.Run("updates store and refreshes cache", func(t *testing.T) {
		cache := newFakeCache()
		merchants := new(MockMerchantStore)
		merchants.On("SetPublicKey", mock.Anything, "m1", "pem-new").Return(nil)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		require.NoError(t, svc.RotateMerchantPublicKey(ctx, "m1", "pem-new"))
		assert.Equal(t, "pem-new", cache.publicKeys["m1"])
		merchants.AssertExpectations(t)
	})

	t.Run("store failure aborts before touching the cache", func(t *testing.T) {
		cache := newFakeCache()
		merchants := new(MockMerchantStore)
		merchants.On("SetPublicKey", mock.Anything, "m404", "pem-new").Return(services.ErrMerchantNotFound)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		err := svc.RotateMerchantPublicKey(ctx, "m404", "pem-new")
		assert.True(t, errors.Is(err, services.ErrMerchantNotFound))
		assert.Equal(t, 0, cache.setKeyN)
	})

	t.Run("cache down is not an error", func(t *testing.T) {
		cache := newFakeCache()
		cache.down = true
		merchants := new(MockMerchantStore)
		merchants.On("SetPublicKey", mock.Anything, "m1", "pem-new").Return(nil)
		svc := newTestService(cache, new(MockTraderStore), merchants, &syncRunner{})

		require.NoError(t, svc.RotateMerchantPublicKey(ctx, "m1", "pem-new"))
	})
}
