package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"stock_predictor/internal/feature/symbollist/domain/entity"
	"stock_predictor/internal/feature/symbollist/usecase"
)

// mockSymbolStore はテスト用のSymbolStoreモック実装です。
type mockSymbolStore struct {
	listAllFn     func(ctx context.Context) ([]entity.Symbol, error)
	findByCodeFn  func(ctx context.Context, code string) (*entity.Symbol, error)
	importBatchFn func(ctx context.Context, symbols []entity.Symbol) (int64, error)
}

func (m *mockSymbolStore) ListAll(ctx context.Context) ([]entity.Symbol, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockSymbolStore) FindByCode(ctx context.Context, code string) (*entity.Symbol, error) {
	if m.findByCodeFn != nil {
		return m.findByCodeFn(ctx, code)
	}
	return nil, usecase.ErrSymbolNotFound
}

func (m *mockSymbolStore) ImportBatch(ctx context.Context, symbols []entity.Symbol) (int64, error) {
	if m.importBatchFn != nil {
		return m.importBatchFn(ctx, symbols)
	}
	return int64(len(symbols)), nil
}

// TestNewCachingSymbolRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingSymbolRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", time.Hour, "symbols"},
		{"negative ttl uses default", -time.Minute, "", time.Hour, "symbols"},
		{"custom values preserved", 10 * time.Minute, "ref", 10 * time.Minute, "ref"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingSymbolRepository(nil, tt.ttl, &mockSymbolStore{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingSymbolRepository_FindByCode_NilRedis はRedisがnilの場合に内部リポジトリを直接呼び出すことを検証します。
func TestCachingSymbolRepository_FindByCode_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockSymbolStore{
		findByCodeFn: func(ctx context.Context, code string) (*entity.Symbol, error) {
			return &entity.Symbol{Code: code, Name: "Acme Corp"}, nil
		},
	}

	repo := NewCachingSymbolRepository(nil, time.Hour, inner, "symbols")
	s, err := repo.FindByCode(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "Acme Corp" {
		t.Errorf("expected Acme Corp, got %q", s.Name)
	}
}

// TestCachingSymbolRepository_FindByCode_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingSymbolRepository_FindByCode_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(entity.Symbol{ID: 1, Code: "ABC", Name: "Acme Corp"})
	mock.ExpectGet("symbols:code:ABC").SetVal(string(cached))

	innerCalled := false
	inner := &mockSymbolStore{
		findByCodeFn: func(ctx context.Context, code string) (*entity.Symbol, error) {
			innerCalled = true
			return nil, nil
		},
	}

	repo := NewCachingSymbolRepository(rdb, time.Hour, inner, "symbols")
	s, err := repo.FindByCode(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if innerCalled {
		t.Error("inner repository should not be called on cache hit")
	}
	if s.Name != "Acme Corp" {
		t.Errorf("expected Acme Corp, got %q", s.Name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSymbolRepository_FindByCode_CacheMiss はキャッシュミス時にDBから取得してキャッシュに保存することを検証します。
func TestCachingSymbolRepository_FindByCode_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	found := &entity.Symbol{ID: 1, Code: "ABC", Name: "Acme Corp"}
	expectedJSON, _ := json.Marshal(found)

	mock.ExpectGet("symbols:code:ABC").RedisNil()
	mock.ExpectSet("symbols:code:ABC", expectedJSON, time.Hour).SetVal("OK")

	inner := &mockSymbolStore{
		findByCodeFn: func(ctx context.Context, code string) (*entity.Symbol, error) {
			return found, nil
		},
	}

	repo := NewCachingSymbolRepository(rdb, time.Hour, inner, "symbols")
	s, err := repo.FindByCode(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "Acme Corp" {
		t.Errorf("expected Acme Corp, got %q", s.Name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSymbolRepository_FindByCode_NotFoundIsNotCached は未登録コードがキャッシュされないことを検証します。
func TestCachingSymbolRepository_FindByCode_NotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("symbols:code:ZZZ").RedisNil()

	repo := NewCachingSymbolRepository(rdb, time.Hour, &mockSymbolStore{}, "symbols")
	_, err := repo.FindByCode(context.Background(), "ZZZ")

	if !errors.Is(err, usecase.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSymbolRepository_FindByCode_RedisDown はRedis障害時もDBにフォールバックすることを検証します。
func TestCachingSymbolRepository_FindByCode_RedisDown(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	found := &entity.Symbol{Code: "ABC", Name: "Acme Corp"}
	expectedJSON, _ := json.Marshal(found)

	mock.ExpectGet("symbols:code:ABC").SetErr(errors.New("connection refused"))
	mock.ExpectSet("symbols:code:ABC", expectedJSON, time.Hour).SetErr(errors.New("connection refused"))

	inner := &mockSymbolStore{
		findByCodeFn: func(ctx context.Context, code string) (*entity.Symbol, error) {
			return found, nil
		},
	}

	repo := NewCachingSymbolRepository(rdb, time.Hour, inner, "symbols")
	s, err := repo.FindByCode(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "Acme Corp" {
		t.Errorf("expected Acme Corp, got %q", s.Name)
	}
}

// TestCachingSymbolRepository_ListAll_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingSymbolRepository_ListAll_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected := []entity.Symbol{{Code: "ABC", Name: "Acme Corp"}}
	expectedJSON, _ := json.Marshal(expected)

	mock.ExpectGet("symbols:all").SetVal("invalid json")
	mock.ExpectDel("symbols:all").SetVal(1)
	mock.ExpectSet("symbols:all", expectedJSON, time.Hour).SetVal("OK")

	inner := &mockSymbolStore{
		listAllFn: func(ctx context.Context) ([]entity.Symbol, error) {
			return expected, nil
		},
	}

	repo := NewCachingSymbolRepository(rdb, time.Hour, inner, "symbols")
	out, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("expected 1 symbol, got %d", len(out))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSymbolRepository_ListAll_InnerError は内部リポジトリのエラーが伝播されることを検証します。
func TestCachingSymbolRepository_ListAll_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("database error")
	mock.ExpectGet("symbols:all").RedisNil()

	inner := &mockSymbolStore{
		listAllFn: func(ctx context.Context) ([]entity.Symbol, error) {
			return nil, expectedErr
		},
	}

	repo := NewCachingSymbolRepository(rdb, time.Hour, inner, "symbols")
	_, err := repo.ListAll(context.Background())

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

// TestCachingSymbolRepository_ImportBatch_Invalidation は登録後に名前空間のキャッシュが無効化されることを検証します。
func TestCachingSymbolRepository_ImportBatch_Invalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "symbols:*", 200).SetVal([]string{"symbols:all", "symbols:code:ABC"}, 0)
	mock.ExpectDel("symbols:all", "symbols:code:ABC").SetVal(2)

	repo := NewCachingSymbolRepository(rdb, time.Hour, &mockSymbolStore{}, "symbols")
	n, err := repo.ImportBatch(context.Background(), []entity.Symbol{{Code: "ABC", Name: "Acme Corp"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 inserted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSymbolRepository_ImportBatch_NothingInserted は登録件数0ならキャッシュに触れないことを検証します。
func TestCachingSymbolRepository_ImportBatch_NothingInserted(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	inner := &mockSymbolStore{
		importBatchFn: func(ctx context.Context, symbols []entity.Symbol) (int64, error) {
			return 0, nil
		},
	}

	repo := NewCachingSymbolRepository(rdb, time.Hour, inner, "symbols")
	if _, err := repo.ImportBatch(context.Background(), []entity.Symbol{{Code: "ABC"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSymbolRepository_ImportBatch_InnerError は内部リポジトリのエラーが伝播されることを検証します。
func TestCachingSymbolRepository_ImportBatch_InnerError(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("insert error")
	inner := &mockSymbolStore{
		importBatchFn: func(ctx context.Context, symbols []entity.Symbol) (int64, error) {
			return 0, expectedErr
		},
	}

	repo := NewCachingSymbolRepository(nil, time.Hour, inner, "symbols")
	_, err := repo.ImportBatch(context.Background(), []entity.Symbol{{Code: "ABC"}})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

// TestSafe はsafe関数が異なるコードを異なるキーに写すことを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"ABC", "ABC"},
		{"BRK A", "BRK+A"},
		{"BRK_A", "BRK_A"},
		{"key:value", "key%3Avalue"},
		{"a*b", "a%2Ab"},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if result := safe(tt.input); result != tt.expected {
				t.Errorf("safe(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
