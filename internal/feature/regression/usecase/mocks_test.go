package usecase_test

import (
	"context"
	"errors"
	"sync"

	"stock_predictor/internal/feature/regression/domain/entity"
	"stock_predictor/internal/feature/regression/usecase"
)

// mockSymbolLookup はSymbolLookupインターフェースのモック実装です。
type mockSymbolLookup struct {
	names map[string]string
	err   error
}

func (m *mockSymbolLookup) Lookup(ctx context.Context, code string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	name, ok := m.names[code]
	return name, ok, nil
}

// memoryModelStore はModelStoreインターフェースのメモリ実装です。
type memoryModelStore struct {
	mu        sync.Mutex
	models    map[string]*entity.FittedModel
	saveErr   error
	loadErr   error
	saveCalls int
}

func newMemoryModelStore() *memoryModelStore {
	return &memoryModelStore{models: map[string]*entity.FittedModel{}}
}

func (m *memoryModelStore) Save(ctx context.Context, sessionID string, model *entity.FittedModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *model
	m.models[sessionID] = &cp
	return nil
}

func (m *memoryModelStore) Load(ctx context.Context, sessionID string) (*entity.FittedModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	model, ok := m.models[sessionID]
	if !ok {
		return nil, usecase.ErrModelNotFound
	}
	cp := *model
	return &cp, nil
}

func (m *memoryModelStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.models, sessionID)
	return nil
}

// mockRenderer はPlotRendererインターフェースのモック実装です。
type mockRenderer struct {
	stageErr  error
	commitErr error
	staged    []*mockStagedPlot
}

func (m *mockRenderer) Stage(points []entity.TimeSeriesPoint, model *entity.FittedModel) (usecase.StagedPlot, error) {
	if m.stageErr != nil {
		return nil, m.stageErr
	}
	s := &mockStagedPlot{commitErr: m.commitErr}
	m.staged = append(m.staged, s)
	return s, nil
}

type mockStagedPlot struct {
	commitErr error
	committed bool
	discarded bool
}

func (s *mockStagedPlot) Commit() error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = true
	return nil
}

func (s *mockStagedPlot) Discard() error {
	s.discarded = true
	return nil
}

// errStore はストアが返すインフラエラーです。
var errStore = errors.New("store unavailable")
