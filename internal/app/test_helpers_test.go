package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/example/schemapilot/internal/core/migration"
	"github.com/example/schemapilot/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.HistoryRepository = (*mockHistoryRepository)(nil)
	_ secondary.TargetSession     = (*mockSession)(nil)
	_ secondary.TargetConnector   = (*mockConnector)(nil)
	_ secondary.ScriptRepository  = (*mockScriptRepository)(nil)
	_ secondary.HistoryCache      = (*mockHistoryCache)(nil)
)

// mockHistoryRepository implements secondary.HistoryRepository in memory.
type mockHistoryRepository struct {
	records     []*secondary.HistoryRecord
	ensureCalls int
	appendCalls int
	ensureErr   error
	readErr     error
	nextRankErr error
	appendErr   error
	// beforeAppend runs ahead of every insert; used to simulate a concurrent writer.
	beforeAppend func(m *mockHistoryRepository)
}

func newMockHistoryRepository() *mockHistoryRepository {
	return &mockHistoryRepository{}
}

func (m *mockHistoryRepository) EnsureSchema(ctx context.Context) error {
	m.ensureCalls++
	return m.ensureErr
}

func (m *mockHistoryRepository) ReadAll(ctx context.Context) ([]*secondary.HistoryRecord, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := append([]*secondary.HistoryRecord(nil), m.records...)
	sort.Slice(out, func(i, j int) bool { return out[i].InstalledRank < out[j].InstalledRank })
	return out, nil
}

func (m *mockHistoryRepository) NextRank(ctx context.Context) (int, error) {
	if m.nextRankErr != nil {
		return 0, m.nextRankErr
	}
	maxRank := 0
	for _, r := range m.records {
		if r.InstalledRank > maxRank {
			maxRank = r.InstalledRank
		}
	}
	return maxRank + 1, nil
}

func (m *mockHistoryRepository) Append(ctx context.Context, record *secondary.HistoryRecord) error {
	m.appendCalls++
	if m.beforeAppend != nil {
		m.beforeAppend(m)
	}
	if m.appendErr != nil {
		return m.appendErr
	}
	for _, r := range m.records {
		if r.InstalledRank == record.InstalledRank {
			return fmt.Errorf("failed to append rank %d: %w", record.InstalledRank, secondary.ErrRankConflict)
		}
	}
	stored := *record
	m.records = append(m.records, &stored)
	return nil
}

func (m *mockHistoryRepository) seed(rank int, script, version string, success bool) {
	r := &secondary.HistoryRecord{
		InstalledRank: rank,
		Description:   script,
		Type:          migration.ScriptType,
		Script:        script,
		InstalledBy:   "someone",
		Success:       success,
	}
	if version != "" {
		r.Version = &version
	}
	m.records = append(m.records, r)
}

// mockSession implements secondary.TargetSession.
type mockSession struct {
	history   *mockHistoryRepository
	executed  []string
	execErrs  map[string]error // keyed by script content
	commitErr error
	commits   int
	closes    int
}

func (m *mockSession) Execute(ctx context.Context, content string) error {
	if err, ok := m.execErrs[content]; ok {
		return err
	}
	m.executed = append(m.executed, content)
	return nil
}

func (m *mockSession) History() secondary.HistoryRepository {
	return m.history
}

func (m *mockSession) Commit(ctx context.Context) error {
	m.commits++
	return m.commitErr
}

func (m *mockSession) Close() error {
	m.closes++
	return nil
}

// mockConnector implements secondary.TargetConnector and always hands out the same session.
type mockConnector struct {
	session    *mockSession
	connectErr error
	connects   int
}

func newMockConnector() *mockConnector {
	return &mockConnector{
		session: &mockSession{
			history:  newMockHistoryRepository(),
			execErrs: make(map[string]error),
		},
	}
}

func (m *mockConnector) Connect(ctx context.Context) (secondary.TargetSession, error) {
	m.connects++
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	return m.session, nil
}

func (m *mockConnector) Key() string {
	return "postgres:127.0.0.1:5432:app:public"
}

func (m *mockConnector) history() *mockHistoryRepository {
	return m.session.history
}

// mockScriptRepository implements secondary.ScriptRepository in memory.
type mockScriptRepository struct {
	files   map[string]*secondary.ScriptFileRecord // keyed by relative path
	scanErr error
}

func newMockScriptRepository() *mockScriptRepository {
	return &mockScriptRepository{files: make(map[string]*secondary.ScriptFileRecord)}
}

func (m *mockScriptRepository) add(relDir, name, content string) *secondary.ScriptFileRecord {
	version, description := migration.ParseName(name)
	rel := path.Join(relDir, name)
	r := &secondary.ScriptFileRecord{
		ID:          "id:" + rel,
		Path:        "/scripts/" + rel,
		RelativeDir: relDir,
		Name:        name,
		Version:     version,
		Description: description,
		Content:     content,
	}
	m.files[rel] = r
	return r
}

func (m *mockScriptRepository) Scan(ctx context.Context, root string) ([]*secondary.ScriptFileRecord, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*secondary.ScriptFileRecord, 0, len(keys))
	for _, k := range keys {
		copied := *m.files[k]
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockScriptRepository) Write(ctx context.Context, root, relDir, name, content string) (*secondary.ScriptFileRecord, error) {
	return m.add(relDir, name, content), nil
}

func (m *mockScriptRepository) Rename(ctx context.Context, root, relDir, oldName, newName string) error {
	oldRel := path.Join(relDir, oldName)
	r, ok := m.files[oldRel]
	if !ok {
		return errors.New("script not found")
	}
	delete(m.files, oldRel)
	m.add(relDir, newName, r.Content)
	return nil
}

func (m *mockScriptRepository) Delete(ctx context.Context, root, relDir, name string) error {
	rel := path.Join(relDir, name)
	if _, ok := m.files[rel]; !ok {
		return errors.New("script not found")
	}
	delete(m.files, rel)
	return nil
}

// mockHistoryCache implements secondary.HistoryCache in memory.
type mockHistoryCache struct {
	snapshots map[string][]*secondary.HistoryRecord
	writes    int
}

func newMockHistoryCache() *mockHistoryCache {
	return &mockHistoryCache{snapshots: make(map[string][]*secondary.HistoryRecord)}
}

func (m *mockHistoryCache) TryRead(ctx context.Context, key string) ([]*secondary.HistoryRecord, bool) {
	records, ok := m.snapshots[key]
	return records, ok
}

func (m *mockHistoryCache) Write(ctx context.Context, key string, records []*secondary.HistoryRecord) {
	m.writes++
	m.snapshots[key] = records
}
