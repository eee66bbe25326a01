package cache

import (
	"context"
	"sync"
	"time"
)

// Entry はキャッシュされた値と保存時刻
type Entry struct {
	Value    []byte
	StoredAt time.Time
}

// Store はキャッシュエントリの保存先
type Store interface {
	// Load はエントリを返す。存在しなければ ok=false
	Load(ctx context.Context, key string) (entry Entry, ok bool, err error)
	// Save はエントリを上書き保存する
	Save(ctx context.Context, key string, entry Entry) error
	Close() error
}

// MemoryStore はプロセス内のStore実装
// キーごとにslotを持ち、ロックはslot単位（キャッシュ全体のロックは取らない）
type MemoryStore struct {
	slots sync.Map // map[string]*slot
}

type slot struct {
	mu    sync.RWMutex
	entry Entry
}

// NewMemoryStore は新しいMemoryStoreを生成
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load はエントリを返す
func (s *MemoryStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	v, ok := s.slots.Load(key)
	if !ok {
		return Entry{}, false, nil
	}
	sl := v.(*slot)
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.entry, true, nil
}

// Save はエントリを上書きする（後勝ち）
func (s *MemoryStore) Save(ctx context.Context, key string, entry Entry) error {
	v, _ := s.slots.LoadOrStore(key, &slot{})
	sl := v.(*slot)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.entry = entry
	return nil
}

// Len は保持しているキー数を返す
func (s *MemoryStore) Len() int {
	n := 0
	s.slots.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close は何もしない
func (s *MemoryStore) Close() error {
	return nil
}
