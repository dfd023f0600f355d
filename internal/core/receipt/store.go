package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound 找不到收據紀錄
var ErrNotFound = errors.New("receipt not found")

// Record 一次收據解析的紀錄
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Items     []string  `json:"items"`
	Strategy  string    `json:"strategy"`
	Model     string    `json:"model,omitempty"`
	RawText   string    `json:"rawText,omitempty"`
}

// Store 收據紀錄倉庫，只新增不修改
type Store interface {
	Put(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
}

// MemoryStore 行程內的紀錄倉庫
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore 創建記憶體倉庫
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Put 儲存紀錄（複製一份）
func (s *MemoryStore) Put(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.Items = append([]string(nil), rec.Items...)
	s.records[rec.ID] = cp
	return nil
}

// Get 讀取紀錄
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Items = append([]string(nil), rec.Items...)
	return &rec, nil
}

// Len 紀錄數
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// RedisStore 以 Redis 儲存紀錄，多個服務實例可共用
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 創建 Redis 倉庫
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "receipt:"}
}

// Put 儲存紀錄
func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+rec.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store receipt: %w", err)
	}
	return nil
}

// Get 讀取紀錄
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipt: %w", err)
	}
	return &rec, nil
}
