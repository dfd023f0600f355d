package pantry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrEmptyName 食材名稱為空
var ErrEmptyName = errors.New("pantry item name is required")

// Item 一筆庫存資料，同名食材不合併
type Item struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Quantity  string    `db:"quantity" json:"quantity"`
	Expiry    *string   `db:"expiry" json:"expiry"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewItem 新增庫存的輸入
type NewItem struct {
	Name     string
	Quantity string
	Expiry   *string
}

// Store 以 sqlx 存取庫存資料
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore 創建庫存存取層
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create 新增一筆資料並回傳含 id 的結果
func (s *Store) Create(ctx context.Context, in NewItem) (*Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	item := &Item{
		Name:      name,
		Quantity:  in.Quantity,
		Expiry:    in.Expiry,
		CreatedAt: s.now().UTC(),
	}

	query := s.db.Rebind(`INSERT INTO pantry_items (name, quantity, expiry, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`)
	if err := s.db.QueryRowxContext(ctx, query,
		item.Name, item.Quantity, item.Expiry, item.CreatedAt).Scan(&item.ID); err != nil {
		return nil, fmt.Errorf("pantry.Create: %w", err)
	}
	return item, nil
}

// List 依新增順序列出所有資料
func (s *Store) List(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.db.SelectContext(ctx, &items,
		`SELECT id, name, quantity, expiry, created_at FROM pantry_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("pantry.List: %w", err)
	}
	return items, nil
}

// Ping 檢查資料庫連線
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
