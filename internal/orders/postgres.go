package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostgresStore keeps orders in a PostgreSQL table through gorm. The pool
// behind db is the only state shared between requests.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore wraps an open gorm handle.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema enables pgcrypto for gen_random_uuid() and creates the
// orders table if it is missing. Safe to run on every start.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		return fmt.Errorf("create pgcrypto extension: %w", err)
	}
	if err := db.AutoMigrate(&Order{}); err != nil {
		return fmt.Errorf("migrate orders table: %w", err)
	}
	return nil
}

// Create inserts one row; id and created_at come back from the database defaults.
func (s *PostgresStore) Create(ctx context.Context, o *Order) error {
	o.ID = ""
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var o Order
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	return &o, nil
}

// Health runs a read-only round trip and reports the server clock and version.
func (s *PostgresStore) Health(ctx context.Context) (HealthStatus, error) {
	var row HealthStatus
	err := s.db.WithContext(ctx).Raw("SELECT now() AS now, version() AS version").Scan(&row).Error
	if err != nil {
		return HealthStatus{}, fmt.Errorf("health query: %w", err)
	}
	return row, nil
}
