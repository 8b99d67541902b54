package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitStore caches units of measure by key
type UnitStore interface {
	// Get returns the cached unit; the bool is false on a miss
	Get(ctx context.Context, key string) (*catalog.UnitOfMeasure, bool, error)
	Set(ctx context.Context, key string, unit *catalog.UnitOfMeasure, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// unitSnapshot is the cached form of a unit
type unitSnapshot struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Factor    decimal.Decimal `json:"factor"`
	Active    bool            `json:"active"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func snapshotOf(u *catalog.UnitOfMeasure) unitSnapshot {
	return unitSnapshot{
		ID:        u.ID,
		Code:      u.Code,
		Name:      u.Name,
		Category:  string(u.Category),
		Factor:    u.Factor,
		Active:    u.Active,
		Version:   u.Version,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (s unitSnapshot) unit() *catalog.UnitOfMeasure {
	return &catalog.UnitOfMeasure{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
			Version:    s.Version,
		},
		Code:     s.Code,
		Name:     s.Name,
		Category: catalog.UnitCategory(s.Category),
		Factor:   s.Factor,
		Active:   s.Active,
	}
}

func encodeUnit(u *catalog.UnitOfMeasure) ([]byte, error) {
	return json.Marshal(snapshotOf(u))
}

func decodeUnit(data []byte) (*catalog.UnitOfMeasure, error) {
	var s unitSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.unit(), nil
}

func unitIDKey(id uuid.UUID) string {
	return "id:" + id.String()
}

func unitCodeKey(code string) string {
	return "code:" + strings.ToUpper(code)
}
