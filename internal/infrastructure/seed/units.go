// Package seed loads the default units of measure.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	appcatalog "github.com/erp/product-dimension/internal/application/catalog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed units.yaml
var defaultUnits []byte

type unitsFile struct {
	Units []unitEntry `yaml:"units"`
}

type unitEntry struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Factor   string `yaml:"factor"`
}

// DefaultUnits returns the built-in unit list
func DefaultUnits() ([]appcatalog.CreateUnitOfMeasureRequest, error) {
	return ParseUnits(defaultUnits)
}

// LoadUnits reads a unit list from path, or the built-in list when path is empty
func LoadUnits(path string) ([]appcatalog.CreateUnitOfMeasureRequest, error) {
	if path == "" {
		return DefaultUnits()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read units file: %w", err)
	}
	units, err := ParseUnits(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return units, nil
}

// ParseUnits decodes a YAML unit list
func ParseUnits(data []byte) ([]appcatalog.CreateUnitOfMeasureRequest, error) {
	var f unitsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid units yaml: %w", err)
	}

	seen := make(map[string]bool, len(f.Units))
	out := make([]appcatalog.CreateUnitOfMeasureRequest, 0, len(f.Units))
	for i, u := range f.Units {
		if u.Code == "" {
			return nil, fmt.Errorf("unit %d: code is required", i)
		}
		if seen[u.Code] {
			return nil, fmt.Errorf("unit %s: duplicate code", u.Code)
		}
		seen[u.Code] = true

		factor, err := decimal.NewFromString(u.Factor)
		if err != nil {
			return nil, fmt.Errorf("unit %s: invalid factor %q: %w", u.Code, u.Factor, err)
		}
		out = append(out, appcatalog.CreateUnitOfMeasureRequest{
			Code:     u.Code,
			Name:     u.Name,
			Category: u.Category,
			Factor:   factor,
		})
	}
	return out, nil
}

// UnitSeeder is satisfied by the unit of measure service
type UnitSeeder interface {
	SeedDefaults(ctx context.Context, defaults []appcatalog.CreateUnitOfMeasureRequest) (int, error)
}

// SeedUnits creates the units from path (or the built-in list) that do not exist yet
func SeedUnits(ctx context.Context, seeder UnitSeeder, path string, logger *zap.Logger) error {
	units, err := LoadUnits(path)
	if err != nil {
		return err
	}
	created, err := seeder.SeedDefaults(ctx, units)
	if err != nil {
		return fmt.Errorf("failed to seed units of measure: %w", err)
	}
	logger.Info("Units of measure seeded",
		zap.Int("created", created),
		zap.Int("known", len(units)),
	)
	return nil
}
