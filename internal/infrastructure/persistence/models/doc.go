// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Column names of the physical attributes equal the catalog.Field names, so a
// catalog.Values map can be turned into a column update without translation.
//
// Structure:
//   - base.go: base persistence models (BaseModel, AggregateModel)
//   - catalog.go: product templates, product variants and units of measure
package models
