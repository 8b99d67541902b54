package persistence

import (
	"strings"

	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductTemplateSortFields contains allowed sort fields for product templates.
// The physical attributes sort by their mirrored value.
var ProductTemplateSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"name":          true,
	"weight":        true,
	"weight_in_uom": true,
	"height":        true,
	"length":        true,
	"width":         true,
	"volume":        true,
	"density":       true,
}

// UnitOfMeasureSortFields contains allowed sort fields for units of measure
var UnitOfMeasureSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"category":   true,
	"factor":     true,
}

// applyPaging applies the validated ordering and pagination of a filter.
// id is always the last ordering key so pages are stable.
func applyPaging(query *gorm.DB, page, pageSize int, orderBy, orderDir string, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(orderBy, allowed, defaultField)
	dir := "ASC"
	if orderDir != "" {
		dir = ValidateSortOrder(orderDir)
	}
	query = query.Order(field + " " + dir)
	if field != "id" {
		query = query.Order("id ASC")
	}
	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	return query
}

// likePattern builds a case-insensitive LIKE pattern that works on both
// PostgreSQL and SQLite; the column side must be wrapped in LOWER().
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
