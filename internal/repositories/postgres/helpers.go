package postgres

import (
	"errors"
	"strings"

	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers holds query helpers used across repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// getDB returns tx when the caller is inside a transaction.
func (h *SharedHelpers) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return h.db
}

// ApplyPaginationAndSort applies ordering from an allow-list and limit/offset.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, allowed map[string]string, limit, offset int) *gorm.DB {
	column, ok := allowed[sortBy]
	if !ok {
		column = allowed[""]
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	if column != "" {
		query = query.Order(column + " " + direction).Order("id " + direction)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}
