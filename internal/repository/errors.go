// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"hotorflop/internal/models"

	"gorm.io/gorm"
)

// storeError wraps a driver failure as STORE_UNAVAILABLE. Unique violations
// become CONFLICT and AppErrors pass through.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError("resource already exists")
	}
	return models.NewStoreUnavailableError(err)
}

// lookupError maps a missing row to NOT_FOUND and anything else to storeError.
func lookupError(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return storeError(err)
}

// likeEscaper neutralizes LIKE wildcards in user search terms.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is a lowercase LIKE pattern matching term anywhere. Use it
// with ESCAPE '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
