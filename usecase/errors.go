// Package usecase はアプリケーション層のユースケースを提供します。
package usecase

import (
	"github.com/stsysd/gameshelf/model"
	"github.com/stsysd/gameshelf/store"
)

// Error type discriminators.
const (
	TypeValidation = "Validation"
	TypeRepository = "Repository"
)

// ApplicationError はユースケースが返すエラーの共通インターフェースです。
type ApplicationError interface {
	error
	Type() string
	Metadata() map[string]any
}

// ValidationError はドメインの検証に失敗したことを表します。
type ValidationError struct {
	Message string
	Field   string
	meta    map[string]any
}

func newValidationError(fe model.FieldError) *ValidationError {
	return &ValidationError{
		Message: fe.Message,
		Field:   fe.Field,
		meta:    map[string]any{"domainError": fe},
	}
}

func (e *ValidationError) Error() string            { return e.Message }
func (e *ValidationError) Type() string             { return TypeValidation }
func (e *ValidationError) Metadata() map[string]any { return e.meta }

// DomainError は元になったフィールドエラーを返します。
func (e *ValidationError) DomainError() (model.FieldError, bool) {
	fe, ok := e.meta["domainError"].(model.FieldError)
	return fe, ok
}

// RepositoryError は永続化層のエラーをアプリケーション層の文脈でラップします。
type RepositoryError struct {
	Message string
	cause   store.RepositoryError
}

func newRepositoryError(message string, cause store.RepositoryError) *RepositoryError {
	return &RepositoryError{Message: message + ": " + cause.Error(), cause: cause}
}

func (e *RepositoryError) Error() string { return e.Message }
func (e *RepositoryError) Type() string  { return TypeRepository }
func (e *RepositoryError) Metadata() map[string]any {
	return map[string]any{"repositoryError": e.cause}
}

// Unwrap は元のリポジトリエラーを返します。
func (e *RepositoryError) Unwrap() error { return e.cause }
