// Package store は、データの永続化機能を提供します。
package store

import (
	"errors"
	"fmt"
)

// ErrorType はリポジトリエラーの種別を表す識別子です。
type ErrorType string

const (
	TypeNotFound      ErrorType = "NotFoundError"
	TypeQuotaExceeded ErrorType = "QuotaExceededError"
	TypeUnknown       ErrorType = "UnknownError"
	TypeSave          ErrorType = "SaveError"
	TypeFindByID      ErrorType = "FindByIdError"
	TypeFindAll       ErrorType = "FindAllError"
	TypeDelete        ErrorType = "DeleteError"
)

// ErrNotFound は NotFoundError に対して errors.Is で一致するセンチネルエラーです。
var ErrNotFound = errors.New("entity not found")

// RepositoryError は永続化境界で発生するエラーの共通インターフェースです。
type RepositoryError interface {
	error
	Type() ErrorType
	Metadata() map[string]any
}

// NotFoundError は指定IDのエンティティが存在しない場合のエラーです。
type NotFoundError struct {
	EntityID string
	message  string
	metadata map[string]any
}

// NewNotFoundError はNotFoundErrorを生成します。
func NewNotFoundError(entityID string) *NotFoundError {
	return &NotFoundError{
		EntityID: entityID,
		message:  fmt.Sprintf("Entity with id '%s' not found", entityID),
	}
}

func (e *NotFoundError) Error() string            { return e.message }
func (e *NotFoundError) Type() ErrorType          { return TypeNotFound }
func (e *NotFoundError) Metadata() map[string]any { return e.metadata }
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }

// QuotaExceededError はストレージの容量上限に達した場合のエラーです。
type QuotaExceededError struct {
	message string
}

// NewQuotaExceededError はQuotaExceededErrorを生成します。
func NewQuotaExceededError() *QuotaExceededError {
	return &QuotaExceededError{message: "Storage quota exceeded"}
}

func (e *QuotaExceededError) Error() string            { return e.message }
func (e *QuotaExceededError) Type() ErrorType          { return TypeQuotaExceeded }
func (e *QuotaExceededError) Metadata() map[string]any { return nil }

// UnknownError は分類できないエラーをラップします。
type UnknownError struct {
	Original error
}

// NewUnknownError はUnknownErrorを生成します。
func NewUnknownError(original error) *UnknownError {
	return &UnknownError{Original: original}
}

func (e *UnknownError) Error() string {
	if e.Original == nil {
		return "unknown repository error"
	}
	return e.Original.Error()
}
func (e *UnknownError) Type() ErrorType          { return TypeUnknown }
func (e *UnknownError) Metadata() map[string]any { return nil }
func (e *UnknownError) Unwrap() error            { return e.Original }

// RequestError はステートメントやトランザクション単位の失敗を表します。
// Original はストレージエンジンのエラーで、取得できない場合はnilです。
type RequestError struct {
	Original error
	kind     ErrorType
	fallback string
}

func (e *RequestError) Error() string {
	if e.Original == nil {
		return e.fallback
	}
	return e.fallback + ": " + e.Original.Error()
}
func (e *RequestError) Type() ErrorType          { return e.kind }
func (e *RequestError) Metadata() map[string]any { return nil }
func (e *RequestError) Unwrap() error            { return e.Original }

// SaveError は保存リクエストの失敗です。
type SaveError struct{ RequestError }

// FindByIDError はID検索リクエストの失敗です。
type FindByIDError struct{ RequestError }

// FindAllError は全件取得リクエストの失敗です。
type FindAllError struct{ RequestError }

// DeleteError は削除リクエストの失敗です。
type DeleteError struct{ RequestError }

// NewSaveError はSaveErrorを生成します。
func NewSaveError(original error) *SaveError {
	return &SaveError{RequestError{Original: original, kind: TypeSave, fallback: "database save request failed"}}
}

// NewFindByIDError はFindByIDErrorを生成します。
func NewFindByIDError(original error) *FindByIDError {
	return &FindByIDError{RequestError{Original: original, kind: TypeFindByID, fallback: "database findById request failed"}}
}

// NewFindAllError はFindAllErrorを生成します。
func NewFindAllError(original error) *FindAllError {
	return &FindAllError{RequestError{Original: original, kind: TypeFindAll, fallback: "database findAll request failed"}}
}

// NewDeleteError はDeleteErrorを生成します。
func NewDeleteError(original error) *DeleteError {
	return &DeleteError{RequestError{Original: original, kind: TypeDelete, fallback: "database delete request failed"}}
}

// CorruptRecordError は保存済みレコードが再検証に失敗したことを示します。
// 通常のResultエラーではなく、ストレージ破損として呼び出し元に返されます。
type CorruptRecordError struct {
	ID     string
	Field  string
	Reason string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("failed to map record %q to domain: %s - %s", e.ID, e.Field, e.Reason)
}
