// Package model は、アプリケーションのドメインモデル定義を提供します。
package model

// FieldError は値オブジェクトやエンティティのバリデーションエラーを表す型です。
// どのフィールドが不正だったかを Field に保持します。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// newFieldError はFieldErrorを生成するヘルパー関数
func newFieldError(field, msg string) FieldError {
	return FieldError{Field: field, Message: msg}
}
