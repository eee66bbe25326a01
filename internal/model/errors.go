package model

import "errors"

// エラー定義
var (
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// MissingParameterError は必須パラメータが欠けている場合のエラー
type MissingParameterError struct {
	Field string
}

func (e *MissingParameterError) Error() string {
	return e.Field + " parameter is required"
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// Missing はMissingParameterErrorを生成
func Missing(field string) error {
	return &MissingParameterError{Field: field}
}

// InvalidParameterError はパラメータの型や値が不正な場合のエラー
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	if e.Field == "" {
		return "invalid parameters: " + e.Reason
	}
	return "invalid " + e.Field + ": " + e.Reason
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
