package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// Validator は必須項目の検証を行うパラメータ型
type Validator interface {
	Validate() error
}

// Typed は型付きのハンドラーをHandlerFuncに変換する
// paramsはPにデコードされ、PがValidatorを実装していればハンドラー呼び出し前に検証する
func Typed[P any](fn func(ctx context.Context, p P) (any, error)) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (any, error) {
		var p P
		if len(params) > 0 && string(params) != "null" {
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, decodeError(err)
			}
		}
		if v, ok := any(&p).(Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		return fn(ctx, p)
	}
}

// decodeError はJSONデコードエラーをInvalidParameterErrorに変換
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &model.InvalidParameterError{
			Field:  typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return &model.InvalidParameterError{Reason: err.Error()}
}
