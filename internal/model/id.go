package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID は数値・文字列どちらのJSONでも受け付ける識別子
// Monday.comのIDは数値で渡されることも文字列で渡されることもある
type ID string

// UnmarshalJSON は数値または文字列をIDとして読み込む
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("id must be an integer: %s", n)
	}
	*id = ID(n.String())
	return nil
}

// String はIDを文字列で返す
func (id ID) String() string {
	return string(id)
}

// IsZero は未指定かどうかを返す
func (id ID) IsZero() bool {
	return id == ""
}

// Validate は必須の数値IDとして検証する
// 未指定はMissingParameter、数値でなければInvalidParameter
func (id ID) Validate(field string) error {
	if id.IsZero() {
		return Missing(field)
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err != nil {
		return &InvalidParameterError{Field: field, Reason: "must be numeric"}
	}
	return nil
}
