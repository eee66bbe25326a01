package model

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestRequest_JSONUnmarshal はJSONからRequestが正しくデシリアライズされることをテスト
func TestRequest_JSONUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
		validate func(*testing.T, *Request)
	}{
		{
			name:     "with params object",
			jsonData: `{"jsonrpc":"2.0","id":1,"method":"ReadResource","params":{"resourceId":"list_boards"}}`,
			validate: func(t *testing.T, req *Request) {
				if req.JSONRPC != "2.0" {
					t.Errorf("expected JSONRPC %q, got %q", "2.0", req.JSONRPC)
				}
				if req.ID != float64(1) { // JSON numbersはfloat64にデコードされる
					t.Errorf("expected ID %v, got %v", 1, req.ID)
				}
				if req.Method != "ReadResource" {
					t.Errorf("expected Method %q, got %q", "ReadResource", req.Method)
				}
				if string(req.Params) != `{"resourceId":"list_boards"}` {
					t.Errorf("unexpected params: %s", req.Params)
				}
			},
		},
		{
			name:     "without jsonrpc and id",
			jsonData: `{"method":"ListResources"}`,
			validate: func(t *testing.T, req *Request) {
				if req.JSONRPC != "" {
					t.Errorf("expected empty JSONRPC, got %q", req.JSONRPC)
				}
				if req.ID != nil {
					t.Errorf("expected nil ID, got %v", req.ID)
				}
				if len(req.Params) != 0 {
					t.Errorf("expected no params, got %s", req.Params)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			if err := json.Unmarshal([]byte(tt.jsonData), &req); err != nil {
				t.Fatalf("failed to unmarshal Request: %v", err)
			}
			tt.validate(t, &req)
		})
	}
}

// TestResponse_JSONMarshal はResponseが正しくJSONシリアライズされることをテスト
func TestResponse_JSONMarshal(t *testing.T) {
	response := NewResponse(1, &ContentResult{Content: `{"id":"1"}`})

	data, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("failed to marshal Response: %v", err)
	}

	expected := `{"jsonrpc":"2.0","id":1,"result":{"content":"{\"id\":\"1\"}"}}`
	if string(data) != expected {
		t.Errorf("expected JSON %q, got %q", expected, string(data))
	}
}

// TestErrorResponse_ParseError_IDNull はパース失敗時のErrorResponseでIDがnullになることをテスト
func TestErrorResponse_ParseError_IDNull(t *testing.T) {
	data, err := json.Marshal(NewParseError("unexpected end of JSON input"))
	if err != nil {
		t.Fatalf("failed to marshal ErrorResponse: %v", err)
	}

	expected := `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error","data":{"kind":"ParseError","detail":"unexpected end of JSON input"}}}`
	if string(data) != expected {
		t.Errorf("expected JSON %q, got %q", expected, string(data))
	}
}

// TestNewMissingParameter はフィールド名がdataに入ることをテスト
func TestNewMissingParameter(t *testing.T) {
	resp := NewMissingParameter(1, "resourceId")

	if resp.Error.Code != ErrCodeInvalidParams {
		t.Errorf("expected Error Code %d, got %d", ErrCodeInvalidParams, resp.Error.Code)
	}
	if resp.Error.Data == nil || resp.Error.Data.Kind != KindMissingParameter {
		t.Fatalf("expected kind %q, got %+v", KindMissingParameter, resp.Error.Data)
	}
	if resp.Error.Data.Field != "resourceId" {
		t.Errorf("expected field 'resourceId', got %q", resp.Error.Data.Field)
	}
	if resp.Error.Message != "resourceId parameter is required" {
		t.Errorf("unexpected message: %q", resp.Error.Message)
	}
}

// TestNewUnsupportedMethod はUnsupportedMethodが-32601コードを持つことをテスト
func TestNewUnsupportedMethod(t *testing.T) {
	resp := NewUnsupportedMethod("req-1", "DeleteEverything")

	if resp.ID != "req-1" {
		t.Errorf("expected ID %v, got %v", "req-1", resp.ID)
	}
	if resp.Error.Code != ErrCodeMethodNotFound {
		t.Errorf("expected Error Code %d, got %d", ErrCodeMethodNotFound, resp.Error.Code)
	}
	if resp.Error.Data.Kind != KindUnsupportedMethod || resp.Error.Data.Method != "DeleteEverything" {
		t.Errorf("unexpected data: %+v", resp.Error.Data)
	}
}

// TestNewInternalError はInternalErrorが-32603コードを持つことをテスト
func TestNewInternalError(t *testing.T) {
	resp := NewInternalError(1, "unexpected failure")

	if resp.Error.Code != ErrCodeInternalError {
		t.Errorf("expected Error Code %d, got %d", ErrCodeInternalError, resp.Error.Code)
	}
	if resp.Error.Data.Kind != KindInternal {
		t.Errorf("expected kind %q, got %q", KindInternal, resp.Error.Data.Kind)
	}
}

// TestMissingParameterError はerrors.Isでセンチネルと一致することをテスト
func TestMissingParameterError(t *testing.T) {
	err := Missing("board_id")

	if !errors.Is(err, ErrMissingParameter) {
		t.Error("expected errors.Is(err, ErrMissingParameter)")
	}
	var mp *MissingParameterError
	if !errors.As(err, &mp) || mp.Field != "board_id" {
		t.Errorf("expected field board_id, got %v", err)
	}
	if err.Error() != "board_id parameter is required" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

// TestID_UnmarshalJSON は数値・文字列のIDを受け付けることをテスト
func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    ID
		wantErr bool
	}{
		{`12345678`, "12345678", false},
		{`"12345678"`, "12345678", false},
		{`"topics"`, "topics", false},
		{`null`, "", false},
		{`1.5`, "", true},
		{`true`, "", true},
		{`{}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.want {
				t.Errorf("expected %q, got %q", tt.want, id)
			}
		})
	}
}

func TestID_Validate(t *testing.T) {
	tests := []struct {
		id          ID
		wantMissing bool
		wantInvalid bool
	}{
		{"12345678", false, false},
		{"", true, false},
		{"abc", false, true},
		{"12ab", false, true},
		{"1.5", false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			err := tt.id.Validate("board_id")
			if got := errors.Is(err, ErrMissingParameter); got != tt.wantMissing {
				t.Errorf("missing: expected %v, got %v (%v)", tt.wantMissing, got, err)
			}
			var ip *InvalidParameterError
			if got := errors.As(err, &ip); got != tt.wantInvalid {
				t.Errorf("invalid: expected %v, got %v (%v)", tt.wantInvalid, got, err)
			}
			if ip != nil && ip.Field != "board_id" {
				t.Errorf("expected field board_id, got %q", ip.Field)
			}
		})
	}
}
