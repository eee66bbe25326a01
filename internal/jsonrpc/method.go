package jsonrpc

// Method はルーターが受け付けるメソッド
type Method int

// メソッド一覧
const (
	MethodListResources Method = iota + 1
	MethodReadResource
	MethodListTools
	MethodCallTool
	MethodListPrompts
	MethodReadPrompt
)

var methodNames = map[Method]string{
	MethodListResources: "ListResources",
	MethodReadResource:  "ReadResource",
	MethodListTools:     "ListTools",
	MethodCallTool:      "CallTool",
	MethodListPrompts:   "ListPrompts",
	MethodReadPrompt:    "ReadPrompt",
}

var methodsByName = func() map[string]Method {
	m := make(map[string]Method, len(methodNames))
	for method, name := range methodNames {
		m[name] = method
	}
	return m
}()

// ParseMethod はメソッド名をMethodに変換する
// 大文字小文字は区別する
func ParseMethod(name string) (Method, bool) {
	m, ok := methodsByName[name]
	return m, ok
}

// String はメソッド名を返す
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "Unknown"
}

// Methods は全メソッドを定義順に返す
func Methods() []Method {
	return []Method{
		MethodListResources,
		MethodReadResource,
		MethodListTools,
		MethodCallTool,
		MethodListPrompts,
		MethodReadPrompt,
	}
}
