package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/bootstrap"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/config"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/jsonrpc"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// CallOptions holds parsed call command options
type CallOptions struct {
	Method     string
	Target     string
	Params     string
	Format     string
	ConfigPath string
	UseStdin   bool
}

// rpcHandler handles one JSON-RPC request
type rpcHandler interface {
	Handle(ctx context.Context, requestBytes []byte) []byte
}

// errResponse is returned when the gateway answered with an error envelope
type errResponse struct {
	code    int
	message string
}

func (e *errResponse) Error() string {
	return fmt.Sprintf("gateway returned error %d: %s", e.code, e.message)
}

// parseCallFlags parses command line arguments for call command
func parseCallFlags(args []string) (*CallOptions, error) {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // suppress default error output

	opts := &CallOptions{}

	// Long flags
	fs.StringVar(&opts.Params, "params", "", "Handler parameters as a JSON object")
	fs.StringVar(&opts.Format, "format", "text", "Output format: text|json")
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file path")
	fs.BoolVar(&opts.UseStdin, "stdin", false, "Read handler parameters from stdin")

	// Short flags
	fs.StringVar(&opts.Format, "f", "text", "Output format: text|json")
	fs.StringVar(&opts.ConfigPath, "c", "", "Config file path")

	// 位置引数とフラグは順不同で受け付ける
	var positional, flagArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			continue
		}
		flagArgs = append(flagArgs, arg)
		if takesValue(arg) && !strings.Contains(arg, "=") && i+1 < len(args) {
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}

	if len(positional) == 0 {
		return nil, fmt.Errorf("method is required (one of %s)", strings.Join(methodNames(), ", "))
	}
	if len(positional) > 2 {
		return nil, fmt.Errorf("too many arguments: %s", strings.Join(positional[2:], " "))
	}
	opts.Method = positional[0]
	if len(positional) == 2 {
		opts.Target = positional[1]
	}

	method, ok := jsonrpc.ParseMethod(opts.Method)
	if !ok {
		return nil, fmt.Errorf("unknown method: %s (must be one of %s)", opts.Method, strings.Join(methodNames(), ", "))
	}
	if targetField(method) != "" && opts.Target == "" {
		return nil, fmt.Errorf("%s requires a target id", opts.Method)
	}
	if targetField(method) == "" && opts.Target != "" {
		return nil, fmt.Errorf("%s does not take a target id", opts.Method)
	}

	if opts.Params != "" && opts.UseStdin {
		return nil, fmt.Errorf("--params and --stdin are mutually exclusive")
	}
	if opts.Params != "" && !json.Valid([]byte(opts.Params)) {
		return nil, fmt.Errorf("--params must be valid JSON")
	}

	if opts.Format != "text" && opts.Format != "json" {
		return nil, fmt.Errorf("invalid format: %s (must be text or json)", opts.Format)
	}

	return opts, nil
}

// takesValue reports whether the flag consumes the following argument
func takesValue(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "params", "format", "f", "config", "c":
		return true
	}
	return false
}

func methodNames() []string {
	methods := jsonrpc.Methods()
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.String())
	}
	return names
}

// targetField returns the params field that carries the target id for the method
func targetField(m jsonrpc.Method) string {
	switch m {
	case jsonrpc.MethodReadResource:
		return "resourceId"
	case jsonrpc.MethodCallTool:
		return "name"
	case jsonrpc.MethodReadPrompt:
		return "promptId"
	}
	return ""
}

// buildRequest builds the JSON-RPC request for the call command
func buildRequest(opts *CallOptions) ([]byte, error) {
	method, _ := jsonrpc.ParseMethod(opts.Method)

	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method.String(),
	}
	if field := targetField(method); field != "" {
		params := map[string]any{field: opts.Target}
		if opts.Params != "" {
			params["parameters"] = json.RawMessage(opts.Params)
		} else if method == jsonrpc.MethodCallTool {
			params["parameters"] = json.RawMessage(`{}`)
		}
		req["params"] = params
	}
	return json.Marshal(req)
}

// runCallCmd is the entry point for call command
func runCallCmd(args []string) error {
	opts, err := parseCallFlags(args)
	if err != nil {
		return err
	}

	if opts.UseStdin {
		params, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read params from stdin: %w", err)
		}
		opts.Params = strings.TrimSpace(string(params))
		if !json.Valid([]byte(opts.Params)) {
			return fmt.Errorf("stdin must contain a JSON object")
		}
	}

	configPath, err := config.ResolveConfigPath(opts.ConfigPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	gw, cleanup, err := bootstrap.Initialize(ctx, configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()

	return executeCall(ctx, gw.Handler, opts, os.Stdout)
}

// executeCall sends one request through the handler and writes the formatted response
func executeCall(ctx context.Context, handler rpcHandler, opts *CallOptions, w io.Writer) error {
	reqBytes, err := buildRequest(opts)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	respBytes := handler.Handle(ctx, reqBytes)

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *model.RPCError `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	switch opts.Format {
	case "json":
		if err := formatJSONOutput(w, respBytes); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
	default:
		if envelope.Error == nil {
			if err := formatTextOutput(w, envelope.Result); err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
		}
	}

	if envelope.Error != nil {
		return &errResponse{code: envelope.Error.Code, message: envelope.Error.Message}
	}
	return nil
}

// formatTextOutput prints the result in human-readable form
// content strings are unwrapped and indented
func formatTextOutput(w io.Writer, result json.RawMessage) error {
	var content model.ContentResult
	if err := json.Unmarshal(result, &content); err == nil && content.Content != "" {
		return writeIndented(w, []byte(content.Content))
	}
	return writeIndented(w, result)
}

// formatJSONOutput prints the whole response envelope
func formatJSONOutput(w io.Writer, resp []byte) error {
	return writeIndented(w, resp)
}

func writeIndented(w io.Writer, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		_, err := fmt.Fprintln(w, string(data))
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
