package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/bootstrap"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/config"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/transport/http"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/transport/stdio"
)

// ビルド時変数（-ldflags で変更可能）
var (
	defaultTransport = ""
	version          = "dev"
)

// serverName はMCPサーバー名
const serverName = "mcp-gateway"

// Options はCLI引数オプション
type Options struct {
	Transport   string
	Host        string
	Port        int
	ConfigPath  string
	CORSOrigins []string
}

func main() {
	var err error

	// 引数なしの場合はserveをデフォルト実行
	if len(os.Args) < 2 {
		err = run([]string{})
	} else {
		switch os.Args[1] {
		case "serve":
			err = run(os.Args[1:])
		case "call":
			err = runCallCmd(os.Args[2:])
		case "version", "-v", "--version":
			printVersion(os.Stdout)
			return
		case "help", "-h", "--help":
			printUsage()
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// printUsage prints the usage information
func printUsage() {
	fmt.Println(`mcp-gateway - MCP gateway for the Monday.com GraphQL API

Usage:
  mcp-gateway <command> [options]

Commands:
  serve     Start the MCP gateway (stdio or HTTP)
  call      Send a single request and print the response (oneshot command)
  version   Print version information
  help      Print this help message

Serve Options:
  -t, --transport string   Transport type: stdio, http (default: from config, else stdio)
  --host string            HTTP host (default: 127.0.0.1)
  -p, --port int           HTTP port (default: 8765)
  -c, --config string      Config file path (default: ~/.mcp-gateway/config.json)
  --cors string            Allowed CORS origins for HTTP (comma-separated)

Call Options:
  --params string          Handler parameters as a JSON object
  -f, --format string      Output format: text, json (default: text)
  -c, --config string      Config file path
  --stdin                  Read handler parameters from stdin

Environment:
  MONDAY_API_TOKEN            Monday.com API token (required)
  MONDAY_API_URL              GraphQL endpoint override
  MCP_GATEWAY_DAILY_LIMIT     Daily call allowance
  MCP_GATEWAY_MAX_CONCURRENT  Concurrent call ceiling
  MCP_GATEWAY_CACHE_TTL       Response cache TTL (e.g. 300s)
  MCP_GATEWAY_REDIS_ADDR      Use a Redis cache backend at this address
  MCP_GATEWAY_LOG_LEVEL       debug, info, warn, error

Examples:
  mcp-gateway serve
  mcp-gateway serve -t http -p 8080 --cors http://localhost:3000
  mcp-gateway call ListResources
  mcp-gateway call ReadResource get_board_structure --params '{"board_id": 12345678}'
  echo '{"board_id": 1, "item_name": "Task"}' | mcp-gateway call CallTool create_item --stdin`)
}

// printVersion prints the version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s version %s\n", serverName, version)
}

// run は実際の処理を行う（テスト容易性のため分離）
func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler()
	defer cancel()

	return runServe(ctx, opts)
}

// parseFlags は引数をパースしてOptionsを返す
// transport未指定の場合はTransportを空のまま返し、設定ファイルの値を使う
func parseFlags(args []string) (*Options, error) {
	fs := flag.NewFlagSet(serverName, flag.ContinueOnError)

	opts := &Options{}
	var cors string
	fs.StringVar(&opts.Transport, "transport", defaultTransport, "Transport type: stdio, http")
	fs.StringVar(&opts.Transport, "t", defaultTransport, "Transport type (shorthand)")
	fs.StringVar(&opts.Host, "host", "127.0.0.1", "HTTP host")
	fs.IntVar(&opts.Port, "port", 8765, "HTTP port")
	fs.IntVar(&opts.Port, "p", 8765, "HTTP port (shorthand)")
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file path")
	fs.StringVar(&opts.ConfigPath, "c", "", "Config file path (shorthand)")
	fs.StringVar(&cors, "cors", "", "Allowed CORS origins (comma-separated)")

	// serveサブコマンド確認（引数なしまたは"serve"で始まる場合のみ許可）
	var flagArgs []string
	if len(args) == 0 {
		flagArgs = []string{}
	} else if args[0] == "serve" {
		flagArgs = args[1:]
	} else {
		return nil, fmt.Errorf("usage: %s serve [options]", serverName)
	}

	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}

	if opts.Transport != "" && opts.Transport != model.TransportStdio && opts.Transport != model.TransportHTTP {
		return nil, fmt.Errorf("invalid transport: %s (must be stdio or http)", opts.Transport)
	}
	if opts.Port < 1 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d (must be 1-65535)", opts.Port)
	}

	path, err := config.ResolveConfigPath(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	opts.ConfigPath = path
	opts.CORSOrigins = splitList(cors)

	return opts, nil
}

// splitList はカンマ区切り文字列をスライスに分割する
func splitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// setupSignalHandler はSIGINT/SIGTERMを受けてcontextをキャンセルする
func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// runServe はserveコマンドを実行
func runServe(ctx context.Context, opts *Options, bootOpts ...bootstrap.Option) error {
	gw, cleanup, err := bootstrap.Initialize(ctx, opts.ConfigPath, bootOpts...)
	if err != nil {
		return err
	}
	defer cleanup()

	return serve(ctx, gw, opts)
}

// serve は選択されたtransportでゲートウェイを起動する
func serve(ctx context.Context, gw *bootstrap.Gateway, opts *Options, stdioOpts ...stdio.Option) error {
	transport := opts.Transport
	if transport == "" {
		transport = gw.Config.TransportDefaults.DefaultTransport
	}

	gw.Logger.Info("starting gateway", "version", version, "transport", transport)
	defer func() {
		q := gw.Limiter.Snapshot()
		gw.Logger.Info("gateway stopped", "remaining", q.Remaining, "reset_at", q.ResetAt)
	}()

	switch transport {
	case model.TransportStdio:
		stdioOpts = append([]stdio.Option{stdio.WithLogger(gw.Logger)}, stdioOpts...)
		err := stdio.New(gw.Handler, stdioOpts...).Run(ctx)
		// シグナルによる停止は正常終了
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case model.TransportHTTP:
		httpConfig := http.Config{
			Addr:        fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			CORSOrigins: opts.CORSOrigins,
		}
		server := http.New(gw.Handler, httpConfig,
			http.WithLogger(gw.Logger),
			http.WithHealth(func() any { return gw.Limiter.Snapshot() }),
		)
		return server.Run(ctx)
	default:
		return fmt.Errorf("unknown transport: %s", transport)
	}
}
