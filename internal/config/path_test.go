package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestExpandTilde はチルダ展開をテスト
func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{in: "~/test/path", want: filepath.Join(home, "test", "path")},
		{in: "~", want: home},
		{in: "/absolute/path", want: "/absolute/path"},
		// ~user形式は未対応なのでそのまま返される
		{in: "~otheruser/path", want: "~otheruser/path"},
	}
	for _, tt := range tests {
		got, err := ExpandTilde(tt.in)
		if err != nil {
			t.Fatalf("ExpandTilde(%q): unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestResolveConfigPath は相対パスが絶対パスに変換されることをテスト
func TestResolveConfigPath(t *testing.T) {
	got, err := ResolveConfigPath("")
	if err != nil || got != "" {
		t.Errorf("expected empty path to stay empty, got %q, %v", got, err)
	}

	got, err = ResolveConfigPath("conf/config.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
	if filepath.Base(got) != "config.json" {
		t.Errorf("unexpected base name in %q", got)
	}
}

// TestGetDefaultConfigPath はデフォルト設定ファイルパスが取得できることをテスト
func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}

	expected := filepath.Join(home, ".mcp-gateway", "config.json")
	if path != expected {
		t.Errorf("expected %q, got %q", expected, path)
	}
}

// TestEnsureDir はネストしたディレクトリが作成されることをテスト
func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory %q to exist", dir)
	}
}
