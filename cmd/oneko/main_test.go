package main

import (
	"flag"
	"io"
	"testing"

	"github.com/1broseidon/oneko/internal/config"
)

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 1}, "file:/c.yaml:3:1"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	newFS := func() *flag.FlagSet {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.Bool("json", false, "")
		return fs
	}

	if code, ok := parseFlags(newFS(), []string{"--json"}); !ok || code != 0 {
		t.Fatalf("valid flags: code=%d ok=%v", code, ok)
	}
	if code, ok := parseFlags(newFS(), []string{"--help"}); ok || code != 0 {
		t.Fatalf("--help: code=%d ok=%v", code, ok)
	}
	if code, ok := parseFlags(newFS(), []string{"--nope"}); ok || code != 2 {
		t.Fatalf("unknown flag: code=%d ok=%v", code, ok)
	}
}

func TestCommandsRejectBadArguments(t *testing.T) {
	tests := []struct {
		name string
		run  func([]string) int
		args []string
	}{
		{"mode unknown", runMode, []string{"zoom"}},
		{"mode too many", runMode, []string{"follow", "sleep"}},
		{"variant unknown", runVariant, []string{"unicorn"}},
		{"invert bad value", runInvert, []string{"maybe"}},
		{"sleep args", runSleep, []string{"now"}},
		{"status args", runStatus, []string{"extra"}},
		{"config no subcommand", runConfig, nil},
		{"mcp no subcommand", runMCP, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := tt.run(tt.args); code != 2 {
				t.Fatalf("exit code = %d, want 2", code)
			}
		})
	}
}

func TestCommandsWithoutDaemon(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	if code := runStatus(nil); code != 1 {
		t.Fatalf("status exit code = %d, want 1", code)
	}
	if code := runMode([]string{"sleep"}); code != 1 {
		t.Fatalf("mode exit code = %d, want 1", code)
	}
}
