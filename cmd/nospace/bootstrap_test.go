package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/nospace/pkg/nospace/config"
	"github.com/jamesainslie/nospace/pkg/nospace/logging"
	"github.com/jamesainslie/nospace/pkg/nospace/recorder"
	"github.com/spf13/pflag"
)

func TestParseRotationConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    config.RotationConfig
		expected logging.RotationConfig
	}{
		{
			name:     "default values",
			input:    config.RotationConfig{MaxSize: "10MB", MaxAge: 30, MaxBackups: 5},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 30, MaxBackups: 5},
		},
		{
			name:     "custom size in gigabytes",
			input:    config.RotationConfig{MaxSize: "1G", MaxAge: 7, MaxBackups: 3},
			expected: logging.RotationConfig{MaxSize: 1024 * 1024 * 1024, MaxAge: 7, MaxBackups: 3},
		},
		{
			name:     "empty max_size uses default",
			input:    config.RotationConfig{MaxAge: 14, MaxBackups: 2},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 14, MaxBackups: 2},
		},
		{
			name:     "invalid max_size uses default",
			input:    config.RotationConfig{MaxSize: "invalid", MaxAge: 21, MaxBackups: 4},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 21, MaxBackups: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := parseRotationConfig(tt.input); result != tt.expected {
				t.Errorf("parseRotationConfig() = %+v, want %+v", result, tt.expected)
			}
		})
	}
}

func TestBindFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	vp, err := config.NewViper("")
	if err != nil {
		t.Fatalf("NewViper() error: %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("capacity", "", "")
	fs.String("format", "", "")
	if err := bindFlags(vp, fs); err != nil {
		t.Fatalf("bindFlags() error: %v", err)
	}

	// Unset flags leave the defaults in place.
	if got := vp.GetString("capacity"); got != config.DefaultCapacity {
		t.Errorf("capacity = %q, want default %q", got, config.DefaultCapacity)
	}

	if err := fs.Parse([]string{"--capacity", "40M", "--format", "json"}); err != nil {
		t.Fatal(err)
	}
	c, err := config.FromViper(vp)
	if err != nil {
		t.Fatalf("FromViper() error: %v", err)
	}
	if c.Capacity != "40M" || c.Format != "json" {
		t.Errorf("flags not applied: capacity=%q format=%q", c.Capacity, c.Format)
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"plain", "json", "yaml", "pretty", "tree", "template"} {
		if _, err := newFormatter(name, ""); err != nil {
			t.Errorf("newFormatter(%q) error: %v", name, err)
		}
	}

	if _, err := newFormatter("xml", ""); err == nil || !strings.Contains(err.Error(), "available formats") {
		t.Errorf("expected unknown format error, got %v", err)
	}

	s, err := openSession(testConfig(t), sessionOptions{noCache: true, noHistory: true})
	if err != nil {
		t.Fatal(err)
	}
	r, err := s.analyze(context.Background(), "example", []byte(exampleTranscript), false)
	if err != nil {
		t.Fatal(err)
	}

	f, err := newFormatter("template", "{{.TotalSize}} {{.Candidate.Path}}")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := writeResult(&buf, f, r); err != nil {
		t.Fatalf("writeResult() error: %v", err)
	}
	if buf.String() != "48381165 /d" {
		t.Errorf("template output = %q", buf.String())
	}
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("capacity: 1G\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NOSPACE_REQUIRED", "100M")

	vp, err := config.NewViper(path)
	if err != nil {
		t.Fatalf("NewViper() error: %v", err)
	}

	var buf bytes.Buffer
	if err := writeConfig(&buf, vp); err != nil {
		t.Fatalf("writeConfig() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Config file: " + path, "capacity: 1G", "NOSPACE_REQUIRED=100M"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteRecordStats(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	writeRecordStats(&buf, recorder.Stats{Root: dir, Dirs: 2, Files: 3, TotalSize: 10, Lines: 9})

	if !strings.HasPrefix(buf.String(), "Recorded "+dir+": 2 dirs, 3 files") {
		t.Errorf("unexpected stats line: %q", buf.String())
	}
}
