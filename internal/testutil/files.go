package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

// WriteFiles writes files (relative path to content) under a fresh temporary
// directory and returns that directory. Contents are unindented first.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(Unindent(content)), 0o644))
	}
	return dir
}

// Context returns a context carrying a debug logger that writes into buf.
// With POHCALC_TEST_LOGS=true the captured output is printed when the test
// ends.
func Context(t *testing.T, buf *SafeBuffer) context.Context {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if os.Getenv("POHCALC_TEST_LOGS") == "true" {
		t.Cleanup(func() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		})
	}
	return ctxlog.WithLogger(context.Background(), logger)
}

// Unindent removes common leading whitespace from a multi-line string,
// allowing for readable, indented HCL snippets in Go tests.
func Unindent(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	var b strings.Builder
	for i, line := range lines {
		if len(line) >= minIndent && minIndent > 0 {
			line = line[minIndent:]
		} else if minIndent > 0 {
			line = strings.TrimSpace(line)
		}
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String() + "\n"
}
