package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_PanicsWithoutLogger(t *testing.T) {
	assert.PanicsWithValue(t, "ctxlog: logger missing from context", func() {
		FromContext(context.Background())
	})
}

func TestWith(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	// --- Act ---
	ctx, logger := With(ctx, "session", "abc")
	FromContext(ctx).Info("from context")
	logger.Info("returned")

	// --- Assert ---
	assert.Contains(t, buf.String(), `msg="from context" session=abc`)
	assert.Contains(t, buf.String(), "msg=returned session=abc")
}
