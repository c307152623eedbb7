package diagnostics_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidlang/corvid/internal/diagnostics"
	"github.com/corvidlang/corvid/internal/rt"
)

func TestRenderPlainNoColorForNonTTY(t *testing.T) {
	var buf bytes.Buffer
	render := diagnostics.NewRenderer(&buf)
	err := rt.NewErrAt(3, 7, "something broke")
	render.Render(err)
	out := buf.String()
	assert.Contains(t, out, "something broke")
	assert.Contains(t, out, "3:7")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderIncludesCauseChain(t *testing.T) {
	var buf bytes.Buffer
	render := diagnostics.NewRenderer(&buf)
	cause := rt.NewErrAt(1, 1, "root cause")
	err := rt.NewErrAt(2, 2, "wrapped")
	err.Cause = cause
	render.Render(err)
	out := buf.String()
	assert.Contains(t, out, "wrapped")
	assert.Contains(t, out, "caused by")
	assert.Contains(t, out, "root cause")
}
