package reload

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Script("/ws").Render(context.Background(), &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<script data-rsc-reload>"))
	assert.True(t, strings.HasSuffix(out, "</script>"))
	assert.Contains(t, out, `var path="/ws";`)
	assert.Contains(t, out, "full_reload")
}

func TestScriptEscapesPath(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Script("/ws</script>").Render(context.Background(), &buf))

	assert.Equal(t, 1, strings.Count(buf.String(), "</script>"))
}

func TestScriptCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	assert.ErrorIs(t, Script("/ws").Render(ctx, &buf), context.Canceled)
	assert.Zero(t, buf.Len())
}
