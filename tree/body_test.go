package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skridlevsky/codex/node"
)

func TestAppendBody(t *testing.T) {
	tr, clock := newJournalTree(t)
	keys := mustCreate(t, tr, "2-desk", "a")

	clock.Add(48 * time.Hour)
	require.NoError(t, tr.AppendBody(keys[0], "- [] first"))
	require.NoError(t, tr.AppendBody(keys[0], "second\n\n"))

	body, err := tr.Body(keys[0])
	require.NoError(t, err)
	assert.Equal(t, "# a\n- [] first\nsecond\n", body)
	assert.Equal(t, int64(2), mustGet(t, tr, keys[0]).Updates)

	assert.ErrorIs(t, tr.AppendBody(keys[0], "  "), node.ErrInvalidArgs)
	assert.ErrorIs(t, tr.AppendBody("2-desk/9-x", "x"), node.ErrNotFound)
	_, err = tr.Body("2-desk/9-x")
	assert.ErrorIs(t, err, node.ErrNotFound)
}
