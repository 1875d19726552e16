package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2024-05-01T10:00:00Z"})
	require.NoError(t, err)

	c, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", c.ID)

	_, err = DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)
	_, err = DecodeCursor("")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestBuildCursorPageInfo(t *testing.T) {
	token := func(v int) string { return string(rune('a' + v)) }

	info := BuildCursorPageInfo([]int{0, 1, 2}, 2, token)
	require.NotNil(t, info)
	assert.True(t, info.HasMore)
	assert.Equal(t, "b", info.NextPageToken)

	info = BuildCursorPageInfo([]int{0, 1}, 2, token)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)

	assert.Nil(t, BuildCursorPageInfo([]int{0}, 0, token))
}
