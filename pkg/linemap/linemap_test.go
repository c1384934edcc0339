package linemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/styler-dev/styler/pkg/linemap"
)

func TestIdentityRoundTrips(t *testing.T) {
	m := linemap.Identity(5)

	for line := 1; line <= 5; line++ {
		fmtLine, ok := m.ToFormatted(line)
		assert.True(t, ok)

		origLine, ok := m.ToOriginal(fmtLine)
		assert.True(t, ok)
		assert.Equal(t, line, origLine)
	}

	assert.Equal(t, 0, m.LineDelta())
}

func TestDeletedLineMapsToNone(t *testing.T) {
	b := linemap.NewBuilder()
	b.Map(1, 1)
	// line 2 deleted: no Map call for it.
	b.Map(3, 2)
	m := b.Build(3, 2)

	_, ok := m.ToFormatted(2)
	assert.False(t, ok)
	assert.Equal(t, -1, m.LineDelta())
}

func TestInsertedLineMapsFromNone(t *testing.T) {
	b := linemap.NewBuilder()
	b.Map(1, 1)
	// formatted line 2 is newly inserted (a wrap), no original counterpart.
	b.Map(2, 3)
	m := b.Build(2, 3)

	_, ok := m.ToOriginal(2)
	assert.False(t, ok)
	assert.Equal(t, 1, m.LineDelta())
}
