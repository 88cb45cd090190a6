package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMarkerSetDedupes(t *testing.T) {
	set := NewMarkerSet("です", "", "ます", "です")
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"です", "ます"}, set.Markers())

	// 返回的是副本
	markers := set.Markers()
	markers[0] = "x"
	assert.Equal(t, "です", set.Markers()[0])
}

func TestMarkerSetContains(t *testing.T) {
	set := NewMarkerSet("です", "。")

	marker, ok := set.Contains("本ですよ")
	assert.True(t, ok)
	assert.Equal(t, "です", marker)

	_, ok = set.Contains("本だよ")
	assert.False(t, ok)

	_, ok = NewMarkerSet().Contains("です")
	assert.False(t, ok)
}

func TestMarkerSetTrailingMatch(t *testing.T) {
	set := NewMarkerSet("に", "本当")

	marker, ok := set.TrailingMatch("それは本当")
	assert.True(t, ok)
	assert.Equal(t, "本当", marker)

	_, ok = set.TrailingMatch("本当にそう")
	assert.False(t, ok)
}

func TestDefaultMarkersAreClean(t *testing.T) {
	opts := DefaultOptions()
	for _, m := range opts.LinguisticMarkers.Markers() {
		assert.NotContains(t, m, "\ufeff")
	}
	_, ok := opts.LinguisticMarkers.Contains("そうかな")
	assert.True(t, ok)
	_, ok = opts.ConnectiveMarkers.TrailingMatch("行きたいが")
	assert.False(t, ok)
}
