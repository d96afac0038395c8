package assets

import (
	"strings"
	"testing"

	"github.com/fzipp/bmfont"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDescriptor = `info face="Test" size=32 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1 outline=0
common lineHeight=36 base=29 scaleW=128 scaleH=64 pages=1 packed=0 alphaChnl=0 redChnl=4 greenChnl=4 blueChnl=4
page id=0 file="test_0.png"
chars count=3
char id=97 x=0 y=0 width=8 height=10 xoffset=1 yoffset=21 xadvance=9 page=0 chnl=15
char id=98 x=8 y=0 width=8 height=12 xoffset=0 yoffset=17 xadvance=8 page=0 chnl=15
char id=32 x=0 y=0 width=0 height=0 xoffset=0 yoffset=0 xadvance=4 page=0 chnl=15
`

func parseTestFont(t *testing.T) *Font {
	t.Helper()
	desc, err := bmfont.ReadDescriptor(strings.NewReader(testDescriptor))
	require.NoError(t, err)
	return NewFontFromDescriptor(desc, make([]byte, 128*64))
}

func TestFontGlyphMetrics(t *testing.T) {
	font := parseTestFont(t)

	g, ok := font.Glyph('a')
	require.True(t, ok)
	assert.Equal(t, float32(8), g.Width)
	assert.Equal(t, float32(10), g.Height)
	assert.Equal(t, float32(1), g.BearingX)
	// base(29) - yoffset(21)
	assert.Equal(t, float32(8), g.BearingY)
	assert.Equal(t, float32(9), g.Advance)
}

func TestFontSpaceAdvanceFromDescriptor(t *testing.T) {
	font := parseTestFont(t)
	assert.Equal(t, float32(4), font.SpaceAdvance())

	// The space is not a drawable glyph.
	_, ok := font.Glyph(' ')
	assert.False(t, ok)
}

func TestFontAtlasSize(t *testing.T) {
	font := parseTestFont(t)
	w, h := font.AtlasSize()
	assert.Equal(t, float32(128), w)
	assert.Equal(t, float32(64), h)
}

func TestFontStartsUnsubmitted(t *testing.T) {
	font := parseTestFont(t)
	assert.Equal(t, -1, font.SubmissionIndex)
}
