package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeFont struct {
	glyphs map[rune]Glyph
}

func (f *fakeFont) Glyph(r rune) (Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}

func (f *fakeFont) SpaceAdvance() float32 {
	return 4
}

func (f *fakeFont) AtlasSize() (float32, float32) {
	return 128, 64
}

func newFakeFont() *fakeFont {
	return &fakeFont{
		glyphs: map[rune]Glyph{
			'a': {AtlasX: 0, AtlasY: 0, Width: 8, Height: 10, BearingX: 1, BearingY: 8, Advance: 9},
			'b': {AtlasX: 8, AtlasY: 0, Width: 8, Height: 12, BearingX: 0, BearingY: 12, Advance: 8},
		},
	}
}

func TestGenerateGlyphQuads(t *testing.T) {
	text := NewText(Handle{}, "ab")
	text.GenerateGlyphQuads(newFakeFont())

	assert.False(t, text.Generate)
	assert.Len(t, text.VertexIndices(), 12)
	assert.Len(t, text.VertexAttributes(), 32)

	// Second glyph indices start past the first quad's vertices.
	assert.Equal(t, uint16(4), text.VertexIndices()[6])

	// First vertex of 'a' sits at the pen position plus bearing.
	attrs := text.VertexAttributes()
	assert.InDelta(t, 1.0, attrs[0], 1e-6)
	assert.InDelta(t, -8.0, attrs[1], 1e-6)
}

func TestGenerateGlyphQuadsSpaceAdvancesPen(t *testing.T) {
	text := NewText(Handle{}, "a a")
	text.GenerateGlyphQuads(newFakeFont())

	// Two visible glyphs, the space only moves the pen.
	assert.Len(t, text.VertexIndices(), 12)

	// Second 'a' starts at advance(9) + space(4) + bearing(1).
	attrs := text.VertexAttributes()
	assert.InDelta(t, 14.0, attrs[16], 1e-6)
}

func TestGenerateGlyphQuadsSkipsUnknownRunes(t *testing.T) {
	text := NewText(Handle{}, "a?b")
	text.GenerateGlyphQuads(newFakeFont())
	assert.Len(t, text.VertexIndices(), 12)
}

func TestSetContentMarksDirty(t *testing.T) {
	text := NewText(Handle{}, "a")
	text.GenerateGlyphQuads(newFakeFont())
	assert.False(t, text.Generate)

	text.SetContent("b")
	assert.True(t, text.Generate)

	text.SetContent("b")
	assert.True(t, text.Generate)
}

func TestGlyphQuadTexcoordsNormalized(t *testing.T) {
	text := NewText(Handle{}, "b")
	text.GenerateGlyphQuads(newFakeFont())

	attrs := text.VertexAttributes()
	// u0 = 8/128, v1 = 12/64
	assert.InDelta(t, 0.0625, attrs[2], 1e-6)
	assert.InDelta(t, 0.1875, attrs[11], 1e-6)
}
