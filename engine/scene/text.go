package scene

import (
	"github.com/KyleNBurke/vulkan-engine/engine/math"
)

// Glyph describes one character's quad in atlas pixels.
type Glyph struct {
	AtlasX, AtlasY float32
	Width, Height  float32
	BearingX       float32
	BearingY       float32
	Advance        float32
}

// Font is the contract the text system needs from the asset subsystem.
type Font interface {
	Glyph(r rune) (Glyph, bool)
	SpaceAdvance() float32
	AtlasSize() (width, height float32)
}

// Text is a run of screen-space glyphs. The quad geometry is generated
// lazily: mutating the content sets Generate and the renderer rebuilds
// the quads from the resolved font before the next packing pass.
type Text struct {
	Transform        math.Transform
	FontHandle       Handle
	AutoUpdateMatrix bool
	Generate         bool

	content    string
	indices    []uint16
	attributes []float32

	IndexOffset             int
	AttributeOffset         int
	MatrixUniformOffset     int
	AtlasIndexUniformOffset int
	AtlasIndex              int
}

func NewText(fontHandle Handle, content string) *Text {
	return &Text{
		Transform:        math.NewTransform(),
		FontHandle:       fontHandle,
		AutoUpdateMatrix: true,
		Generate:         true,
		content:          content,
	}
}

func (t *Text) Content() string {
	return t.content
}

func (t *Text) SetContent(content string) {
	if t.content == content {
		return
	}
	t.content = content
	t.Generate = true
}

func (t *Text) VertexIndices() []uint16 {
	return t.indices
}

func (t *Text) VertexAttributes() []float32 {
	return t.attributes
}

// GenerateGlyphQuads rebuilds the index and attribute arrays for the
// current content. Attributes are interleaved screen position (vec2) and
// texture coordinate (vec2) per vertex, four vertices and six indices
// per visible glyph.
func (t *Text) GenerateGlyphQuads(font Font) {
	t.indices = t.indices[:0]
	t.attributes = t.attributes[:0]

	atlasWidth, atlasHeight := font.AtlasSize()
	var pen math.Vec2
	var base uint16

	for _, r := range t.content {
		if r == ' ' {
			pen.X += font.SpaceAdvance()
			continue
		}

		glyph, ok := font.Glyph(r)
		if !ok {
			continue
		}

		x0 := pen.X + glyph.BearingX
		y0 := pen.Y - glyph.BearingY
		x1 := x0 + glyph.Width
		y1 := y0 + glyph.Height

		u0 := glyph.AtlasX / atlasWidth
		v0 := glyph.AtlasY / atlasHeight
		u1 := (glyph.AtlasX + glyph.Width) / atlasWidth
		v1 := (glyph.AtlasY + glyph.Height) / atlasHeight

		t.attributes = append(t.attributes,
			x0, y0, u0, v0,
			x1, y0, u1, v0,
			x1, y1, u1, v1,
			x0, y1, u0, v1)

		t.indices = append(t.indices,
			base, base+1, base+2,
			base, base+2, base+3)

		base += 4
		pen.X += glyph.Advance
	}

	t.Generate = false
}
