package assets

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/png"

	"github.com/fzipp/bmfont"
	_ "golang.org/x/image/bmp"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
	"github.com/KyleNBurke/vulkan-engine/engine/scene"
)

// Font is a loaded signed-distance-field bitmap font: glyph metrics from
// a BMFont descriptor plus the single-channel atlas pixels. It satisfies
// the scene.Font contract consumed by text quad generation.
type Font struct {
	ID         core.Identifier
	Face       string
	Size       int
	LineHeight float32

	atlasWidth   float32
	atlasHeight  float32
	spaceAdvance float32
	glyphs       map[rune]scene.Glyph

	// R8 pixels, atlasWidth * atlasHeight bytes.
	AtlasPixels []byte

	// Texture array slot assigned when the font is submitted to the GPU.
	// -1 until then.
	SubmissionIndex int
}

// LoadFont reads a BMFont .fnt descriptor and its first atlas page
// image (PNG or BMP) from disk.
func LoadFont(path string) (*Font, error) {
	desc, err := bmfont.LoadDescriptor(path)
	if err != nil {
		err = fmt.Errorf("failed to load font descriptor '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	page, ok := desc.Pages[0]
	if !ok {
		err := fmt.Errorf("font '%s' has no atlas page", path)
		core.LogError(err.Error())
		return nil, err
	}

	pagePath := filepath.Join(filepath.Dir(path), page.File)
	pixels, width, height, err := loadAtlasPixels(pagePath)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	if width != desc.Common.ScaleW || height != desc.Common.ScaleH {
		core.LogWarn("font '%s' atlas image is %dx%d but the descriptor declares %dx%d",
			path, width, height, desc.Common.ScaleW, desc.Common.ScaleH)
	}

	font := NewFontFromDescriptor(desc, pixels)
	font.ID = core.NewIdentifier(font.Face)

	core.LogInfo("Loaded font '%s' (%d glyphs, %dx%d atlas)", font.Face, len(font.glyphs), width, height)
	return font, nil
}

// NewFontFromDescriptor builds a font from an already parsed descriptor
// and atlas pixels.
func NewFontFromDescriptor(desc *bmfont.Descriptor, atlasPixels []byte) *Font {
	font := &Font{
		Face:            desc.Info.Face,
		Size:            desc.Info.Size,
		LineHeight:      float32(desc.Common.LineHeight),
		atlasWidth:      float32(desc.Common.ScaleW),
		atlasHeight:     float32(desc.Common.ScaleH),
		glyphs:          make(map[rune]scene.Glyph, len(desc.Chars)),
		AtlasPixels:     atlasPixels,
		SubmissionIndex: -1,
	}

	for r, c := range desc.Chars {
		if r == ' ' {
			font.spaceAdvance = float32(c.XAdvance)
			continue
		}
		font.glyphs[r] = scene.Glyph{
			AtlasX:   float32(c.X),
			AtlasY:   float32(c.Y),
			Width:    float32(c.Width),
			Height:   float32(c.Height),
			BearingX: float32(c.XOffset),
			BearingY: float32(desc.Common.Base - c.YOffset),
			Advance:  float32(c.XAdvance),
		}
	}

	if font.spaceAdvance == 0 {
		// Fall back to a third of the em size.
		font.spaceAdvance = float32(desc.Info.Size) / 3.0
	}

	return font
}

func (f *Font) Glyph(r rune) (scene.Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}

func (f *Font) SpaceAdvance() float32 {
	return f.spaceAdvance
}

func (f *Font) AtlasSize() (float32, float32) {
	return f.atlasWidth, f.atlasHeight
}

// loadAtlasPixels decodes the page image and flattens it to one byte per
// pixel, keeping the red channel; SDF atlases carry the distance field in
// every channel.
func loadAtlasPixels(path string) ([]byte, int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open font atlas '%s': %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode font atlas '%s': %w", path, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]byte, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pixels[y*width+x] = byte(r >> 8)
		}
	}

	return pixels, width, height, nil
}
