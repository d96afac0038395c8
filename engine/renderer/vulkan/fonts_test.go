package vulkan

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleNBurke/vulkan-engine/engine/assets"
	"github.com/KyleNBurke/vulkan-engine/engine/scene"
)

const reloadFontDescriptor = `info face="Reload" size=32 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1 outline=0
common lineHeight=36 base=29 scaleW=64 scaleH=32 pages=1 packed=0 alphaChnl=0 redChnl=4 greenChnl=4 blueChnl=4
page id=0 file="reload_0.png"
chars count=2
char id=97 x=0 y=0 width=8 height=10 xoffset=1 yoffset=21 xadvance=%d page=0 chnl=15
char id=32 x=0 y=0 width=0 height=0 xoffset=0 yoffset=0 xadvance=4 page=0 chnl=15
`

// writeFontFixture writes a minimal BMFont descriptor plus its atlas page
// and returns the descriptor path.
func writeFontFixture(t *testing.T, dir string, advance int) string {
	t.Helper()

	atlasPath := filepath.Join(dir, "reload_0.png")
	file, err := os.Create(atlasPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, image.NewGray(image.Rect(0, 0, 64, 32))))
	require.NoError(t, file.Close())

	descriptorPath := filepath.Join(dir, "reload.fnt")
	descriptor := fmt.Sprintf(reloadFontDescriptor, advance)
	require.NoError(t, os.WriteFile(descriptorPath, []byte(descriptor), 0o644))
	return descriptorPath
}

// Font bookkeeping never touches the GPU, so a bare renderer suffices.
func newFontTestRenderer() *Renderer {
	return &Renderer{
		textRenderer: &TextRenderer{Fonts: scene.NewPool[*assets.Font]()},
		fontSources:  make(map[string]scene.Handle),
	}
}

func TestReloadFontKeepsHandleAndIdentifier(t *testing.T) {
	dir := t.TempDir()
	path := writeFontFixture(t, dir, 9)

	r := newFontTestRenderer()
	handle, err := r.AddFont(path)
	require.NoError(t, err)
	id := (*r.textRenderer.Fonts.MustGet(handle)).ID
	r.submitFonts = false

	writeFontFixture(t, dir, 11)
	require.True(t, r.ReloadFont(path))

	font := *r.textRenderer.Fonts.MustGet(handle)
	assert.Equal(t, id, font.ID)
	assert.True(t, r.submitFonts)

	// The pool now serves the changed metrics under the old handle.
	glyph, ok := font.Glyph('a')
	require.True(t, ok)
	assert.Equal(t, float32(11), glyph.Advance)
}

func TestReloadFontUnknownPath(t *testing.T) {
	r := newFontTestRenderer()
	assert.False(t, r.ReloadFont("fonts/never_loaded.fnt"))
}

func TestRemoveFontForgetsSourcePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFontFixture(t, dir, 9)

	r := newFontTestRenderer()
	handle, err := r.AddFont(path)
	require.NoError(t, err)

	r.RemoveFont(handle)
	assert.False(t, r.ReloadFont(path))
}
