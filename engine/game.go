package engine

import (
	"github.com/KyleNBurke/vulkan-engine/engine/scene"
)

// Game is the application side of the engine contract. The engine owns
// the window, the renderer and the run loop; the game owns the scene and
// reacts through the callbacks.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Scene             *scene.Scene
	State             interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnOnResize   OnResize
}

// Initialize runs once after the renderer exists; the game builds its
// scene here and may submit static geometry and fonts through the engine.
type Initialize func(e *Engine) error

// Update runs every frame before the scene is rendered.
type Update func(deltaTime float64) error

// OnResize runs after the swapchain has been rebuilt for a new
// framebuffer size.
type OnResize func(width, height uint32) error
