package engine

import (
	"fmt"

	"github.com/KyleNBurke/vulkan-engine/engine/assets"
	"github.com/KyleNBurke/vulkan-engine/engine/core"
	"github.com/KyleNBurke/vulkan-engine/engine/platform"
	"github.com/KyleNBurke/vulkan-engine/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool

	platform *platform.Platform
	context  *vulkan.VulkanContext
	renderer *vulkan.Renderer
	watcher  *assets.Watcher

	width  uint32
	height uint32

	clock    *core.Clock
	lastTime float64

	resizePending bool
	pendingWidth  uint32
	pendingHeight uint32
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		return nil, fmt.Errorf("game has no application config")
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		platform:     platform.New(),
		isRunning:    true,
		isSuspended:  false,
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
	}, nil
}

// Renderer exposes the renderer for font and static geometry submission
// from the game's initialize callback.
func (e *Engine) Renderer() *vulkan.Renderer {
	return e.renderer
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	config := e.gameInstance.ApplicationConfig
	core.LogSetLevel(config.LogLevel)

	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(config.Name, config.StartPosX, config.StartPosY, config.StartWidth, config.StartHeight); err != nil {
		return err
	}

	context, err := vulkan.NewContext(config.Name, e.platform)
	if err != nil {
		return err
	}
	e.context = context

	renderer, err := vulkan.NewRenderer(context, config.ShaderDir, context.FramebufferWidth, context.FramebufferHeight)
	if err != nil {
		return err
	}
	e.renderer = renderer

	if config.WatchAssets {
		watcher, err := assets.NewWatcher()
		if err != nil {
			return err
		}
		if err := watcher.Watch(config.AssetDir); err != nil {
			core.LogWarn("not watching %s: %s", config.AssetDir, err.Error())
		}
		if err := watcher.Watch(config.ShaderDir); err != nil {
			core.LogWarn("not watching %s: %s", config.ShaderDir, err.Error())
		}
		e.watcher = watcher
	}

	if err := e.gameInstance.FnInitialize(e); err != nil {
		return err
	}
	if e.gameInstance.Scene == nil {
		return fmt.Errorf("game initialize did not produce a scene")
	}

	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		e.platform.PumpMessages()

		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}

		e.drainAssetEvents()

		if e.resizePending {
			e.resizePending = false
			if err := e.applyResize(e.pendingWidth, e.pendingHeight); err != nil {
				return err
			}
		}

		if e.isSuspended {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down: %s", err.Error())
			e.isRunning = false
			break
		}

		surfaceChanged, err := e.renderer.Render(e.gameInstance.Scene)
		if err != nil {
			core.LogError("Frame render failed, shutting down: %s", err.Error())
			e.isRunning = false
			break
		}

		if surfaceChanged {
			width, height := e.platform.FramebufferSize()
			if err := e.applyResize(width, height); err != nil {
				return err
			}
		}

		e.clock.Update()
		frameElapsedSeconds := e.clock.Elapsed() - currentTime
		core.MetricsUpdate(frameElapsedSeconds)
	}

	return nil
}

// RequestShutdown stops the run loop on the next frame. Safe to call from
// a signal handling goroutine; Shutdown itself must still run on the main
// thread after Run returns.
func (e *Engine) RequestShutdown() {
	e.isRunning = false
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	if e.watcher != nil {
		e.watcher.Close()
	}
	if e.renderer != nil {
		e.renderer.Shutdown()
	}
	if e.context != nil {
		e.context.Destroy()
	}
	return e.platform.Shutdown()
}

// applyResize rebuilds the swapchain-sized state for a new framebuffer.
// A zero dimension means the window is minimized; rendering suspends
// until it is restored.
func (e *Engine) applyResize(width, height uint32) error {
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending rendering.")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming rendering.")
		e.isSuspended = false
	}

	e.width = width
	e.height = height

	if err := e.renderer.HandleResize(width, height); err != nil {
		return err
	}
	return e.gameInstance.FnOnResize(width, height)
}

// drainAssetEvents consumes pending watcher notifications. A changed
// shader binary forces a pipeline rebuild through the resize path; font
// and image changes are reported for the game to act on.
func (e *Engine) drainAssetEvents() {
	if e.watcher == nil {
		return
	}

	for {
		select {
		case event, ok := <-e.watcher.Events():
			if !ok {
				e.watcher = nil
				return
			}
			switch event.Kind {
			case assets.AssetKindShader:
				core.LogInfo("Shader %s changed, rebuilding pipelines.", event.Path)
				e.resizePending = true
				e.pendingWidth = e.width
				e.pendingHeight = e.height
			case assets.AssetKindFont:
				if !e.renderer.ReloadFont(event.Path) {
					core.LogInfo("Font %s changed but is not loaded.", event.Path)
				}
			default:
				core.LogInfo("Asset %s changed.", event.Path)
			}
		default:
			return
		}
	}
}

func (e *Engine) onEvent(code core.SystemEventCode, context core.EventContext) {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("Application quit requested, shutting down.")
		e.isRunning = false
	}
}

func (e *Engine) onResized(code core.SystemEventCode, context core.EventContext) {
	width := uint32(context.Data.U16[0])
	height := uint32(context.Data.U16[1])

	if width == e.width && height == e.height && !e.isSuspended {
		return
	}

	// Coalesce bursts of resize events; the loop applies the last one.
	e.resizePending = true
	e.pendingWidth = width
	e.pendingHeight = height
}
