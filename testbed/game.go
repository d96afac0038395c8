package testbed

import (
	"fmt"
	stdmath "math"
	"path/filepath"

	"github.com/KyleNBurke/vulkan-engine/engine"
	"github.com/KyleNBurke/vulkan-engine/engine/core"
	"github.com/KyleNBurke/vulkan-engine/engine/math"
	"github.com/KyleNBurke/vulkan-engine/engine/scene"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	spinningMeshes []*scene.Mesh
	fpsText        *scene.Text
}

func NewTestGame() (*TestGame, error) {
	config, err := engine.LoadApplicationConfig("config.toml")
	if err != nil {
		return nil, err
	}

	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize

	return tg, nil
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	config := g.ApplicationConfig

	aspect := float32(config.StartWidth) / float32(config.StartHeight)
	camera := scene.NewCamera(float32(stdmath.Pi/3.0), aspect, 0.1, 100.0)
	camera.Transform.Position = math.NewVec3(0.0, 2.0, -8.0)

	s := scene.NewScene(camera)
	s.AmbientLight = scene.NewAmbientLight(math.NewVec3(1.0, 1.0, 1.0), 0.1)
	s.PointLights = append(s.PointLights,
		scene.NewPointLight(math.NewVec3(3.0, 4.0, -3.0), math.NewVec3(1.0, 1.0, 1.0), 0.8),
		scene.NewPointLight(math.NewVec3(-3.0, 2.0, -2.0), math.NewVec3(0.9, 0.4, 0.2), 0.5))
	g.Scene = s

	boxHandle := s.Geometries.Add(*scene.NewBoxGeometry())
	triangleHandle := s.Geometries.Add(*scene.NewTriangleGeometry())
	planeHandle := s.Geometries.Add(*scene.NewPlaneGeometry())

	// A row of spinning boxes, one per material.
	for i, material := range []scene.Material{scene.MaterialBasic, scene.MaterialNormal, scene.MaterialLambert} {
		mesh := scene.NewMesh(boxHandle, material)
		mesh.Transform.Position = math.NewVec3(float32(i-1)*2.5, 0.0, 0.0)
		s.Meshes = append(s.Meshes, mesh)
		state.spinningMeshes = append(state.spinningMeshes, mesh)
	}

	triangle := scene.NewMesh(triangleHandle, scene.MaterialBasic)
	triangle.Transform.Position = math.NewVec3(0.0, 2.5, 0.0)
	s.Meshes = append(s.Meshes, triangle)

	// A static floor plus an instanced field of small planes.
	floor := scene.NewStaticMesh(planeHandle, scene.MaterialLambert)
	floor.Transform.Position = math.NewVec3(0.0, -1.0, 0.0)
	floor.Transform.Scale = math.NewVec3(20.0, 1.0, 20.0)
	floor.Transform.RotateX(float32(-stdmath.Pi / 2.0))

	tiles := scene.NewStaticInstancedMesh(planeHandle, scene.MaterialLambert)
	for x := 0; x < 4; x++ {
		for z := 0; z < 4; z++ {
			transform := math.NewTransform()
			transform.Position = math.NewVec3(float32(x)*1.5-2.25, -0.9, float32(z)*1.5-2.25)
			transform.RotateX(float32(-stdmath.Pi / 2.0))
			tiles.Transforms = append(tiles.Transforms, transform)
		}
	}

	if err := e.Renderer().SubmitStaticMeshes(s, []*scene.StaticMesh{floor}, []*scene.StaticInstancedMesh{tiles}); err != nil {
		return err
	}

	// FPS overlay; the demo still runs without the font asset.
	fontPath := filepath.Join(config.AssetDir, "fonts", "roboto.fnt")
	fontHandle, err := e.Renderer().AddFont(fontPath)
	if err != nil {
		core.LogWarn("no font at %s, skipping the FPS overlay: %s", fontPath, err.Error())
	} else {
		state.fpsText = scene.NewText(fontHandle, "FPS: --")
		state.fpsText.Transform.Position = math.NewVec3(20.0, 40.0, 0.0)
		s.Texts = append(s.Texts, state.fpsText)
	}

	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)

	for _, mesh := range state.spinningMeshes {
		mesh.Transform.RotateY(float32(0.5 * deltaTime))
	}

	if state.fpsText != nil {
		fps, frameTime := core.MetricsFrame()
		state.fpsText.SetContent(fmt.Sprintf("FPS: %5.1f (%4.1fms)", fps, frameTime))
	}

	return nil
}

func (g *TestGame) OnResize(width, height uint32) error {
	state := g.State.(*gameState)

	state.width = width
	state.height = height

	g.Scene.Camera.UpdateProjection(float32(width) / float32(height))
	return nil
}
