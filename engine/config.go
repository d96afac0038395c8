package engine

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

type ApplicationConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting size.
	StartWidth  uint32 `toml:"start_width"`
	StartHeight uint32 `toml:"start_height"`

	// Directory holding the compiled .spv shader binaries.
	ShaderDir string `toml:"shader_dir"`
	// Directory holding fonts and other loose assets; watched for changes
	// when WatchAssets is set.
	AssetDir    string `toml:"asset_dir"`
	WatchAssets bool   `toml:"watch_assets"`

	LogLevel string `toml:"log_level"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:        "Vulkan Engine",
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		ShaderDir:   "shaders/build",
		AssetDir:    "assets",
		WatchAssets: true,
		LogLevel:    "info",
	}
}

// LoadApplicationConfig reads a TOML config file over the defaults. A
// missing file is not an error, the defaults stand.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			core.LogInfo("No config file at %s, using defaults.", path)
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		core.LogError("invalid config file %s: %s", path, err.Error())
		return nil, err
	}

	if config.StartWidth == 0 || config.StartHeight == 0 {
		core.LogFatal("config %s specifies a zero window dimension", path)
	}

	return config, nil
}
