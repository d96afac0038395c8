//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderSources = []string{
	"basic.vert",
	"basic.frag",
	"lambert.vert",
	"lambert.frag",
	"text.vert",
	"text.frag",
}

// Compiles every GLSL shader to SPIR-V under shaders/build.
func (Build) Shaders() error {
	if err := os.MkdirAll("shaders/build", 0o755); err != nil {
		return err
	}

	for _, source := range shaderSources {
		input := filepath.Join("shaders", source)
		output := filepath.Join("shaders", "build", source+".spv")
		if _, err := executeCmd("glslc", withArgs(input, "-o", output), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Runs the test suite.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
