package vulkan

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

// ShaderModuleCreate reads a compiled SPIR-V binary from the shader
// directory and wraps it in a module. Modules are destroyed as soon as the
// pipelines referencing them are built.
func ShaderModuleCreate(context *VulkanContext, shaderDir, fileName string) (vk.ShaderModule, error) {
	filePath := filepath.Join(shaderDir, fileName)

	code, err := os.ReadFile(filePath)
	if err != nil {
		err = fmt.Errorf("unable to read shader module '%s': %w", filePath, err)
		core.LogError(err.Error())
		return vk.NullShaderModule, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader module '%s' is not valid SPIR-V", filePath)
		core.LogError(err.Error())
		return vk.NullShaderModule, err
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    words,
	}

	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &module); res != vk.Success {
		err := fmt.Errorf("failed to create shader module '%s'", filePath)
		core.LogError(err.Error())
		return vk.NullShaderModule, err
	}

	return module, nil
}

func ShaderStageCreateInfo(module vk.ShaderModule, stage vk.ShaderStageFlagBits) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: module,
		PName:  VulkanSafeString("main"),
	}
}
