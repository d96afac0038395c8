package vulkan

var end = "\x00"
var endChar byte = '\x00'

// VulkanSafeString null-terminates a string so it can cross the C boundary.
func VulkanSafeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func VulkanSafeStrings(list []string) []string {
	for i := range list {
		list[i] = VulkanSafeString(list[i])
	}
	return list
}

func MathClamp(value, min, max uint32) uint32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// alignUp rounds size up to the next multiple of alignment.
func alignUp(size, alignment uint64) uint64 {
	return size + (alignment-size%alignment)%alignment
}
