package core

import (
	"errors"
)

var (
	ErrSurfaceChanged = errors.New("surface changed, swapchain must be rebuilt")
	ErrFontNotFound   = errors.New("font handle does not resolve to a registered font")
	ErrUnknown        = errors.New("unknown")
)
