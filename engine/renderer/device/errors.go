package device

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// ErrDevice wraps every failure reported by the graphics device.
var ErrDevice = errors.New("device: call rejected")

// NewError converts a Vulkan result into an error naming the operation and the calling
// function. Returns nil for vk.Success.
//
// Parameters:
//   - op: the operation that produced the result
//   - res: the Vulkan result
//
// Returns:
//   - error: nil on success, otherwise an error wrapping ErrDevice and vk.Error(res)
func NewError(op string, res vk.Result) error {
	if res == vk.Success {
		return nil
	}
	if caller := callerName(2); caller != "" {
		return fmt.Errorf("%w: %s: vulkan error: %w (%d) on %s", ErrDevice, op, vk.Error(res), res, caller)
	}
	return fmt.Errorf("%w: %s: vulkan error: %w (%d)", ErrDevice, op, vk.Error(res), res)
}

// IsError reports whether res is anything other than vk.Success.
func IsError(res vk.Result) bool {
	return res != vk.Success
}

// callerName returns the short function name skip frames above the caller.
func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
