package nl

import (
	"github.com/go-logr/logr"
)

var (
	vxlanPrefix  = "vx."
	bridgePrefix = "br."

	// routeMessageMaxSize bounds a single kernel route request including
	// all attributes.
	routeMessageMaxSize = 4096
)

type Manager struct {
	toolkit ToolkitInterface
	logger  logr.Logger

	// debugKernel enables per-request diagnostics of kernel interaction.
	debugKernel bool
}

func NewManager(toolkit ToolkitInterface, logger logr.Logger) *Manager {
	return &Manager{
		toolkit: toolkit,
		logger:  logger.WithName("netlink"),
	}
}

// SetKernelDebug toggles diagnostic logging of kernel-bound messages.
func (n *Manager) SetKernelDebug(enabled bool) {
	n.debugKernel = enabled
}
