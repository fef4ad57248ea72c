package modkit

import (
	"pvcreek/internal/modkit/httpkit"
	"pvcreek/internal/modkit/module"
)

// Module is an API module: a named set of ports that can mount routes
type Module interface {
	module.Module
	MountRoutes(r httpkit.Router)
}
