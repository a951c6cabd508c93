package app

import (
	"github.com/vk/optspec/internal/registry"
	"github.com/vk/optspec/modules/workforce"
)

// coreModules is the definitive list of capability modules compiled into
// the optspec binary.
var coreModules = []registry.Module{
	&workforce.Module{},
}
