package app

import (
	"github.com/specialistvlad/pohcalc/internal/registry"
	"github.com/specialistvlad/pohcalc/modules/c172"
)

// coreModules is the definitive list of all modules that are compiled into
// the pohcalc binary.
var coreModules = []registry.Module{
	&c172.Module{},
}
