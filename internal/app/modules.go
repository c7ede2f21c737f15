package app

import (
	"github.com/specialistvlad/provisiongrid/internal/registry"
	"github.com/specialistvlad/provisiongrid/modules/httpapi"
	"github.com/specialistvlad/provisiongrid/modules/simulated"
	"github.com/specialistvlad/provisiongrid/modules/socketio"
)

// coreModules is the definitive list of all client modules compiled into the
// provisiongrid binary.
var coreModules = []registry.Module{
	&simulated.Module{},
	&httpapi.Module{},
	&socketio.Module{},
}
