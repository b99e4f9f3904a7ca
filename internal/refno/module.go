package refno

import "go.uber.org/fx"

// Module provides the reference generator to Fx.
var Module = fx.Provide(New)
