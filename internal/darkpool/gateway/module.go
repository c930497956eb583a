package gateway

import "go.uber.org/fx"

// Module provides the gateway's fx-wired constructors, following the
// teacher's internal/gateway/module.go.
var Module = fx.Options(
	fx.Provide(NewHandlers),
	fx.Provide(NewServer),
)
