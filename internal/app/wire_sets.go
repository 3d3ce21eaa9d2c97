//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
)

var CoreInfraSet = wire.NewSet(
	NewGatewayConfig,
	NewLogging,
	NewLogger,
	NewMetricsRegistry,
	NewMetrics,
	NewHealthTracker,
	NewHTTPClient,
)

var GatewaySet = wire.NewSet(
	NewRemoteClient,
	NewLocalProvider,
	NewToolRegistry,
	NewRouter,
	NewAPIServer,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	GatewaySet,
	wire.Struct(new(ApplicationOptions), "*"),
	NewApplication,
)
