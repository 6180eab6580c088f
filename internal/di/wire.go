//go:build wireinject
// +build wireinject

package di

import (
	"MacroPulse/pkg/config"
	"MacroPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideStorage,
		ProvidePublisher,
		ProvideCache,
		ProvideMacroSource,

		// Domain services
		ProvideClassifier,
		ProvideExtractor,
		ProvideAggregator,

		// Use cases
		ProvideReportPipeline,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
