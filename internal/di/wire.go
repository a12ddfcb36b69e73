//go:build wireinject
// +build wireinject

package di

import (
	"SmartDCA/pkg/config"
	"SmartDCA/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvidePriceStore,
		ProvideResultPublisher,
		ProvidePriceSource,

		// Use cases
		ProvideSimulator,
		ProvideEvalPolicy,
		ProvideAnalyzer,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
