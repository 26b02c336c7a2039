//go:build wireinject
// +build wireinject

package di

import (
	"RugPull/pkg/config"
	"RugPull/pkg/server"

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
		ProvideKafkaConsumer,
		ProvideRedisClient,

		// Repositories
		ProvideRoundStore,
		ProvidePredictionPublisher,
		ProvideFeedStream,

		// Prediction engine
		ProvideParams,
		ProvideShortRoundScorer,
		ProvideEngine,

		// Use cases
		ProvideRoundProcessor,
		ProvidePipeline,
		ProvideEventCollector,
		ProvideKafkaEventsHandler,
		ProvideHistoryService,
		ProvideArchiveQueue,

		// HTTP
		ProvidePredictionsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
