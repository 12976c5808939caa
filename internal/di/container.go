// Package di provides dependency injection configuration for the Bookdex server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/di/providers"
	"github.com/bookdex/bookdex-server/internal/genre"
	"github.com/bookdex/bookdex-server/internal/indexer"
	"github.com/bookdex/bookdex-server/internal/logger"
	"github.com/bookdex/bookdex-server/internal/service"
	"github.com/bookdex/bookdex-server/internal/topics"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Analysis pipeline
	do.Provide(injector, providers.ProvideClassifier)
	do.Provide(injector, providers.ProvideModeler)
	do.Provide(injector, providers.ProvideIndexer)

	// Business services
	do.Provide(injector, providers.ProvideLibraryService)

	// Workers
	do.Provide(injector, providers.ProvideLibraryWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once they are running.
// This triggers lazy initialization in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*genre.Classifier](injector)
	_ = do.MustInvoke[*topics.Modeler](injector)
	_ = do.MustInvoke[*indexer.Indexer](injector)
	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*providers.LibraryWatcherHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
