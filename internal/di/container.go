// Package di provides dependency injection configuration for the comix server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/comixapp/comix-server/internal/config"
	"github.com/comixapp/comix-server/internal/di/providers"
	"github.com/comixapp/comix-server/internal/logger"
	"github.com/comixapp/comix-server/internal/media/covers"
	"github.com/comixapp/comix-server/internal/scanner"
	"github.com/comixapp/comix-server/internal/service"
	"github.com/comixapp/comix-server/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideChangeBus)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideStateStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideCoverStorage)
	do.Provide(injector, providers.ProvideCoverProcessor)

	// Business services
	do.Provide(injector, providers.ProvideScanner)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideComicListService)
	do.Provide(injector, providers.ProvideMarkService)
	do.Provide(injector, providers.ProvideAddService)
	do.Provide(injector, providers.ProvideListController)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	invocations := []func() error{
		func() error { _, err := do.Invoke[*config.Config](injector); return err },
		func() error { _, err := do.Invoke[*logger.Logger](injector); return err },
		func() error { _, err := do.Invoke[*providers.SSEManagerHandle](injector); return err },
		func() error { _, err := do.Invoke[*store.Bus](injector); return err },
		func() error { _, err := do.Invoke[*providers.StoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.StateStoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.SearchIndexHandle](injector); return err },
		func() error { _, err := do.Invoke[*covers.Storage](injector); return err },
		func() error { _, err := do.Invoke[*covers.Processor](injector); return err },
		func() error { _, err := do.Invoke[*scanner.Scanner](injector); return err },
		func() error { _, err := do.Invoke[*service.LibraryService](injector); return err },
		func() error { _, err := do.Invoke[*service.ComicListService](injector); return err },
		func() error { _, err := do.Invoke[*service.MarkService](injector); return err },
		func() error { _, err := do.Invoke[*service.AddService](injector); return err },
		func() error { _, err := do.Invoke[*providers.ListControllerHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.FileWatcherHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.HTTPServerHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.MDNSServiceHandle](injector); return err },
	}

	for _, invoke := range invocations {
		if err := invoke(); err != nil {
			return err
		}
	}

	return nil
}
