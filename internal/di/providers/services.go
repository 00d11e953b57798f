package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/comixapp/comix-server/internal/comiclist"
	"github.com/comixapp/comix-server/internal/config"
	"github.com/comixapp/comix-server/internal/logger"
	"github.com/comixapp/comix-server/internal/media/covers"
	"github.com/comixapp/comix-server/internal/scanner"
	"github.com/comixapp/comix-server/internal/service"
	"github.com/comixapp/comix-server/internal/store"
)

// ProvideScanner provides the comic library scanner.
func ProvideScanner(i do.Injector) (*scanner.Scanner, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	processor := do.MustInvoke[*covers.Processor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return scanner.New(storeHandle.Store, processor, log.Logger), nil
}

// ProvideLibraryService provides the library lifecycle service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sc := do.MustInvoke[*scanner.Scanner](i)
	idx := do.MustInvoke[*SearchIndexHandle](i)
	coverStorage := do.MustInvoke[*covers.Storage](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(
		storeHandle.Store,
		sc,
		idx.SearchIndex,
		coverStorage,
		sseHandle.Manager,
		cfg.Library.ComicsPath,
		log.Logger,
	), nil
}

// ProvideComicListService provides the paged comic list provider.
func ProvideComicListService(i do.Injector) (*service.ComicListService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bus := do.MustInvoke[*store.Bus](i)
	idx := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewComicListService(storeHandle.Store, bus, idx.SearchIndex, sseHandle.Manager, log.Logger), nil
}

// ProvideMarkService provides the completed/removed mark service.
func ProvideMarkService(i do.Injector) (*service.MarkService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMarkService(storeHandle.Store, sseHandle.Manager, log.Logger), nil
}

// ProvideAddService provides the batch add service.
func ProvideAddService(i do.Injector) (*service.AddService, error) {
	library := do.MustInvoke[*service.LibraryService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAddService(library, sseHandle.Manager, log.Logger), nil
}

// ListControllerHandle wraps the list controller with shutdown capability.
type ListControllerHandle struct {
	*comiclist.Controller
}

// Shutdown implements do.Shutdownable.
func (h *ListControllerHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideListController provides the comic list view controller.
func ProvideListController(i do.Injector) (*ListControllerHandle, error) {
	provider := do.MustInvoke[*service.ComicListService](i)
	marks := do.MustInvoke[*service.MarkService](i)
	library := do.MustInvoke[*service.LibraryService](i)
	adder := do.MustInvoke[*service.AddService](i)
	stateHandle := do.MustInvoke[*StateStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	controller, err := comiclist.NewController(
		context.Background(),
		provider,
		marks,
		library,
		adder,
		stateHandle.Store,
		log.Logger,
	)
	if err != nil {
		return nil, err
	}

	return &ListControllerHandle{Controller: controller}, nil
}
