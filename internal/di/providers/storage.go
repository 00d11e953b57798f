package providers

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/comixapp/comix-server/internal/config"
	"github.com/comixapp/comix-server/internal/logger"
	"github.com/comixapp/comix-server/internal/media/covers"
	"github.com/comixapp/comix-server/internal/search"
	"github.com/comixapp/comix-server/internal/sse"
	"github.com/comixapp/comix-server/internal/store"
	"github.com/comixapp/comix-server/internal/store/sqlite"
	"github.com/comixapp/comix-server/internal/store/state"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// ProvideChangeBus provides the store change bus that feeds list invalidation.
func ProvideChangeBus(i do.Injector) (*store.Bus, error) {
	return store.NewBus(), nil
}

// StoreHandle wraps the comic store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite comic store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	bus := do.MustInvoke[*store.Bus](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "comix.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}
	db.SetNotifier(bus)

	log.Info("Comic store initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// StateStoreHandle wraps the Badger state store with shutdown capability.
type StateStoreHandle struct {
	*state.Store
}

// Shutdown implements do.Shutdownable.
func (h *StateStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStateStore provides the Badger settings/state store.
func ProvideStateStore(i do.Injector) (*StateStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	statePath := filepath.Join(cfg.Data.BasePath, "state")
	st, err := state.Open(statePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("State store initialized", "path", statePath)

	return &StateStoreHandle{Store: st}, nil
}

// SearchIndexHandle wraps the Bleve index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the full-text search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	idx, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(cfg.Data.BasePath, "search"),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	log.Info("Search index initialized")

	return &SearchIndexHandle{SearchIndex: idx}, nil
}

// ProvideCoverStorage provides cover image storage.
func ProvideCoverStorage(i do.Injector) (*covers.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := covers.NewStorage(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("cover storage: %w", err)
	}

	log.Info("Cover storage initialized")

	return storage, nil
}

// ProvideCoverProcessor provides the cover extraction pipeline.
func ProvideCoverProcessor(i do.Injector) (*covers.Processor, error) {
	storage := do.MustInvoke[*covers.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return covers.NewProcessor(storage, log.Logger), nil
}
