package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/samber/do/v2"

	"github.com/comixapp/comix-server/internal/api"
	"github.com/comixapp/comix-server/internal/config"
	"github.com/comixapp/comix-server/internal/logger"
	"github.com/comixapp/comix-server/internal/mdns"
	"github.com/comixapp/comix-server/internal/media/covers"
	"github.com/comixapp/comix-server/internal/service"
	"github.com/comixapp/comix-server/internal/sse"
	"github.com/comixapp/comix-server/internal/watcher"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	stateHandle := do.MustInvoke[*StateStoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	coverStorage := do.MustInvoke[*covers.Storage](i)
	listHandle := do.MustInvoke[*ListControllerHandle](i)

	services := &api.Services{
		ComicList: do.MustInvoke[*service.ComicListService](i),
		Library:   do.MustInvoke[*service.LibraryService](i),
		Marks:     do.MustInvoke[*service.MarkService](i),
		Add:       do.MustInvoke[*service.AddService](i),
	}

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)

	apiServer := api.NewServer(
		services,
		listHandle.Controller,
		searchHandle.SearchIndex,
		coverStorage,
		stateHandle.Store,
		sseHandle.Manager,
		sseHandler,
		api.Options{AllowedOrigins: cfg.Server.AllowedOrigins},
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: apiServer}, nil
}

// MDNSServiceHandle wraps the mDNS advertiser with shutdown capability.
type MDNSServiceHandle struct {
	*mdns.Service
}

// Shutdown implements do.Shutdownable.
func (h *MDNSServiceHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideMDNSService provides local network discovery.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := mdns.NewService(log.Logger)

	if cfg.Server.AdvertiseMDNS {
		port, err := strconv.Atoi(cfg.Server.Port)
		if err != nil {
			return nil, fmt.Errorf("invalid server port %q: %w", cfg.Server.Port, err)
		}
		if err := svc.Start(mdns.Advertisement{Name: cfg.Server.Name, Port: port}); err != nil {
			// Non-fatal: multicast is unavailable in many container setups.
			log.Warn("mDNS advertisement unavailable", "error", err)
		}
	}

	return &MDNSServiceHandle{Service: svc}, nil
}

// FileWatcherHandle wraps the file watcher with shutdown capability.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the library filesystem watcher. The watcher is
// skipped when watching is disabled or no library path is configured.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	library := do.MustInvoke[*service.LibraryService](i)

	if !cfg.Library.WatchFiles || cfg.Library.ComicsPath == "" {
		log.Info("File watching disabled")
		return &FileWatcherHandle{}, nil
	}

	w, err := watcher.New(log.Logger, watcher.Options{})
	if err != nil {
		return nil, err
	}

	if err := w.Watch(cfg.Library.ComicsPath); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		cancel()
		return nil, err
	}
	go library.Watch(ctx, w)

	log.Info("File watcher started", "path", cfg.Library.ComicsPath)

	return &FileWatcherHandle{Watcher: w, cancel: cancel}, nil
}
