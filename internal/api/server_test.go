package api

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/comixapp/comix-server/internal/comiclist"
	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/id"
	"github.com/comixapp/comix-server/internal/media/covers"
	"github.com/comixapp/comix-server/internal/scanner"
	"github.com/comixapp/comix-server/internal/search"
	"github.com/comixapp/comix-server/internal/service"
	"github.com/comixapp/comix-server/internal/sse"
	"github.com/comixapp/comix-server/internal/store"
	"github.com/comixapp/comix-server/internal/store/sqlite"
	"github.com/comixapp/comix-server/internal/store/state"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   any  `json:"error"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api      humatest.TestAPI
	store    *sqlite.Store
	settings *state.Store
	coversFS *covers.Storage
	index    *search.SearchIndex
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "comix.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	bus := store.NewBus()
	st.SetNotifier(bus)

	settings, err := state.Open(filepath.Join(dir, "state"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { settings.Close() })

	idx, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(dir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	manager := sse.NewManager(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)
	t.Cleanup(cancel)

	coverStorage, err := covers.NewStorage(filepath.Join(dir, "media"))
	require.NoError(t, err)

	sc := scanner.New(st, covers.NewProcessor(coverStorage, logger), logger)
	library := service.NewLibraryService(st, sc, idx, coverStorage, manager, filepath.Join(dir, "comics"), logger)
	provider := service.NewComicListService(st, bus, idx, manager, logger)
	marks := service.NewMarkService(st, manager, logger)
	adder := service.NewAddService(library, manager, logger)

	controller, err := comiclist.NewController(context.Background(), provider, marks, library, adder, settings, logger)
	require.NoError(t, err)
	t.Cleanup(controller.Close)

	services := &Services{
		ComicList: provider,
		Library:   library,
		Marks:     marks,
		Add:       adder,
	}

	srv := NewServer(
		services,
		controller,
		idx,
		coverStorage,
		settings,
		manager,
		sse.NewHandler(manager, logger),
		Options{},
		logger,
	)
	t.Cleanup(srv.Close)

	return &testServer{
		Server:   srv,
		api:      humatest.Wrap(t, srv.api),
		store:    st,
		settings: settings,
		coversFS: coverStorage,
		index:    idx,
	}
}

func (ts *testServer) addComic(t *testing.T, title string) *domain.Comic {
	t.Helper()

	now := time.Now()
	comic := &domain.Comic{
		ID:        id.MustGenerate("cmx"),
		Title:     title,
		Path:      "/library/" + title + ".cbz",
		Format:    "cbz",
		Size:      2048,
		PageCount: 24,
		AddedAt:   now,
		UpdatedAt: now,
	}
	require.NoError(t, ts.store.CreateComic(context.Background(), comic))
	return comic
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()

	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}
