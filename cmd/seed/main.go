// Package main provides a tool to seed the comic store with test data.
//
// This creates fake comics with a spread of formats, marks, and timestamps
// to exercise the list screen without a real library.
//
// Usage:
//
//	DATA_PATH=~/Comix/data go run ./cmd/seed
//	DATA_PATH=~/Comix/data go run ./cmd/seed --count 200
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/id"
	"github.com/comixapp/comix-server/internal/store/sqlite"
)

var count = flag.Int("count", 50, "Number of comics to create")

var titleWords = [][]string{
	{"Midnight", "Silver", "Crimson", "Lost", "Iron", "Paper", "Hollow", "Neon", "Quiet", "Last"},
	{"City", "Garden", "Signal", "Harbor", "Engine", "Forest", "Archive", "Circus", "Kingdom", "Orbit"},
}

var formats = []string{"cbz", "cbz", "cbz", "cbr", "cb7", "pdf"}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Comix/data")
	}

	dbPath := filepath.Join(dataPath, "comix.db")
	fmt.Printf("Opening comic store at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	created := 0

	for i := 0; i < *count; i++ {
		comic := makeComic(i)
		if err := st.CreateComic(ctx, comic); err != nil {
			log.Printf("skip %q: %v", comic.Title, err)
			continue
		}
		created++
	}

	total, err := st.TotalComics(ctx)
	if err != nil {
		log.Fatalf("Failed to count comics: %v", err)
	}

	fmt.Printf("Created %d comics (%d total in store)\n", created, total)
}

func makeComic(n int) *domain.Comic {
	title := fmt.Sprintf("%s %s Vol. %d",
		titleWords[0][rand.Intn(len(titleWords[0]))],
		titleWords[1][rand.Intn(len(titleWords[1]))],
		n%12+1,
	)

	format := formats[rand.Intn(len(formats))]
	added := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)

	comic := &domain.Comic{
		ID:        id.MustGenerate("cmx"),
		Title:     title,
		Path:      fmt.Sprintf("/library/seed/%04d.%s", n, format),
		Format:    format,
		Size:      int64(rand.Intn(200)+20) * 1 << 20,
		PageCount: rand.Intn(180) + 20,
		Completed: rand.Intn(4) == 0,
		AddedAt:   added,
		UpdatedAt: added,
	}

	// Some comics have been opened partway through.
	if rand.Intn(2) == 0 {
		opened := added.Add(time.Duration(rand.Intn(72)) * time.Hour)
		comic.OpenedAt = &opened
		comic.Position = rand.Intn(comic.PageCount)
	}

	return comic
}
