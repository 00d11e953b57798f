// Package main provides a read-only inspection tool for the comix data
// directory: comic counts by mark, plus the persisted list settings.
//
// Usage:
//
//	DATA_PATH=~/Comix/data go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/store/sqlite"
	"github.com/comixapp/comix-server/internal/store/state"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Comix/data")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	st, err := sqlite.Open(filepath.Join(dataPath, "comix.db"), logger)
	if err != nil {
		log.Fatalf("Failed to open comic store: %v", err)
	}
	defer st.Close()

	fmt.Println("=== Comic Store ===")
	fmt.Println()

	total, err := st.TotalComics(ctx)
	if err != nil {
		log.Fatalf("Failed to count comics: %v", err)
	}
	fmt.Printf("Comics total:     %d\n", total)

	printCount(ctx, st, "completed", domain.Filter{Group: domain.FilterGroupCompletion, Kind: domain.FilterCompleted})
	printCount(ctx, st, "removed", domain.Filter{Group: domain.FilterGroupRemoved, Kind: domain.FilterRemoved})
	printCount(ctx, st, "corrupted", domain.Filter{Group: domain.FilterGroupFile, Kind: domain.FilterCorrupted})

	fmt.Println()
	fmt.Println("=== List Settings ===")
	fmt.Println()

	settings, err := state.Open(filepath.Join(dataPath, "state"), logger)
	if err != nil {
		log.Fatalf("Failed to open state store: %v", err)
	}
	defer settings.Close()

	query, err := settings.GetComicListQuery(ctx)
	if err != nil {
		log.Fatalf("Failed to read list query: %v", err)
	}
	fmt.Printf("Sort:        %s\n", query.Sort)
	fmt.Printf("Title:       %q\n", query.Title)
	for group, f := range query.Filters {
		fmt.Printf("Filter:      %s = %s\n", group, f.Kind)
	}

	listType, err := settings.GetComicListType(ctx)
	if err != nil {
		log.Fatalf("Failed to read list type: %v", err)
	}
	fmt.Printf("List type:   %s\n", listType)
}

// printCount counts comics matching a single filter, ignoring the default
// removed-hidden filter so marks are counted across the whole store.
func printCount(ctx context.Context, st *sqlite.Store, label string, f domain.Filter) {
	q := domain.QueryParams{
		Sort:    domain.SortNameAsc,
		Filters: map[string]domain.Filter{f.Group: f},
	}

	n, err := st.CountComics(ctx, q)
	if err != nil {
		log.Fatalf("Failed to count %s comics: %v", label, err)
	}
	fmt.Printf("Comics %-10s %d\n", label+":", n)
}
