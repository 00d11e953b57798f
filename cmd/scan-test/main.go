// Package main provides a development tool that scans a comics directory
// into a throwaway database and reports what a real sync would do.
//
// Usage:
//
//	go run ./cmd/scan-test <comics-path>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/comixapp/comix-server/internal/media/covers"
	"github.com/comixapp/comix-server/internal/scanner"
	"github.com/comixapp/comix-server/internal/store/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: scan-test <comics-path>")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	tmpDir, err := os.MkdirTemp("", "comix-scan-test-*")
	if err != nil {
		logger.Error("temp dir", "error", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	st, err := sqlite.Open(filepath.Join(tmpDir, "scan.db"), logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	storage, err := covers.NewStorage(tmpDir)
	if err != nil {
		logger.Error("cover storage", "error", err)
		os.Exit(1)
	}

	s := scanner.New(st, covers.NewProcessor(storage, logger), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := s.Scan(ctx, os.Args[1])
	if err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Scan Complete ===\n")
	fmt.Printf("Duration:  %s\n", summary.Duration)
	fmt.Printf("Scanned:   %d\n", summary.Scanned)
	fmt.Printf("Added:     %d\n", summary.Added)
	fmt.Printf("Updated:   %d\n", summary.Updated)
	fmt.Printf("Missing:   %d\n", summary.Missing)
	fmt.Printf("Corrupted: %d\n", summary.Corrupted)
}
