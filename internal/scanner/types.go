// Package scanner discovers comic archives on disk and reconciles them
// with the library database.
package scanner

import "time"

// ScannedFile is one comic archive discovered during a walk.
type ScannedFile struct {
	Path    string
	RelPath string
	Size    int64
	ModTime time.Time
}

// FileUpdate pairs an existing comic with the on-disk file that replaced it.
type FileUpdate struct {
	ComicID string
	File    ScannedFile
}

// ScanDiff is the result of comparing a walk against the library.
type ScanDiff struct {
	// Added are files with no matching comic.
	Added []ScannedFile
	// Updated are comics whose backing file changed on disk.
	Updated []FileUpdate
	// Missing are IDs of comics whose file no longer exists.
	Missing []string
}

// ScanSummary reports what a full scan did.
type ScanSummary struct {
	Scanned   int
	Added     int
	Updated   int
	Missing   int
	Corrupted int
	Duration  time.Duration
}
