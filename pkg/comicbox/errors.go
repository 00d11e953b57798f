// Package comicbox reads comic book container archives
package comicbox

import "fmt"

// UnsupportedFormatError is returned when the file is not a supported container
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedArchiveError is returned when the container structure is invalid
type CorruptedArchiveError struct {
	Path   string
	Reason string
}

func (e *CorruptedArchiveError) Error() string {
	return fmt.Sprintf("%s: corrupted archive: %s", e.Path, e.Reason)
}

// NoPagesError is returned when a container holds no readable page images
type NoPagesError struct {
	Path string
}

func (e *NoPagesError) Error() string {
	return fmt.Sprintf("%s: archive contains no page images", e.Path)
}
