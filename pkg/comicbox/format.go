package comicbox

import (
	"bytes"
	"io"
	"strings"
)

// Format represents the detected container format
type Format int

const (
	FormatUnknown Format = iota
	FormatCBZ
	FormatCB7
)

func (f Format) String() string {
	switch f {
	case FormatCBZ:
		return "cbz"
	case FormatCB7:
		return "cb7"
	default:
		return "unknown"
	}
}

// Extensions lists the file extensions a format is published under.
func (f Format) Extensions() []string {
	switch f {
	case FormatCBZ:
		return []string{".cbz", ".zip"}
	case FormatCB7:
		return []string{".cb7", ".7z"}
	default:
		return nil
	}
}

// FormatForPath guesses the container format from a file extension.
func FormatForPath(path string) Format {
	ext := strings.ToLower(path[strings.LastIndex(path, ".")+1:])
	switch ext {
	case "cbz", "zip":
		return FormatCBZ
	case "cb7", "7z":
		return FormatCB7
	default:
		return FormatUnknown
	}
}

// Archive magics. RAR is recognized so CBR files get a precise error
// instead of a generic "not a comic archive".
var (
	magic7z  = []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}
	magicRar = []byte("Rar!")
)

// DetectFormat determines the container format by reading the archive magic
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	// Longest magic is 6 bytes
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small to be a comic archive",
		}
	}

	magic := make([]byte, 6)
	if size < int64(len(magic)) {
		magic = magic[:size]
	}
	if _, err := r.ReadAt(magic, 0); err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read archive magic",
		}
	}

	// ZIP local file header: "PK\x03\x04". Empty archives start with
	// "PK\x05\x06" and are accepted so they can be reported as pageless
	// rather than foreign.
	if magic[0] == 'P' && magic[1] == 'K' &&
		(magic[2] == 0x03 || magic[2] == 0x05) {
		return FormatCBZ, nil
	}

	if bytes.HasPrefix(magic, magic7z) {
		return FormatCB7, nil
	}

	if bytes.HasPrefix(magic, magicRar) {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "RAR comic archives (CBR) are not supported",
		}
	}

	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "not a ZIP or 7z comic archive",
	}
}
