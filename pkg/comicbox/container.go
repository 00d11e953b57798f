package comicbox

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bodgit/sevenzip"
)

// Page is one readable image inside a container.
type Page struct {
	// Name is the entry path inside the archive.
	Name string
	// Size is the uncompressed size in bytes.
	Size int64

	open func() (io.ReadCloser, error)
}

// Open opens the page image for reading.
func (p Page) Open() (io.ReadCloser, error) {
	return p.open()
}

// Container is an opened comic archive. Pages are ordered the way a reader
// expects: natural numeric ordering ("page2" before "page10"), directories
// first by their own natural order.
type Container struct {
	path   string
	format Format
	size   int64

	closer io.Closer
	pages  []Page
}

// Open opens a comic archive and indexes its pages. Non-image entries,
// directories, and archive junk (macOS metadata, hidden files) are skipped.
func Open(filePath string) (*Container, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	format, err := DetectFormat(f, info.Size(), filePath)
	f.Close()
	if err != nil {
		return nil, err
	}

	c := &Container{
		path:   filePath,
		format: format,
		size:   info.Size(),
	}

	switch format {
	case FormatCBZ:
		err = c.indexZip(filePath)
	case FormatCB7:
		err = c.indexSevenZip(filePath)
	default:
		return nil, &UnsupportedFormatError{Path: filePath, Reason: "unreadable container format"}
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(c.pages, func(i, j int) bool {
		return naturalLess(c.pages[i].Name, c.pages[j].Name)
	})

	return c, nil
}

func (c *Container) indexZip(filePath string) error {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return &CorruptedArchiveError{Path: filePath, Reason: err.Error()}
	}
	c.closer = zr

	for _, zf := range zr.File {
		if !isPageEntry(zf.Name, zf.FileInfo().IsDir()) {
			continue
		}
		c.pages = append(c.pages, Page{
			Name: zf.Name,
			Size: int64(zf.UncompressedSize64),
			open: zf.Open,
		})
	}
	return nil
}

func (c *Container) indexSevenZip(filePath string) error {
	sr, err := sevenzip.OpenReader(filePath)
	if err != nil {
		return &CorruptedArchiveError{Path: filePath, Reason: err.Error()}
	}
	c.closer = sr

	for _, sf := range sr.File {
		if !isPageEntry(sf.Name, sf.FileInfo().IsDir()) {
			continue
		}
		c.pages = append(c.pages, Page{
			Name: sf.Name,
			Size: sf.FileInfo().Size(),
			open: sf.Open,
		})
	}
	return nil
}

// Close releases the underlying archive.
func (c *Container) Close() error {
	return c.closer.Close()
}

// Path returns the archive path on disk.
func (c *Container) Path() string { return c.path }

// Format returns the detected container format.
func (c *Container) Format() Format { return c.format }

// Size returns the archive size on disk in bytes.
func (c *Container) Size() int64 { return c.size }

// Pages returns the ordered page list.
func (c *Container) Pages() []Page { return c.pages }

// PageCount returns the number of readable pages.
func (c *Container) PageCount() int { return len(c.pages) }

// Page returns the page at index (zero-based, reader order).
func (c *Container) Page(index int) (Page, error) {
	if index < 0 || index >= len(c.pages) {
		return Page{}, fmt.Errorf("page index %d out of range (0..%d)", index, len(c.pages)-1)
	}
	return c.pages[index], nil
}

// Cover opens the first page, which comic archives use as the cover.
func (c *Container) Cover() (io.ReadCloser, error) {
	if len(c.pages) == 0 {
		return nil, &NoPagesError{Path: c.path}
	}
	return c.pages[0].Open()
}

// imageExtensions are the page image types readers render.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// isPageEntry reports whether an archive entry is a readable page image.
func isPageEntry(name string, isDir bool) bool {
	if isDir {
		return false
	}

	if strings.HasPrefix(name, "__MACOSX/") {
		return false
	}
	base := path.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}

	return imageExtensions[strings.ToLower(path.Ext(base))]
}
