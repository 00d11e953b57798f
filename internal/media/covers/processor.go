package covers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"log/slog"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/comixapp/comix-server/pkg/comicbox"
)

// maxCoverWidth is the stored cover width. Source pages are often full
// print resolution; clients never need more than this for a list tile.
const maxCoverWidth = 800

// jpegQuality for re-encoded covers.
const jpegQuality = 85

// Processor extracts and stores cover images from comic archives.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// ExtractAndProcess pulls the first page out of a comic archive, scales it
// down, stores it as the comic's cover, and returns the stored cover path
// together with its BlurHash placeholder.
func (p *Processor) ExtractAndProcess(ctx context.Context, archivePath, comicID string) (coverPath, hash string, err error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	container, err := comicbox.Open(archivePath)
	if err != nil {
		return "", "", fmt.Errorf("open comic archive: %w", err)
	}
	defer container.Close() //nolint:errcheck // Defer close, nothing we can do about errors here

	rc, err := container.Cover()
	if err != nil {
		return "", "", fmt.Errorf("extract cover page: %w", err)
	}
	defer rc.Close()

	img, err := decodeCover(rc)
	if err != nil {
		p.logger.Warn("failed to decode cover page",
			"path", archivePath,
			"error", err,
		)
		return "", "", fmt.Errorf("decode cover page: %w", err)
	}

	scaled := scaleDown(img, maxCoverWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", "", fmt.Errorf("encode cover: %w", err)
	}

	if err := p.storage.Save(comicID, buf.Bytes()); err != nil {
		return "", "", fmt.Errorf("save cover: %w", err)
	}

	hash, err = ComputeBlurHash(scaled)
	if err != nil {
		return "", "", fmt.Errorf("compute blurhash: %w", err)
	}

	p.logger.Debug("extracted and saved cover",
		"comic_id", comicID,
		"path", archivePath,
		"size", buf.Len(),
	)

	return p.storage.Path(comicID), hash, nil
}

// decodeCover decodes a page image from r.
func decodeCover(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}
