// Package domain contains the core business entities and domain logic for the comix library.
package domain

import "time"

// Comic represents a single comic book in the library: one archive file plus
// the metadata and marks attached to it.
type Comic struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Path     string `json:"path"`
	Format   string `json:"format"` // "cbz", "cbr", "cb7", "pdf"
	Size     int64  `json:"size"`
	PageCount int   `json:"page_count"`

	CoverPath string `json:"cover_path,omitempty"`
	Blurhash  string `json:"blurhash,omitempty"`

	// Marks. Removed comics stay in the store until permanently deleted so
	// the removal can be undone from the list UI.
	Completed bool `json:"completed"`
	Removed   bool `json:"removed"`
	Corrupted bool `json:"corrupted"`

	// Position is the last read page index, zero-based.
	Position int `json:"position"`

	AddedAt   time.Time  `json:"added_at"`
	OpenedAt  *time.Time `json:"opened_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (c *Comic) Touch() {
	c.UpdatedAt = time.Now()
}

// MarkOpened records that the comic was opened for reading.
func (c *Comic) MarkOpened() {
	now := time.Now()
	c.OpenedAt = &now
	c.UpdatedAt = now
}

// LibraryState reflects what the library is currently doing with the
// underlying files. Mapped 1:1 to the state shown in list views.
type LibraryState string

// Library states.
const (
	LibraryIdle     LibraryState = "idle"
	LibrarySyncing  LibraryState = "syncing"
	LibraryChanging LibraryState = "changing"
)

// ListType is the presentation style of the comic list.
type ListType string

// List types.
const (
	ListTypeGrid ListType = "grid"
	ListTypeList ListType = "list"
)

// AddMode controls how an added comic file relates to the library directory.
type AddMode string

// Add modes.
const (
	// AddModeImport copies the file into the library directory.
	AddModeImport AddMode = "import"
	// AddModeLink references the file in place.
	AddModeLink AddMode = "link"
)

// AddFlag is a bitset of options for the add flow.
type AddFlag uint32

// Add flags.
const (
	// AddFlagReplace replaces an existing comic at the same path.
	AddFlagReplace AddFlag = 1 << iota
	// AddFlagSkipCorrupted silently skips archives that fail to open
	// instead of reporting them as errors.
	AddFlagSkipCorrupted
)

// Has reports whether flag is set.
func (f AddFlag) Has(flag AddFlag) bool {
	return f&flag != 0
}

// ScreenState is the minimal list-screen state saved across client restarts:
// the search box contents and the key of the last visible page item.
type ScreenState struct {
	SearchText  string `json:"search_text,omitempty"`
	LastPageKey *int   `json:"last_page_key,omitempty"`
}
