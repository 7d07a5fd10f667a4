// package formatter provides functions to export favorite songs to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
)

// Formats lists the supported export formats.
var Formats = []string{"csv", "json", "markdown", "txt"}

// FavoriteExport is a user's favorites captured at one instant.
type FavoriteExport struct {
	Email      string
	ExportedAt time.Time
	Favorites  []*models.Favorite
}

type favoriteRecord struct {
	SongPublicID string `json:"songPublicId"`
	UserEmail    string `json:"userEmail"`
	CreatedAt    string `json:"createdAt"`
}

type exportDocument struct {
	Email      string           `json:"email"`
	ExportedAt string           `json:"exportedAt"`
	Count      int              `json:"count"`
	Favorites  []favoriteRecord `json:"favorites"`
}

func record(f *models.Favorite) favoriteRecord {
	return favoriteRecord{
		SongPublicID: f.SongPublicID().String(),
		UserEmail:    f.UserEmail(),
		CreatedAt:    f.CreatedAt().UTC().Format(time.RFC3339),
	}
}

// ExportToCSV converts a FavoriteExport to CSV format with columns: SongPublicID, UserEmail, CreatedAt
func ExportToCSV(export *FavoriteExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"SongPublicID", "UserEmail", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, f := range export.Favorites {
		r := record(f)
		if err := writer.Write([]string{r.SongPublicID, r.UserEmail, r.CreatedAt}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a FavoriteExport to Markdown format
func ExportToMarkdown(export *FavoriteExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Favorites of %s\n\n", export.Email)
	fmt.Fprintf(&buf, "**Songs**: %d\n", len(export.Favorites))
	fmt.Fprintf(&buf, "**Exported**: %s\n\n", export.ExportedAt.UTC().Format(time.RFC3339))

	buf.WriteString("## Songs\n\n")
	for i, f := range export.Favorites {
		fmt.Fprintf(&buf, "%d. `%s` (added %s)\n", i+1, f.SongPublicID(), f.CreatedAt().UTC().Format(time.DateOnly))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a FavoriteExport to plain text format
func ExportToText(export *FavoriteExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Favorites: %s\n", export.Email)
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(export.Favorites))

	for i, f := range export.Favorites {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, f.SongPublicID())
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a FavoriteExport to an indented JSON document
func ExportToJSON(export *FavoriteExport) ([]byte, error) {
	doc := exportDocument{
		Email:      export.Email,
		ExportedAt: export.ExportedAt.UTC().Format(time.RFC3339),
		Count:      len(export.Favorites),
		Favorites:  make([]favoriteRecord, 0, len(export.Favorites)),
	}
	for _, f := range export.Favorites {
		doc.Favorites = append(doc.Favorites, record(f))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders export in format. Unknown formats fail with [shared.ErrInvalidArgument].
func Export(export *FavoriteExport, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(export)
	case "markdown", "md":
		return ExportToMarkdown(export)
	case "txt":
		return ExportToText(export)
	case "json", "":
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q (want one of %s)",
			shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// DefaultFilename derives {email local part}_favorites.{ext} for format.
func DefaultFilename(email, format string) string {
	base := email
	if i := strings.IndexByte(base, '@'); i > 0 {
		base = base[:i]
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		base = "user"
	}

	ext := format
	switch format {
	case "markdown":
		ext = "md"
	case "":
		ext = "json"
	}
	return fmt.Sprintf("%s_favorites.%s", base, ext)
}

// WriteExport renders export and writes it to path, defaulting to [DefaultFilename].
// It returns the path written.
func WriteExport(export *FavoriteExport, format, path string) (string, error) {
	data, err := Export(export, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = DefaultFilename(export.Email, format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
