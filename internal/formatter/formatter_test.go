package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
	th "github.com/desertthunder/riff/internal/testing"
	"github.com/google/uuid"
)

var (
	songOne = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	songTwo = uuid.MustParse("22222222-2222-4222-8222-222222222222")
)

func testExport() *FavoriteExport {
	first := models.NewFavorite(songOne, "ada@example.com")
	first.SetCreatedAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	second := models.NewFavorite(songTwo, "ada@example.com")
	second.SetCreatedAt(time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC))

	return &FavoriteExport{
		Email:      "ada@example.com",
		ExportedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Favorites:  []*models.Favorite{first, second},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines: %q", len(lines), data)
		}
		if lines[0] != "SongPublicID,UserEmail,CreatedAt" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[1] != songOne.String()+",ada@example.com,2024-03-01T12:00:00Z" {
			t.Errorf("unexpected first row: %s", lines[1])
		}
	})

	t.Run("ExportToCSV empty", func(t *testing.T) {
		data, err := ExportToCSV(&FavoriteExport{Email: "ada@example.com"})
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "SongPublicID,UserEmail,CreatedAt" {
			t.Errorf("expected only headers, got %q", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Favorites of ada@example.com",
			"**Songs**: 2",
			"**Exported**: 2024-04-01T00:00:00Z",
			"1. `" + songOne.String() + "` (added 2024-03-01)",
			"2. `" + songTwo.String() + "` (added 2024-02-01)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Favorites: ada@example.com\nSongs: 2\n") {
			t.Errorf("unexpected text header: %q", output)
		}
		if !strings.Contains(output, "2. "+songTwo.String()) {
			t.Errorf("text missing second song: %q", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testExport())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var doc exportDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if doc.Count != 2 || len(doc.Favorites) != 2 {
			t.Errorf("expected 2 favorites, got %+v", doc)
		}
		if doc.Favorites[0].SongPublicID != songOne.String() || doc.Favorites[0].CreatedAt != "2024-03-01T12:00:00Z" {
			t.Errorf("unexpected first favorite %+v", doc.Favorites[0])
		}
	})
}

func TestExport(t *testing.T) {
	tests := []struct {
		format string
		prefix string
	}{
		{"csv", "SongPublicID"},
		{"markdown", "# Favorites"},
		{"md", "# Favorites"},
		{"txt", "Favorites:"},
		{"json", "{"},
		{"", "{"},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			data, err := Export(testExport(), tt.format)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if !strings.HasPrefix(string(data), tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, data)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, err := Export(testExport(), "xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestDefaultFilename(t *testing.T) {
	tests := []struct {
		email, format, want string
	}{
		{"ada@example.com", "csv", "ada_favorites.csv"},
		{"ada@example.com", "markdown", "ada_favorites.md"},
		{"ada@example.com", "", "ada_favorites.json"},
		{"github|grace", "txt", "github_grace_favorites.txt"},
		{"", "json", "user_favorites.json"},
	}

	for _, tt := range tests {
		if got := DefaultFilename(tt.email, tt.format); got != tt.want {
			t.Errorf("DefaultFilename(%q, %q) = %q, want %q", tt.email, tt.format, got, tt.want)
		}
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("writes to given path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "favorites.csv")

		written, err := WriteExport(testExport(), "csv", path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		th.AssertFileExists(t, path)
		if !strings.Contains(th.MustReadFile(t, path), songOne.String()) {
			t.Error("export file missing favorite")
		}
	})

	t.Run("defaults filename", func(t *testing.T) {
		dir := t.TempDir()
		wd := th.MustGetwd(t)
		th.MustChdir(t, dir)
		t.Cleanup(func() { th.MustChdir(t, wd) })

		written, err := WriteExport(testExport(), "markdown", "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "ada_favorites.md" {
			t.Errorf("expected default filename, got %s", written)
		}
		th.AssertFileExists(t, filepath.Join(dir, written))
	})

	t.Run("unwritable path", func(t *testing.T) {
		_, err := WriteExport(testExport(), "json", filepath.Join(t.TempDir(), "missing", "out.json"))
		if err == nil || !strings.Contains(err.Error(), "failed to write export file") {
			t.Errorf("expected write error, got %v", err)
		}
	})

	t.Run("unknown format writes nothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xml")
		if _, err := WriteExport(testExport(), "xml", path); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
