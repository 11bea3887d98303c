// Package export writes a story collection to YAML or Parquet.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moment4u/moment4u/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Archive is the YAML document written by WriteYAML
type Archive struct {
	ExportedAt string         `yaml:"exportedat"`
	Source     string         `yaml:"source"`
	SortKey    string         `yaml:"sortkey"`
	Stories    []models.Story `yaml:"stories"`
}

// StoryRow is one Parquet row
type StoryRow struct {
	ID           string   `parquet:"id"`
	Title        string   `parquet:"title"`
	Content      string   `parquet:"content"`
	ThumbnailURL string   `parquet:"thumbnail_url"`
	Images       []string `parquet:"images,list"`
	CreatedAt    string   `parquet:"created_at"`
}

// Options describe where the stories came from
type Options struct {
	Source  string
	SortKey string
}

// WriteYAML writes stories as a YAML archive
func WriteYAML(w io.Writer, stories []models.Story, opts Options) error {
	archive := Archive{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Source:     opts.Source,
		SortKey:    opts.SortKey,
		Stories:    stories,
	}
	if archive.Stories == nil {
		archive.Stories = []models.Story{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&archive); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// WriteParquet writes one row per story
func WriteParquet(w io.Writer, stories []models.Story) error {
	rows := make([]StoryRow, 0, len(stories))
	for _, s := range stories {
		rows = append(rows, StoryRow{
			ID:           s.ID,
			Title:        s.Title,
			Content:      s.Content,
			ThumbnailURL: s.ThumbnailURL,
			Images:       s.Images,
			CreatedAt:    s.CreatedAt,
		})
	}
	if err := parquet.Write(w, rows); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// ReadParquet loads rows written by WriteParquet
func ReadParquet(path string) ([]StoryRow, error) {
	rows, err := parquet.ReadFile[StoryRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}

// ToFile picks the format from the file extension
func ToFile(path string, stories []models.Story, opts Options) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".parquet" {
		return fmt.Errorf("unsupported file format: %s (supported: .yaml, .yml, .parquet)", ext)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if ext == ".parquet" {
		err = WriteParquet(file, stories)
	} else {
		err = WriteYAML(file, stories, opts)
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close export file: %w", closeErr)
	}
	return err
}
