package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/render"
)

// formatExt maps render formats to file extensions.
var formatExt = map[string]string{
	render.FormatJSON: ".json",
	render.FormatDOT:  ".dot",
	render.FormatSVG:  ".svg",
	render.FormatTree: ".txt",
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// basePath strips a known format extension from output, so that several
// formats can be written next to each other (out.json, out.svg).
func basePath(output string) string {
	ext := filepath.Ext(output)
	for _, known := range formatExt {
		if ext == known {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// writeArtifacts writes a single artifact to w when output is empty, or one
// file per format otherwise. A single format is written to output as given.
func writeArtifacts(w io.Writer, artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	if output == "" {
		if len(formats) > 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "--output is required for more than one format")
		}
		_, err := w.Write(artifacts[formats[0]])
		return nil, err
	}

	if len(formats) == 1 {
		if err := os.WriteFile(output, artifacts[formats[0]], 0o644); err != nil {
			return nil, err
		}
		return []string{output}, nil
	}

	base := basePath(output)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := base + formatExt[format]
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
