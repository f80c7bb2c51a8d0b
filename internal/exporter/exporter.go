package exporter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"twxcli/internal/config"
	"twxcli/internal/infrastructure"
	"twxcli/pkg/contracts/domain"
)

// Exporter writes decomposed records to files under the exports directory.
type Exporter struct {
	paths  *config.Paths
	bom    bool
	logger *slog.Logger
}

// New creates an exporter. bom prefixes CSV output with a UTF-8 byte order mark.
func New(paths *config.Paths, cfg config.ExportConfig, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		paths:  paths,
		bom:    cfg.BOM,
		logger: infrastructure.WithComponent(logger, "exporter"),
	}
}

// Write encodes records in format to w.
func (e *Exporter) Write(w io.Writer, records []*domain.OutputRecord, format Format, kind domain.ReportKind) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records, e.bom)
	case FormatXLSX:
		return WriteXLSX(w, records, string(kind))
	case FormatJSON:
		return WriteJSON(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportFile writes records to path, or to the default exports location
// (kind_from_to.ext) when path is empty, and returns the path written.
func (e *Exporter) ExportFile(path string, records []*domain.OutputRecord, format Format, kind domain.ReportKind, from, to string) (string, error) {
	if path == "" {
		if e.paths == nil {
			return "", fmt.Errorf("no output path and no exports directory configured")
		}
		path = e.paths.ExportFile(string(kind), from, to, format.Extension())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	buf := bufio.NewWriter(file)
	err = e.Write(buf, records, format, kind)
	if err == nil {
		if err = buf.Flush(); err != nil {
			err = fmt.Errorf("failed to flush %s: %w", path, err)
		}
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	if err != nil {
		// leave no partial export behind
		os.Remove(path)
		return "", err
	}

	e.logger.Info("Export written",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.String("kind", string(kind)),
		slog.Int("records", len(records)))
	return path, nil
}
