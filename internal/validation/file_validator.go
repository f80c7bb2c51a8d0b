package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "twxcli/internal/errors"
	"twxcli/internal/infrastructure"
)

// DefaultMaxInputBytes caps offline report files; real downloads are a few MB.
const DefaultMaxInputBytes = 64 << 20

// InputType is the decoder an offline report file needs.
type InputType string

const (
	InputCSV  InputType = "csv"
	InputXLSX InputType = "xlsx"
)

// FileValidator checks the files the CLI reads and writes.
type FileValidator struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewFileValidator creates a new file validator. maxBytes <= 0 uses
// DefaultMaxInputBytes.
func NewFileValidator(maxBytes int64, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}
	return &FileValidator{
		maxBytes: maxBytes,
		logger:   infrastructure.WithComponent(logger, "file_validator"),
	}
}

// ValidateFile checks that path is an existing, readable regular file.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return apperrors.NewNotFoundError(fmt.Sprintf("file %s", path))
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return apperrors.NewInvalidInputError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateReportFile checks a manually downloaded report and returns the
// decoder it needs. Only .csv and .xlsx are accepted; Excel lock files (~$)
// and empty or oversized files are rejected.
func (v *FileValidator) ValidateReportFile(path string) (InputType, error) {
	if err := v.ValidateFile(path); err != nil {
		return "", err
	}

	var input InputType
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		input = InputCSV
	case ".xlsx":
		input = InputXLSX
	default:
		v.logger.Error("Unsupported report file",
			slog.String("file", path),
			slog.String("extension", ext))
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("file %s is not a CSV or XLSX report (extension: %s)", path, ext))
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("file %s is a temporary Excel file", path))
	}

	info, _ := os.Stat(path)
	switch {
	case info.Size() == 0:
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("file %s is empty", path))
	case info.Size() > v.maxBytes:
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("file %s is %d bytes, at most %d", path, info.Size(), v.maxBytes))
	}

	return input, nil
}

// ValidateOutputDirectory ensures dir exists or can be created, and accepts
// new files.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".write-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
