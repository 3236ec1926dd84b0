package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyFile       = errors.New("empty file not allowed")
	ErrFileTooLarge    = errors.New("file too large")
	ErrTypeNotAllowed  = errors.New("file type not allowed")
	ErrContentMismatch = errors.New("file content does not match extension")
)

// Service stores uploaded invoice documents on the local filesystem under
// invoices/, temp/ and processed/ subdirectories.
type Service struct {
	root        string
	maxSize     int64
	allowedExts []string
	log         *slog.Logger
}

// StoredFile describes a saved upload.
type StoredFile struct {
	Path             string
	Name             string
	OriginalFilename string
	Size             int64
	Ext              string
	SHA256           string
}

func New(root string, maxSize int64, allowedExts []string, log *slog.Logger) (*Service, error) {
	s := &Service{
		root:        root,
		maxSize:     maxSize,
		allowedExts: allowedExts,
		log:         log,
	}
	for _, dir := range []string{"invoices", "temp", "processed"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
		}
	}
	return s, nil
}

// Save validates and persists an upload under invoices/ with a generated
// name, preserving the original extension.
func (s *Service) Save(filename string, r io.Reader) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	content, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if err := s.validate(ext, content); err != nil {
		return nil, err
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.root, "invoices", name)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("save file: %w", err)
	}

	sum := sha256.Sum256(content)
	s.log.Info("file saved", "path", path, "size", len(content))

	return &StoredFile{
		Path:             path,
		Name:             name,
		OriginalFilename: filepath.Base(filename),
		Size:             int64(len(content)),
		Ext:              ext,
		SHA256:           hex.EncodeToString(sum[:]),
	}, nil
}

func (s *Service) validate(ext string, content []byte) error {
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if int64(len(content)) > s.maxSize {
		return fmt.Errorf("%w: maximum size %.1fMB", ErrFileTooLarge, float64(s.maxSize)/1024/1024)
	}

	if !slices.Contains(s.allowedExts, strings.TrimPrefix(ext, ".")) {
		return fmt.Errorf("%w: allowed types: %s", ErrTypeNotAllowed, strings.Join(s.allowedExts, ", "))
	}

	return checkContent(ext, content)
}

// checkContent verifies the file content matches its extension.
func checkContent(ext string, content []byte) error {
	switch ext {
	case ".pdf":
		if !bytes.HasPrefix(content, []byte("%PDF-")) {
			return fmt.Errorf("%w: invalid PDF file", ErrContentMismatch)
		}
	case ".png", ".jpg", ".jpeg":
		detected := http.DetectContentType(content)
		if detected != "image/png" && detected != "image/jpeg" {
			return fmt.Errorf("%w: invalid image file", ErrContentMismatch)
		}
	}
	return nil
}

// HashFile returns the SHA-256 of a stored file.
func (s *Service) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MoveToProcessed relocates a stored file into processed/.
func (s *Service) MoveToProcessed(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("source file: %w", err)
	}

	dest := filepath.Join(s.root, "processed", filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("move to processed: %w", err)
	}

	s.log.Info("file moved to processed", "path", dest)
	return dest, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *Service) Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// CleanupTemp removes temp files older than the cutoff and returns how many
// were deleted.
func (s *Service) CleanupTemp(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	entries, err := os.ReadDir(filepath.Join(s.root, "temp"))
	if err != nil {
		return 0, fmt.Errorf("read temp dir: %w", err)
	}

	cleaned := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.root, "temp", entry.Name())); err == nil {
				cleaned++
			}
		}
	}

	s.log.Info("temp files cleaned", "count", cleaned)
	return cleaned, nil
}

// TypeStats aggregates stored file counts and sizes per extension.
type TypeStats struct {
	Count int   `json:"count"`
	Size  int64 `json:"size"`
}

// Stats walks the upload tree and reports totals by extension.
func (s *Service) Stats() (totalFiles int, totalSize int64, byType map[string]TypeStats, err error) {
	byType = map[string]TypeStats{}

	err = filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		totalFiles++
		totalSize += info.Size()

		ext := strings.ToLower(filepath.Ext(path))
		st := byType[ext]
		st.Count++
		st.Size += info.Size()
		byType[ext] = st
		return nil
	})
	if err != nil {
		return 0, 0, nil, fmt.Errorf("walk uploads: %w", err)
	}
	return totalFiles, totalSize, byType, nil
}
