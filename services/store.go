package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"university-faq-assistant/models"
	"university-faq-assistant/utils"
)

// Persisted index layout: versioned directories under the store root, each
// holding three artifacts, with a CURRENT pointer file naming the live one.
// Publishing writes a fresh versioned directory and then replaces CURRENT
// with a single atomic rename, so a reader always resolves either the old
// index or the new one in full. All three artifacts must be present and
// mutually consistent to count as loadable; anything less is "no index",
// never a corrupt-but-loadable state.
const (
	manifestFile  = "manifest.json"
	recordsFile   = "records.json.gz"
	vectorsFile   = "vectors.json"
	currentFile   = "CURRENT"
	versionPrefix = "index-"
)

type indexManifest struct {
	Space     string    `json:"space"`
	Dimension int       `json:"dimension"`
	Count     int       `json:"count"`
	BuiltAt   time.Time `json:"built_at"`
}

// IndexStore persists a VectorIndex under a root directory.
type IndexStore struct {
	dir string
}

func NewIndexStore(dir string) *IndexStore {
	return &IndexStore{dir: dir}
}

// Save publishes the index atomically. The previously current version is
// kept on disk until the next publish, so a reader that resolved the old
// pointer just before the swap still finds its artifacts.
func (s *IndexStore) Save(idx *VectorIndex) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index dir: %w", err)
	}

	// The version directory is invisible to readers until CURRENT names it,
	// so artifacts can be written into place directly.
	versionDir, err := os.MkdirTemp(s.dir, versionPrefix)
	if err != nil {
		return fmt.Errorf("failed to create index version dir: %w", err)
	}
	version := filepath.Base(versionDir)
	published := false
	defer func() {
		if !published {
			os.RemoveAll(versionDir)
		}
	}()

	manifest := indexManifest{
		Space:     idx.Space,
		Dimension: idx.Dimension,
		Count:     idx.Size(),
		BuiltAt:   time.Now().UTC(),
	}
	if err := writeJSON(filepath.Join(versionDir, manifestFile), manifest); err != nil {
		return err
	}

	recordsBlob, err := json.Marshal(idx.Records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	compressed, err := utils.CompressData(recordsBlob, utils.CompressionGzip)
	if err != nil {
		return fmt.Errorf("failed to compress records: %w", err)
	}
	if err := os.WriteFile(filepath.Join(versionDir, recordsFile), compressed, 0o644); err != nil {
		return fmt.Errorf("failed to write records blob: %w", err)
	}

	if err := writeJSON(filepath.Join(versionDir, vectorsFile), idx.Vectors); err != nil {
		return err
	}

	previous := s.currentVersion()

	// Swing the pointer with one rename. Nothing before this is visible to
	// readers; a failure after this leaves the new index fully published.
	pointer, err := os.CreateTemp(s.dir, ".current-*")
	if err != nil {
		return fmt.Errorf("failed to create pointer file: %w", err)
	}
	if _, err := pointer.WriteString(version); err != nil {
		pointer.Close()
		os.Remove(pointer.Name())
		return fmt.Errorf("failed to write pointer file: %w", err)
	}
	if err := pointer.Close(); err != nil {
		os.Remove(pointer.Name())
		return fmt.Errorf("failed to close pointer file: %w", err)
	}
	if err := os.Rename(pointer.Name(), filepath.Join(s.dir, currentFile)); err != nil {
		os.Remove(pointer.Name())
		return fmt.Errorf("failed to publish index: %w", err)
	}
	published = true

	s.pruneVersions(version, previous)
	return nil
}

// Load reads the published index. A missing or partial index returns
// (nil, nil): the caller treats it as "no index yet" and serves empty
// results until the next ingestion run.
func (s *IndexStore) Load() (*VectorIndex, error) {
	for {
		version := s.currentVersion()
		if version == "" {
			return nil, nil
		}
		idx, err := s.loadVersion(filepath.Join(s.dir, version))
		if idx == nil || err != nil {
			// Republishing prunes retired versions; if the pointer moved
			// while we were reading, follow it rather than report a gap.
			if s.currentVersion() != version {
				continue
			}
		}
		return idx, err
	}
}

func (s *IndexStore) loadVersion(dir string) (*VectorIndex, error) {
	for _, name := range []string{manifestFile, recordsFile, vectorsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return nil, nil
		}
	}

	var manifest indexManifest
	if err := readJSON(filepath.Join(dir, manifestFile), &manifest); err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(filepath.Join(dir, recordsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read records blob: %w", err)
	}
	recordsBlob, err := utils.DecompressData(compressed, utils.CompressionGzip)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress records: %w", err)
	}
	var records []models.IndexRecord
	if err := json.Unmarshal(recordsBlob, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	var vectors [][]float32
	if err := readJSON(filepath.Join(dir, vectorsFile), &vectors); err != nil {
		return nil, err
	}

	if len(records) != manifest.Count || len(vectors) != manifest.Count {
		// Mutually inconsistent artifacts are not loadable.
		log.Printf("index at %s is inconsistent (manifest %d, records %d, vectors %d); treating as no index",
			dir, manifest.Count, len(records), len(vectors))
		return nil, nil
	}

	return NewVectorIndex(manifest.Space, manifest.Dimension, records, vectors)
}

// Version returns an opaque value that changes whenever a new index is
// published, and 0 when no index is present.
func (s *IndexStore) Version() int64 {
	info, err := os.Stat(filepath.Join(s.dir, currentFile))
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}

// currentVersion resolves the CURRENT pointer; empty when none exists.
func (s *IndexStore) currentVersion() string {
	data, err := os.ReadFile(filepath.Join(s.dir, currentFile))
	if err != nil {
		return ""
	}
	version := strings.TrimSpace(string(data))
	if !strings.HasPrefix(version, versionPrefix) || strings.ContainsRune(version, os.PathSeparator) {
		return ""
	}
	return version
}

// pruneVersions removes retired index directories, keeping the named ones.
func (s *IndexStore) pruneVersions(keep ...string) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	kept := make(map[string]bool, len(keep))
	for _, name := range keep {
		kept[name] = true
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, versionPrefix) || kept[name] {
			continue
		}
		os.RemoveAll(filepath.Join(s.dir, name))
	}
}

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
