package services

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"university-faq-assistant/models"
)

// currentVersionDir resolves the directory the CURRENT pointer names.
func currentVersionDir(t *testing.T, root string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "CURRENT"))
	if err != nil {
		t.Fatalf("read CURRENT: %v", err)
	}
	return filepath.Join(root, strings.TrimSpace(string(data)))
}

func sampleIndex(t *testing.T) *VectorIndex {
	t.Helper()
	records := []models.IndexRecord{
		{
			ID: "handbook.pdf:1:0", SourceID: "handbook.pdf", Page: 1, Sequence: 0,
			OriginalText:   "Admission deadline is January 15. Late applications are not considered.",
			CompressedText: "Admission deadline: January 15, no late applications.",
			Ratio:          0.74, Ordinal: 0,
		},
		{
			ID: "handbook.pdf:2:0", SourceID: "handbook.pdf", Page: 2, Sequence: 0,
			OriginalText:   "Tuition is due at the start of each semester.",
			CompressedText: "Tuition is due at the start of each semester.",
			Ratio:          1.0, Fallback: true, Ordinal: 1,
		},
	}
	vectors := [][]float32{{1, 0, 0.5}, {0, 1, 0.25}}
	idx, err := NewVectorIndex("test/term-v1", 3, records, vectors)
	if err != nil {
		t.Fatalf("NewVectorIndex: %v", err)
	}
	return idx
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := NewIndexStore(filepath.Join(t.TempDir(), "index"))
	idx := sampleIndex(t)

	if err := store.Save(idx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned no index after Save")
	}

	if loaded.Space != idx.Space || loaded.Dimension != idx.Dimension {
		t.Errorf("loaded space/dimension = %q/%d", loaded.Space, loaded.Dimension)
	}
	if loaded.Size() != idx.Size() {
		t.Fatalf("loaded %d records, want %d", loaded.Size(), idx.Size())
	}
	for i := range idx.Records {
		// Original text must survive byte for byte; it feeds generation.
		if loaded.Records[i].OriginalText != idx.Records[i].OriginalText {
			t.Errorf("record %d original text changed", i)
		}
		if loaded.Records[i] != idx.Records[i] {
			t.Errorf("record %d = %+v, want %+v", i, loaded.Records[i], idx.Records[i])
		}
	}
	for i := range idx.Vectors {
		for j := range idx.Vectors[i] {
			if loaded.Vectors[i][j] != idx.Vectors[i][j] {
				t.Errorf("vector %d component %d changed", i, j)
			}
		}
	}
}

func TestStoreLoadMissingDirectory(t *testing.T) {
	store := NewIndexStore(filepath.Join(t.TempDir(), "never-created"))

	idx, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx != nil {
		t.Error("missing index directory should load as no index")
	}
}

func TestStoreLoadPartialArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	store := NewIndexStore(dir)
	if err := store.Save(sampleIndex(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Any missing artifact makes the whole set non-loadable.
	if err := os.Remove(filepath.Join(currentVersionDir(t, dir), "vectors.json")); err != nil {
		t.Fatalf("remove artifact: %v", err)
	}

	idx, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx != nil {
		t.Error("partial artifacts should load as no index")
	}
}

func TestStoreSaveReplacesExistingIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	store := NewIndexStore(dir)

	if err := store.Save(sampleIndex(t)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	firstVersion := store.Version()

	replacement, err := NewVectorIndex("test/term-v1", 2,
		[]models.IndexRecord{{ID: "faq.pdf:1:0", SourceID: "faq.pdf", OriginalText: "new corpus"}},
		[][]float32{{1, 1}})
	if err != nil {
		t.Fatalf("NewVectorIndex: %v", err)
	}
	if err := store.Save(replacement); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Size() != 1 || loaded.Records[0].ID != "faq.pdf:1:0" {
		t.Errorf("loaded index still holds the old records: %+v", loaded.Records)
	}
	if store.Version() == firstVersion {
		t.Error("version did not change after republish")
	}

	// Only the live version and its predecessor stay on disk.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read index dir: %v", err)
	}
	versions := 0
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "index-") {
			versions++
		}
	}
	if versions > 2 {
		t.Errorf("%d retired version directories left behind", versions)
	}
}

// A reader racing a republish must resolve a complete index, old or new,
// never "no index".
func TestStoreLoadDuringRepublish(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	store := NewIndexStore(dir)

	if err := store.Save(sampleIndex(t)); err != nil {
		t.Fatalf("initial Save: %v", err)
	}

	replacement, err := NewVectorIndex("test/term-v1", 2,
		[]models.IndexRecord{{ID: "faq.pdf:1:0", SourceID: "faq.pdf", OriginalText: "replacement"}},
		[][]float32{{1, 1}})
	if err != nil {
		t.Fatalf("NewVectorIndex: %v", err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			idx, err := store.Load()
			if err != nil {
				t.Errorf("Load during republish: %v", err)
				return
			}
			if idx == nil {
				t.Error("Load observed no index while one was published")
				return
			}
			if n := idx.Size(); n != 1 && n != 2 {
				t.Errorf("Load observed a partial index of %d records", n)
				return
			}
		}
	}()

	for i := 0; i < 20; i++ {
		which := sampleIndex(t)
		if i%2 == 1 {
			which = replacement
		}
		if err := store.Save(which); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}
	close(done)
	wg.Wait()
}

func TestStoreVersionWithoutIndex(t *testing.T) {
	store := NewIndexStore(filepath.Join(t.TempDir(), "index"))
	if v := store.Version(); v != 0 {
		t.Errorf("version = %d without an index, want 0", v)
	}
}
