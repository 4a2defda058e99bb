// Package testsupport holds shared helpers for loading test fixtures
// into record slices.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/goliatone/go-entity-manager/storage"
)

// LoadFixture loads raw test data from a fixture file. The path is
// relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and
// unmarshals it into dest.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadRecords loads a fixture file holding an array of records.
func LoadRecords(t *testing.T, path string) []storage.Record {
	t.Helper()

	var records []storage.Record
	LoadFixtureJSON(t, path, &records)
	return records
}

// FixturePath constructs a path to a fixture file relative to the
// testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// SeedRecords builds n records with sequential ids ("1".."n"), calling
// fill for each index. Useful for threshold and pagination tests.
func SeedRecords(n int, fill func(i int, rec storage.Record)) []storage.Record {
	out := make([]storage.Record, n)
	for i := 0; i < n; i++ {
		rec := storage.Record{"id": strconv.Itoa(i + 1)}
		if fill != nil {
			fill(i, rec)
		}
		out[i] = rec
	}
	return out
}
