package testsupport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-entity-manager/pkg/testsupport"
	"github.com/goliatone/go-entity-manager/storage"
)

func TestLoadRecords(t *testing.T) {
	records := testsupport.LoadRecords(t, testsupport.FixturePath("records.json"))
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID("id"))
	assert.Equal(t, "alpha", records[0]["name"])
}

func TestLoadFixtureJSON(t *testing.T) {
	var payload struct {
		Name string `json:"name"`
	}
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath("single.json"), &payload)
	assert.Equal(t, "beta", payload.Name)
}

func TestFixturePath(t *testing.T) {
	assert.Equal(t, "testdata/records.json", testsupport.FixturePath("records.json"))
}

func TestSeedRecords(t *testing.T) {
	records := testsupport.SeedRecords(3, func(i int, rec storage.Record) {
		rec["n"] = i * 10
	})
	require.Len(t, records, 3)
	assert.Equal(t, "1", records[0].ID("id"))
	assert.Equal(t, "3", records[2].ID("id"))
	assert.Equal(t, 20, records[2]["n"])

	plain := testsupport.SeedRecords(1, nil)
	assert.Equal(t, storage.Record{"id": "1"}, plain[0])
}
