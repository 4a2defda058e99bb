package zapadapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-entity-manager/logging"
	"github.com/goliatone/go-entity-manager/logging/zapadapter"
)

func TestAdapterForwardsToZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zapadapter.New(zap.New(core))

	log.Debug("debug msg", logging.Fields{"entity": "books"})
	log.Info("info msg", nil)
	log.Warn("warn msg", logging.Fields{"total": 101})
	log.Error("error msg", nil)

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "debug msg", entries[0].Message)
	assert.Equal(t, "books", entries[0].ContextMap()["entity"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.EqualValues(t, 101, entries[2].ContextMap()["total"])
}

func TestNewNilYieldsNop(t *testing.T) {
	log := zapadapter.New(nil)
	assert.IsType(t, logging.Nop{}, log)
	log.Info("discarded", nil)
}
