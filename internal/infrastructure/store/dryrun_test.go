package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDryRunSink_LogsOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewDryRunSink(zap.New(core))

	id, err := sink.Insert(context.Background(), juiceRecord())
	require.NoError(t, err)
	assert.Equal(t, DryRunID, id)

	entries := logs.FilterMessage("store.insert.skipped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Mango Fruit Drink", entries[0].ContextMap()["product"])
}
