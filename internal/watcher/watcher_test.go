package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/price-comparator/internal/catalog"
	"github.com/kosarica/price-comparator/internal/ingestion"
)

const header = "product_id;product_name;product_category;brand;package_quantity;package_unit;price;currency\n"

type signal chan struct{}

func (s signal) Trigger() {
	select {
	case s <- struct{}{}:
	default:
	}
}

func TestWatcherReloadsAndSignals(t *testing.T) {
	dir := t.TempDir()
	cat := catalog.New(nil)
	notified := make(signal, 1)

	w := New(dir, ingestion.NewLoader(ingestion.EncodingAuto, 1, nil), cat, notified, 20*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lidl_2025-05-01.csv"),
		[]byte(header+"P1;lapte;lactate;Zuzu;1;l;9.90;RON\n"), 0o644))

	select {
	case <-notified:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not signal after reload")
	}

	latest, ok := cat.LatestPrice("P1")
	require.True(t, ok)
	assert.Equal(t, 9.9, latest.Price)
}

func TestReloadKeepsSnapshotOnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lidl_2025-05-01.csv"),
		[]byte(header+"P1;lapte;lactate;Zuzu;1;l;9.90;RON\n"), 0o644))

	cat := catalog.New(nil)
	notified := make(signal, 1)
	w := New(dir, ingestion.NewLoader(ingestion.EncodingAuto, 1, nil), cat, notified, 0, nil)

	require.NoError(t, w.Reload(context.Background()))
	<-notified

	require.NoError(t, os.WriteFile(filepath.Join(dir, "profi_2025-05-01.xlsx"), []byte("garbage"), 0o644))
	assert.Error(t, w.Reload(context.Background()))

	_, ok := cat.LatestPrice("P1")
	assert.True(t, ok, "previous snapshot must stay in place")
	assert.Len(t, notified, 0)
}

func TestStartFailsForMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), ingestion.NewLoader("", 1, nil), catalog.New(nil), nil, 0, nil)

	assert.Error(t, w.Start(context.Background()))
	w.Stop()
}

func TestReloadSkipsUnchangedSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lidl_2025-05-01.csv"),
		[]byte(header+"P1;lapte;lactate;Zuzu;1;l;9.90;RON\n"), 0o644))

	cat := catalog.New(nil)
	notified := make(signal, 1)
	w := New(dir, ingestion.NewLoader(ingestion.EncodingAuto, 1, nil), cat, notified, 0, nil)

	require.NoError(t, w.Reload(context.Background()))
	<-notified
	first := cat.Snapshot()

	require.NoError(t, w.Reload(context.Background()))
	assert.Same(t, first, cat.Snapshot())
	assert.Len(t, notified, 0)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "lidl_2025-05-02.csv"),
		[]byte(header+"P1;lapte;lactate;Zuzu;1;l;8.90;RON\n"), 0o644))
	require.NoError(t, w.Reload(context.Background()))
	assert.NotSame(t, first, cat.Snapshot())
	assert.Len(t, notified, 1)
}
