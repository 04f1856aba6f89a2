package filegroup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/EcMscS/Footnote/internal/domain"
	"github.com/EcMscS/Footnote/internal/ports"
)

var _ ports.SharedStorage = (*Group)(nil)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openGroup(t *testing.T) *Group {
	t.Helper()

	g, err := Open(t.TempDir(), "group.footnote", nil)
	require.NoError(t, err)

	return g
}

func TestOpen(t *testing.T) {
	base := t.TempDir()

	g, err := Open(base, "group.footnote", nil)
	require.NoError(t, err)

	assert.Equal(t, "group.footnote", g.Group())
	assert.Equal(t, filepath.Join(base, "group.footnote"), g.Dir())
	assert.DirExists(t, g.Dir())
	assert.NoError(t, g.Check(context.Background()))
}

func TestOpen_InvalidNames(t *testing.T) {
	base := t.TempDir()

	_, err := Open("", "group", nil)
	assert.Error(t, err)

	for _, name := range []string{"", " ", ".", "..", "a/b", `a\b`} {
		_, err := Open(base, name, nil)
		assert.True(t, domain.IsValidation(err), "name %q", name)
	}
}

func TestGroup_GetMissing(t *testing.T) {
	g := openGroup(t)

	_, err := g.Get(context.Background(), "WidgetContent")
	assert.True(t, domain.IsNotFound(err))
}

func TestGroup_SetReplaces(t *testing.T) {
	g := openGroup(t)
	ctx := context.Background()

	require.NoError(t, g.Set(ctx, "WidgetContent", []byte(`[{"a":1}]`)))
	require.NoError(t, g.Set(ctx, "WidgetContent", []byte(`[]`)))

	got, err := g.Get(ctx, "WidgetContent")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	info, err := os.Stat(filepath.Join(g.Dir(), "WidgetContent"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerms), info.Mode().Perm())

	entries, err := os.ReadDir(g.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestGroup_InvalidKey(t *testing.T) {
	g := openGroup(t)

	err := g.Set(context.Background(), "../escape", []byte("x"))
	assert.True(t, domain.IsValidation(err))
}

func TestGroup_CanceledContext(t *testing.T) {
	g := openGroup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, g.Set(ctx, "k", []byte("x")), context.Canceled)
}

func TestGroup_CheckMissingDir(t *testing.T) {
	g := openGroup(t)
	require.NoError(t, os.RemoveAll(g.Dir()))

	assert.True(t, domain.IsUnavailable(g.Check(context.Background())))
}

func TestGroup_Watch(t *testing.T) {
	g := openGroup(t)
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := g.Watch(ctx, "WidgetContent")
	require.NoError(t, err)

	require.NoError(t, g.Set(context.Background(), "other", []byte("ignored")))
	require.NoError(t, g.Set(context.Background(), "WidgetContent", []byte("v1")))

	select {
	case got := <-changes:
		assert.Equal(t, []byte("v1"), got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()

	// Drain until the watcher goroutine closes the channel.
	for range changes {
	}
}
