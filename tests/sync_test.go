package tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamarel/folio"
	"github.com/tamarel/folio/pkg/core"
	"github.com/tamarel/folio/pkg/store"
	"github.com/tamarel/folio/pkg/syncer"
)

// newDevice builds a service and syncer sharing one store, pointed at the
// given remote folder. The returned store gives the test direct access to
// the device's sync key.
func newDevice(t *testing.T, remote string) (*folio.Service, *folio.Syncer, *store.Store) {
	t.Helper()
	ctx := context.Background()

	st := store.New(store.Config{Dir: t.TempDir()})
	require.NoError(t, st.Initialize(ctx))

	svc, err := folio.New("", folio.WithStorage(st))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	drive, err := syncer.NewFolderDrive(remote)
	require.NoError(t, err)
	sy, err := folio.NewSyncer("", folio.WithStorage(st), folio.WithDrive(drive))
	require.NoError(t, err)
	return svc, sy, st
}

func TestSync_TwoDevices(t *testing.T) {
	remote := t.TempDir()
	ctx := context.Background()

	deviceA, syncA, _ := newDevice(t, remote)
	deviceB, syncB, storeB := newDevice(t, remote)

	// Pair device B by copying A's sync key, as a user pairing devices would.
	key, err := syncA.EnsureKey(ctx)
	require.NoError(t, err)
	require.NoError(t, storeB.SaveSyncKey(ctx, key))

	doc, err := deviceA.AddArticle(ctx, core.Article{Title: "Shared Paper"})
	require.NoError(t, err)
	require.True(t, syncA.Upload(ctx, doc))
	assert.Equal(t, syncer.StatusSynced, syncA.Status())

	pulled := syncB.Pull(ctx)
	require.NotNil(t, pulled)
	require.Len(t, pulled.Articles, 1)
	require.NoError(t, deviceB.Save(ctx, pulled))
	assert.Equal(t, "Shared Paper", deviceB.Load(ctx).Articles[0].Title)

	// The remote object on disk is an encrypted envelope, not plaintext.
	raw, err := os.ReadFile(filepath.Join(remote, syncer.DefaultRemoteName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Shared Paper")
	assert.Contains(t, string(raw), `"encrypted":true`)
}

func TestSync_WrongKeyCannotRead(t *testing.T) {
	remote := t.TempDir()
	ctx := context.Background()

	deviceA, syncA, _ := newDevice(t, remote)
	_, syncB, _ := newDevice(t, remote)

	_, err := syncA.EnsureKey(ctx)
	require.NoError(t, err)
	_, err = syncB.EnsureKey(ctx) // different key, never paired
	require.NoError(t, err)

	doc, err := deviceA.AddArticle(ctx, core.Article{Title: "Private"})
	require.NoError(t, err)
	require.True(t, syncA.Upload(ctx, doc))

	assert.Nil(t, syncB.Pull(ctx), "an unpaired device must not read the remote")
	assert.Equal(t, syncer.StatusError, syncB.Status())
}

func TestSync_LastWriteWins(t *testing.T) {
	remote := t.TempDir()
	ctx := context.Background()

	_, sy, _ := newDevice(t, remote)
	_, err := sy.EnsureKey(ctx)
	require.NoError(t, err)

	first := core.DefaultDocument()
	first.Articles = append(first.Articles, core.Article{ID: "a", Title: "first push"})
	second := core.DefaultDocument()
	second.Articles = append(second.Articles, core.Article{ID: "b", Title: "second push"})

	require.True(t, sy.Upload(ctx, first))
	require.True(t, sy.Upload(ctx, second))

	pulled := sy.Pull(ctx)
	require.NotNil(t, pulled)
	require.Len(t, pulled.Articles, 1)
	assert.Equal(t, "second push", pulled.Articles[0].Title, "no merge: the last push replaces the remote")
}

func TestSync_NoKeyNeverUploads(t *testing.T) {
	remote := t.TempDir()
	ctx := context.Background()

	_, sy, _ := newDevice(t, remote)
	assert.False(t, sy.Upload(ctx, core.DefaultDocument()))

	entries, err := os.ReadDir(remote)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may reach the remote without a key")
}
