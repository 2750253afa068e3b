package syncer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tamarel/folio/pkg/core"
	"github.com/tamarel/folio/pkg/syncer"
)

// memoryDrive implements syncer.Drive in memory and counts calls so tests
// can assert when the transport is never touched.
type memoryDrive struct {
	objects map[string][]byte
	calls   int
	failAll bool
}

func newMemoryDrive() *memoryDrive {
	return &memoryDrive{objects: map[string][]byte{}}
}

func (d *memoryDrive) FindByName(ctx context.Context, name string) (string, error) {
	d.calls++
	if d.failAll {
		return "", errors.New("drive unavailable")
	}
	if _, ok := d.objects[name]; !ok {
		return "", nil
	}
	return name, nil
}

func (d *memoryDrive) Get(ctx context.Context, id string) ([]byte, error) {
	d.calls++
	if d.failAll {
		return nil, errors.New("drive unavailable")
	}
	data, ok := d.objects[id]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func (d *memoryDrive) Create(ctx context.Context, name string, data []byte) (string, error) {
	d.calls++
	if d.failAll {
		return "", errors.New("drive unavailable")
	}
	d.objects[name] = data
	return name, nil
}

func (d *memoryDrive) Update(ctx context.Context, id string, data []byte) error {
	d.calls++
	if d.failAll {
		return errors.New("drive unavailable")
	}
	d.objects[id] = data
	return nil
}

// memoryKeys implements core.KeyStore in memory.
type memoryKeys struct {
	key string
}

func (k *memoryKeys) LoadSyncKey(ctx context.Context) (string, error) { return k.key, nil }
func (k *memoryKeys) SaveSyncKey(ctx context.Context, key string) error {
	k.key = key
	return nil
}

func TestSyncer_EnsureKey(t *testing.T) {
	keys := &memoryKeys{}
	sy := syncer.New(syncer.Config{Drive: newMemoryDrive(), Keys: keys})
	ctx := context.TODO()

	key, err := sy.EnsureKey(ctx)
	if err != nil {
		t.Fatalf("EnsureKey failed: %v", err)
	}
	if key == "" {
		t.Fatal("no key generated")
	}
	if keys.key != key {
		t.Error("key was not persisted")
	}

	// A second call returns the same key.
	again, err := sy.EnsureKey(ctx)
	if err != nil {
		t.Fatalf("EnsureKey failed: %v", err)
	}
	if again != key {
		t.Errorf("key changed: %s != %s", again, key)
	}
}

func TestSyncer_UploadWithoutKey(t *testing.T) {
	drive := newMemoryDrive()
	sy := syncer.New(syncer.Config{Drive: drive, Keys: &memoryKeys{}})

	if sy.Upload(context.TODO(), core.DefaultDocument()) {
		t.Error("upload succeeded without a key")
	}
	// The decision happens before the transport is touched.
	if drive.calls != 0 {
		t.Errorf("drive was called %d times", drive.calls)
	}
	if sy.Status() != syncer.StatusError {
		t.Errorf("status = %s", sy.Status())
	}
}

func TestSyncer_UploadPullRoundTrip(t *testing.T) {
	drive := newMemoryDrive()
	keys := &memoryKeys{}
	sy := syncer.New(syncer.Config{Drive: drive, Keys: keys})
	ctx := context.TODO()

	if _, err := sy.EnsureKey(ctx); err != nil {
		t.Fatalf("EnsureKey failed: %v", err)
	}

	doc := core.DefaultDocument()
	doc.Articles = append(doc.Articles, core.Article{ID: "a1", Title: "AlphaGo"})

	if !sy.Upload(ctx, doc) {
		t.Fatal("upload failed")
	}
	if sy.Status() != syncer.StatusSynced {
		t.Errorf("status after upload = %s", sy.Status())
	}

	// The stored object is an encrypted envelope, never plaintext.
	var env syncer.Envelope
	if err := json.Unmarshal(drive.objects[syncer.DefaultRemoteName], &env); err != nil {
		t.Fatalf("remote object is not an envelope: %v", err)
	}
	if !env.Encrypted || env.Ciphertext == "" {
		t.Errorf("envelope = %+v", env)
	}

	out := sy.Pull(ctx)
	if out == nil {
		t.Fatal("pull returned nil")
	}
	if len(out.Articles) != 1 || out.Articles[0].Title != "AlphaGo" {
		t.Errorf("pulled document lost data: %+v", out.Articles)
	}
}

func TestSyncer_UploadReplacesRemote(t *testing.T) {
	drive := newMemoryDrive()
	sy := syncer.New(syncer.Config{Drive: drive, Keys: &memoryKeys{}})
	ctx := context.TODO()
	if _, err := sy.EnsureKey(ctx); err != nil {
		t.Fatal(err)
	}

	first := core.DefaultDocument()
	first.Articles = append(first.Articles, core.Article{ID: "old", Title: "old"})
	second := core.DefaultDocument()
	second.Articles = append(second.Articles, core.Article{ID: "new", Title: "new"})

	if !sy.Upload(ctx, first) || !sy.Upload(ctx, second) {
		t.Fatal("upload failed")
	}

	// Last write wins; no merge with the prior remote content.
	out := sy.Pull(ctx)
	if out == nil || len(out.Articles) != 1 || out.Articles[0].ID != "new" {
		t.Errorf("remote was not replaced: %+v", out)
	}
}

func TestSyncer_PullAbsentRemote(t *testing.T) {
	sy := syncer.New(syncer.Config{Drive: newMemoryDrive(), Keys: &memoryKeys{}})
	if doc := sy.Pull(context.TODO()); doc != nil {
		t.Errorf("expected nil for absent remote, got %+v", doc)
	}
}

func TestSyncer_DownloadPlaintextFallback(t *testing.T) {
	drive := newMemoryDrive()
	sy := syncer.New(syncer.Config{Drive: drive, Keys: &memoryKeys{}})
	ctx := context.TODO()

	// A legacy object without the encrypted marker parses verbatim.
	legacy := core.DefaultDocument()
	legacy.Articles = append(legacy.Articles, core.Article{ID: "p1", Title: "plain"})
	raw, _ := json.Marshal(legacy)
	drive.objects[syncer.DefaultRemoteName] = raw

	out := sy.Pull(ctx)
	if out == nil || len(out.Articles) != 1 {
		t.Fatalf("plaintext fallback failed: %+v", out)
	}
}

func TestSyncer_DownloadRepairsDocument(t *testing.T) {
	drive := newMemoryDrive()
	sy := syncer.New(syncer.Config{Drive: drive, Keys: &memoryKeys{}})

	// A foreign document missing collections is repaired on download.
	drive.objects[syncer.DefaultRemoteName] = []byte(`{"schemaVersion":"2.4.0"}`)

	out := sy.Pull(context.TODO())
	if out == nil {
		t.Fatal("pull returned nil")
	}
	if out.Articles == nil {
		t.Error("collections were not backfilled")
	}
	if _, ok := out.Shelf(core.QueueShelfID); !ok {
		t.Error("queue shelf missing")
	}
}

func TestSyncer_DownloadWrongKey(t *testing.T) {
	drive := newMemoryDrive()
	uploader := syncer.New(syncer.Config{Drive: drive, Keys: &memoryKeys{}})
	ctx := context.TODO()
	if _, err := uploader.EnsureKey(ctx); err != nil {
		t.Fatal(err)
	}
	if !uploader.Upload(ctx, core.DefaultDocument()) {
		t.Fatal("upload failed")
	}

	// A device with a different key cannot read the remote; no error escapes.
	other := syncer.New(syncer.Config{Drive: drive, Keys: &memoryKeys{}})
	if _, err := other.EnsureKey(ctx); err != nil {
		t.Fatal(err)
	}
	if doc := other.Pull(ctx); doc != nil {
		t.Error("pull succeeded with the wrong key")
	}
	if other.Status() != syncer.StatusError {
		t.Errorf("status = %s", other.Status())
	}
}

func TestSyncer_TransportFailure(t *testing.T) {
	drive := newMemoryDrive()
	drive.failAll = true
	sy := syncer.New(syncer.Config{Drive: drive, Keys: &memoryKeys{key: "deadbeefdeadbeefdeadbeefdeadbeef"}})
	ctx := context.TODO()

	if sy.Upload(ctx, core.DefaultDocument()) {
		t.Error("upload succeeded against a failing drive")
	}
	if doc := sy.Pull(ctx); doc != nil {
		t.Error("pull succeeded against a failing drive")
	}
	if sy.Status() != syncer.StatusError {
		t.Errorf("status = %s", sy.Status())
	}
}

func TestSyncer_StatusTransitions(t *testing.T) {
	sy := syncer.New(syncer.Config{Drive: newMemoryDrive(), Keys: &memoryKeys{}})
	if sy.Status() != syncer.StatusDisconnected {
		t.Errorf("initial status = %s", sy.Status())
	}
}

func TestFolderDrive(t *testing.T) {
	drive, err := syncer.NewFolderDrive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFolderDrive failed: %v", err)
	}
	ctx := context.TODO()

	id, err := drive.FindByName(ctx, "missing.json")
	if err != nil || id != "" {
		t.Errorf("FindByName(absent) = %q, %v", id, err)
	}

	id, err = drive.Create(ctx, "obj.json", []byte("v1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := drive.Update(ctx, id, []byte("v2")); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	data, err := drive.Get(ctx, id)
	if err != nil || string(data) != "v2" {
		t.Errorf("Get = %q, %v", data, err)
	}
}
