package draft_test

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contactform/pkg/draft"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/storage"
)

func TestStore_SaveSkipsUntrackedAndEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := draft.NewStore(mem, model.ContactForm())

	snapshot, err := store.Save(ctx, model.Values{
		"firstName": "Ada",
		"email":     "",
		"privacy":   true,
		"company":   "Analytical Engines",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	want := draft.Snapshot{"firstName": "Ada"}
	if diff := cmp.Diff(want, snapshot); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	raw, ok, _ := mem.Get(ctx, draft.DefaultKey)
	if !ok || string(raw) != `{"firstName":"Ada"}` {
		t.Fatalf("unexpected stored payload %q (ok=%v)", raw, ok)
	}
}

func TestStore_EmptySnapshotIsNotWritten(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := draft.NewStore(mem, model.ContactForm())

	if _, err := store.Save(ctx, model.Values{"firstName": ""}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if mem.Len() != 0 {
		t.Fatalf("expected nothing written, got %d keys", mem.Len())
	}
}

func TestStore_RestoreWellFormedSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	if err := mem.Put(ctx, draft.DefaultKey, []byte(`{"firstName":"Ada","message":"Hello engine","stale":"x","phone":42}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	restored := draft.NewStore(mem, model.ContactForm()).Restore(ctx, model.Values{"lastName": "Lovelace"})
	want := model.Values{"firstName": "Ada", "lastName": "Lovelace", "message": "Hello engine"}
	if diff := cmp.Diff(want, restored); diff != "" {
		t.Fatalf("restored values mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_CorruptSnapshotLeavesFieldsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	if err := mem.Put(ctx, draft.DefaultKey, []byte(`{"firstName": "Ada"`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := draft.NewStore(mem, model.ContactForm())
	if _, ok := store.Load(ctx); ok {
		t.Fatalf("expected corrupt snapshot to be treated as absent")
	}
	restored := store.Restore(ctx, model.Values{})
	if len(restored) != 0 {
		t.Fatalf("expected no restored values, got %v", restored)
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := draft.NewStore(mem, model.ContactForm())
	if _, err := store.Save(ctx, model.Values{"email": "ada@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.Load(ctx); ok {
		t.Fatalf("expected snapshot removed")
	}
}

func newAutosaver(t *testing.T) (*draft.Autosaver, *draft.Store, *clock.Mock, chan draft.Snapshot) {
	t.Helper()
	mock := clock.NewMock()
	saved := make(chan draft.Snapshot, 4)
	store := draft.NewStore(storage.NewMemory(), model.ContactForm())
	saver := draft.NewAutosaver(store,
		draft.WithClock(mock),
		draft.WithSaveHook(func(s draft.Snapshot, err error) {
			if err != nil {
				t.Errorf("autosave: %v", err)
			}
			saved <- s
		}),
	)
	return saver, store, mock, saved
}

func waitSaved(t *testing.T, saved chan draft.Snapshot) draft.Snapshot {
	t.Helper()
	select {
	case s := <-saved:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for autosave")
		return nil
	}
}

func TestAutosaver_WritesAfterQuietPeriod(t *testing.T) {
	saver, store, mock, saved := newAutosaver(t)

	saver.Touch("firstName", "A")
	mock.Add(600 * time.Millisecond)
	saver.Touch("firstName", "Ada")
	mock.Add(600 * time.Millisecond)

	if _, ok := store.Load(context.Background()); ok {
		t.Fatalf("expected no write before the quiet period elapsed")
	}
	if !saver.Pending() {
		t.Fatalf("expected a pending write")
	}

	mock.Add(500 * time.Millisecond)
	got := waitSaved(t, saved)
	if diff := cmp.Diff(draft.Snapshot{"firstName": "Ada"}, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	stored, ok := store.Load(context.Background())
	if !ok || stored["firstName"] != "Ada" {
		t.Fatalf("expected stored snapshot, got %v", stored)
	}
}

func TestAutosaver_IgnoresUntrackedFields(t *testing.T) {
	saver, _, _, _ := newAutosaver(t)

	if saver.Touch("privacy", "on") {
		t.Fatalf("privacy is not tracked")
	}
	if saver.Pending() {
		t.Fatalf("untracked touch must not schedule a write")
	}
}

func TestAutosaver_ResetDropsPendingWrite(t *testing.T) {
	saver, store, mock, saved := newAutosaver(t)

	saver.Touch("email", "ada@example.com")
	saver.Reset()
	mock.Add(2 * time.Second)

	select {
	case s := <-saved:
		t.Fatalf("unexpected write after reset: %v", s)
	case <-time.After(50 * time.Millisecond):
	}
	if _, ok := store.Load(context.Background()); ok {
		t.Fatalf("expected no snapshot after reset")
	}
}

func TestAutosaver_Flush(t *testing.T) {
	saver, store, _, saved := newAutosaver(t)

	saver.Touch("message", "Draft message body")
	snapshot, err := saver.Flush(context.Background())
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	<-saved
	if snapshot["message"] != "Draft message body" || saver.Pending() {
		t.Fatalf("unexpected flush result %v pending=%v", snapshot, saver.Pending())
	}
	if _, ok := store.Load(context.Background()); !ok {
		t.Fatalf("expected flushed snapshot")
	}
}
