package cache

import (
	"testing"

	"github.com/vlogdeck/vlogdeck/internal/log"
)

type testVlog struct {
	ID    string `json:"id"`
	Likes int    `json:"likes"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("", "", log.NullLogger())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestPutGetRaw(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.GetRaw("missing"); ok {
		t.Error("expected miss for absent key")
	}

	s.PutRaw(VlogKey("v1"), []byte(`{"id":"v1","likes":1}`))
	data, ok := s.GetRaw(VlogKey("v1"))
	if !ok {
		t.Fatal("expected hit after PutRaw")
	}
	if string(data) != `{"id":"v1","likes":1}` {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestInvalidateKeepsValue(t *testing.T) {
	s := newTestStore(t)
	s.PutRaw(VlogKey("v1"), []byte(`{"id":"v1"}`))

	s.Invalidate(VlogKey("v1"))

	if !s.IsStale(VlogKey("v1")) {
		t.Error("expected entry to be stale after Invalidate")
	}
	if _, ok := s.GetRaw(VlogKey("v1")); !ok {
		t.Error("invalidated entry should still be readable")
	}

	// A fresh write clears staleness.
	s.PutRaw(VlogKey("v1"), []byte(`{"id":"v1","likes":2}`))
	if s.IsStale(VlogKey("v1")) {
		t.Error("fresh write should clear staleness")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	s := newTestStore(t)
	s.PutRaw(FeedKey(1), []byte(`{}`))
	s.PutRaw(FeedKey(2), []byte(`{}`))
	s.PutRaw(VlogKey("v1"), []byte(`{}`))

	s.InvalidatePrefix(PrefixFeed)

	if !s.IsStale(FeedKey(1)) || !s.IsStale(FeedKey(2)) {
		t.Error("expected all feed pages stale")
	}
	if s.IsStale(VlogKey("v1")) {
		t.Error("vlog entry should be unaffected")
	}
}

func TestKeysPrefix(t *testing.T) {
	s := newTestStore(t)
	s.PutRaw(FeedKey(1), []byte(`{}`))
	s.PutRaw(FeedKey(2), []byte(`{}`))
	s.PutRaw(KeySession, []byte(`{}`))

	keys := s.Keys(PrefixFeed)
	if len(keys) != 2 {
		t.Errorf("expected 2 feed keys, got %d: %v", len(keys), keys)
	}
}

func TestSnapshotRestoreIsIdentity(t *testing.T) {
	s := newTestStore(t)
	original := `{"success":true,"data":{"id":"v1","likes":5}}`
	s.PutRaw(VlogKey("v1"), []byte(original))

	snap := s.SnapshotKeys(VlogKey("v1"), VlogKey("absent"))

	s.PutRaw(VlogKey("v1"), []byte(`{"id":"v1","likes":6}`))
	s.PutRaw(VlogKey("absent"), []byte(`{"id":"absent"}`))

	s.Restore(snap)

	data, ok := s.GetRaw(VlogKey("v1"))
	if !ok {
		t.Fatal("expected restored entry")
	}
	if string(data) != original {
		t.Errorf("restore must be byte-identical: got %s", data)
	}
	if _, ok := s.GetRaw(VlogKey("absent")); ok {
		t.Error("keys absent at snapshot time must be deleted on restore")
	}
}

func TestFetchGenerations(t *testing.T) {
	s := newTestStore(t)

	gen := s.BeginFetch(FeedKey(1))
	if !s.CompleteFetch(FeedKey(1), gen, []byte(`{"page":1}`)) {
		t.Error("uncancelled fetch should land")
	}

	gen = s.BeginFetch(FeedKey(1))
	s.CancelInFlight(FeedKey(1))
	if s.CompleteFetch(FeedKey(1), gen, []byte(`{"page":99}`)) {
		t.Error("cancelled fetch must be discarded")
	}

	data, _ := s.GetRaw(FeedKey(1))
	if string(data) != `{"page":1}` {
		t.Errorf("cancelled fetch overwrote the entry: %s", data)
	}
}

func TestReadWritePreservesEnvelope(t *testing.T) {
	s := newTestStore(t)
	s.PutRaw(VlogKey("v1"), []byte(`{"success":true,"data":{"id":"v1","likes":1}}`))

	v, ok := Read[testVlog](s, VlogKey("v1"))
	if !ok {
		t.Fatal("expected typed read to succeed")
	}
	if v.Likes != 1 {
		t.Errorf("expected likes 1, got %d", v.Likes)
	}

	v.Likes = 2
	if err := Write(s, VlogKey("v1"), v); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	raw, _ := s.GetRaw(VlogKey("v1"))
	inner, _, err := Unwrap(raw)
	if err != nil {
		t.Fatalf("written entry lost its envelope: %v (%s)", err, raw)
	}
	if string(raw) == string(inner) {
		t.Errorf("enveloped entry was flattened: %s", raw)
	}

	v2, _ := Read[testVlog](s, VlogKey("v1"))
	if v2.Likes != 2 {
		t.Errorf("expected likes 2 after write, got %d", v2.Likes)
	}
}

func TestMutateAbsentIsNoOp(t *testing.T) {
	s := newTestStore(t)

	ok, err := Mutate(s, VlogKey("missing"), func(v testVlog) testVlog {
		v.Likes++
		return v
	})
	if err != nil {
		t.Fatalf("Mutate of absent key should not error: %v", err)
	}
	if ok {
		t.Error("Mutate of absent key should report no update")
	}
	if _, found := s.GetRaw(VlogKey("missing")); found {
		t.Error("Mutate must not create absent entries")
	}
}

func TestMutateMalformedReturnsError(t *testing.T) {
	s := newTestStore(t)
	s.PutRaw(VlogKey("v1"), []byte(`"not an object we can decode"`))

	if _, err := Mutate(s, VlogKey("v1"), func(v testVlog) testVlog { return v }); err == nil {
		t.Error("expected error for malformed entry")
	}
}

func TestMutateMatching(t *testing.T) {
	s := newTestStore(t)
	s.PutRaw(VlogKey("v1"), []byte(`{"id":"v1","likes":0}`))
	s.PutRaw(VlogKey("v2"), []byte(`{"success":true,"data":{"id":"v2","likes":0}}`))
	s.PutRaw(KeySession, []byte(`{"id":"u1"}`))

	n, err := MutateMatching(s, PrefixVlog, func(v testVlog) testVlog {
		v.Likes++
		return v
	})
	if err != nil {
		t.Fatalf("MutateMatching failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 entries updated, got %d", n)
	}

	for _, id := range []string{"v1", "v2"} {
		v, ok := Read[testVlog](s, VlogKey(id))
		if !ok || v.Likes != 1 {
			t.Errorf("vlog %s not updated: %+v", id, v)
		}
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	s.PutRaw(KeySession, []byte(`{"id":"u1"}`))
	s.PutRaw(VlogKey("v1"), []byte(`{"id":"v1"}`))

	s.Clear()

	if _, ok := s.GetRaw(KeySession); ok {
		t.Error("expected empty store after Clear")
	}
	if got := len(s.Keys("")); got != 0 {
		t.Errorf("expected no keys after Clear, got %d", got)
	}
}

func TestBoltRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, "https://vlogs.example.com", log.NullLogger())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	s.PutRaw(VlogKey("v1"), []byte(`{"id":"v1","likes":9}`))
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	s2, err := NewStore(dir, "https://vlogs.example.com", log.NullLogger())
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s2.Close()

	data, ok := s2.GetRaw(VlogKey("v1"))
	if !ok {
		t.Fatal("expected entry to survive restart")
	}
	if string(data) != `{"id":"v1","likes":9}` {
		t.Errorf("unexpected data after restart: %s", data)
	}
	if !s2.IsStale(VlogKey("v1")) {
		t.Error("disk-promoted entries must be marked stale")
	}
}
