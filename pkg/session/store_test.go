package session

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestStore_SetUserPersists(t *testing.T) {
	store, storage := newTestStore()

	store.SetUser(&Identity{ID: "u1", Role: "patient", Email: "p@h.test"})

	data, ok, err := storage.Get(StorageKey)
	if err != nil || !ok {
		t.Fatalf("expected persisted entry, ok=%v err=%v", ok, err)
	}
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("persisted entry not JSON: %v", err)
	}
	if _, ok := entry["user"]; !ok {
		t.Errorf("new writes use the wrapped shape, got %s", data)
	}
}

func TestStore_SetUserNilClears(t *testing.T) {
	store, storage := newTestStore()
	store.SetUser(&Identity{ID: "u1", Role: "patient"})
	store.SetUser(nil)

	if store.User() != nil {
		t.Error("expected nil user")
	}
	if _, ok, _ := storage.Get(StorageKey); ok {
		t.Error("expected persisted entry cleared")
	}
}

func TestDecodeStored_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantID  string
		wantErr bool
	}{
		{"wrapped", `{"user":{"id":"a","role":"staff"}}`, "a", false},
		{"bare", `{"id":"b","role":"patient"}`, "b", false},
		{"wrapped without role", `{"user":{"id":"c"}}`, "", true},
		{"bare without role", `{"id":"d"}`, "", true},
		{"empty object", `{}`, "", true},
		{"not json", `nope`, "", true},
		{"null user", `{"user":null}`, "", true},
	}

	for _, tt := range tests {
		id, err := DecodeStored([]byte(tt.data))
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if id.ID != tt.wantID {
			t.Errorf("%s: id = %q, want %q", tt.name, id.ID, tt.wantID)
		}
	}
}

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client-store.json")
	fs := NewFileStorage(path)

	if _, ok, err := fs.Get(StorageKey); ok || err != nil {
		t.Fatalf("fresh storage: ok=%v err=%v", ok, err)
	}

	if err := fs.Set(StorageKey, []byte(`{"user":{"id":"u1","role":"staff"}}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A second handle over the same file sees the entry (reload survival).
	fs2 := NewFileStorage(path)
	data, ok, err := fs2.Get(StorageKey)
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	id, err := DecodeStored(data)
	if err != nil || id.ID != "u1" {
		t.Errorf("decode after reopen: %+v, %v", id, err)
	}

	if err := fs2.Delete(StorageKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := fs2.Get(StorageKey); ok {
		t.Error("expected entry gone after delete")
	}
}

func TestStore_RestoreOnce(t *testing.T) {
	storage := NewMemStorage()
	storage.Set(StorageKey, []byte(`{"user":{"id":"u9","role":"partner"}}`))
	store := NewStore(storage, zerolog.Nop())

	id, err := store.restore()
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if id.Role != "partner" {
		t.Errorf("role = %q", id.Role)
	}
	if u := store.User(); u == nil || u.ID != "u9" {
		t.Errorf("store user = %+v", u)
	}
}
