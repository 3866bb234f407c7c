package collect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreLayout(t *testing.T) {
	store := NewStore("/var/lib/labs", "NYC-DC1")

	if got := store.Root(); got != filepath.Join("/var/lib/labs", "nyc-dc1") {
		t.Errorf("root = %s, expected lowercased site under output dir", got)
	}
	if got := store.ConfigPath("leaf1"); got != filepath.Join("/var/lib/labs", "nyc-dc1", "nodes", "configs", "leaf1.cfg") {
		t.Errorf("config path = %s", got)
	}
	if got := store.IdentityPath("leaf1"); got != filepath.Join("/var/lib/labs", "nyc-dc1", "nodes", "sn", "leaf1.txt") {
		t.Errorf("identity path = %s", got)
	}
}

func TestStoreWriteAndRead(t *testing.T) {
	store := NewStore(t.TempDir(), "lab1")
	if err := store.Prepare(); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if err := store.WriteConfig("leaf1", "hostname leaf1\ninterface Ethernet1"); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}
	data, err := os.ReadFile(store.ConfigPath("leaf1"))
	if err != nil {
		t.Fatalf("failed to read config artifact: %v", err)
	}
	if string(data) != "hostname leaf1\ninterface Ethernet1\n" {
		t.Errorf("config artifact = %q, expected trailing newline added", string(data))
	}

	id := Identity{Serial: "SSJ17010987", SystemMAC: "00:1c:73:aa:bb:01"}
	if err := store.WriteIdentity("leaf1", id); err != nil {
		t.Fatalf("WriteIdentity() error = %v", err)
	}
	data, err = os.ReadFile(store.IdentityPath("leaf1"))
	if err != nil {
		t.Fatalf("failed to read identity artifact: %v", err)
	}
	want := "SERIALNUMBER=SSJ17010987\nSYSTEMMACADDR=00:1c:73:aa:bb:01\n"
	if string(data) != want {
		t.Errorf("identity artifact = %q, expected %q", string(data), want)
	}

	got, err := store.ReadIdentity("leaf1")
	if err != nil {
		t.Fatalf("ReadIdentity() error = %v", err)
	}
	if got != id {
		t.Errorf("ReadIdentity() = %+v, expected %+v", got, id)
	}
}

func TestStoreRelaxPermissions(t *testing.T) {
	store := NewStore(t.TempDir(), "lab1")
	if err := store.Prepare(); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if err := store.WriteConfig("leaf1", "hostname leaf1\n"); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	if err := store.RelaxPermissions(); err != nil {
		t.Fatalf("RelaxPermissions() error = %v", err)
	}

	info, err := os.Stat(store.ConfigPath("leaf1"))
	if err != nil {
		t.Fatalf("failed to stat config artifact: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o666 {
		t.Errorf("file permissions = %o, expected 666", perm)
	}
	info, err = os.Stat(store.ConfigsDir())
	if err != nil {
		t.Fatalf("failed to stat configs dir: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o777 {
		t.Errorf("dir permissions = %o, expected 777", perm)
	}
}

func TestStoreRemove(t *testing.T) {
	store := NewStore(t.TempDir(), "lab1")
	if err := store.Prepare(); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(store.Root()); !os.IsNotExist(err) {
		t.Errorf("expected lab directory to be gone, stat err = %v", err)
	}
}
