package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/ilsang/internal/constants"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://ilsang@localhost:5432/ilsang?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	for _, v := range []string{"", "   "} {
		if err := SetConnectionString(v); err == nil {
			t.Errorf("SetConnectionString(%q) should return an error", v)
		}
	}
}

func TestGetConnectionStringNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://ilsang@localhost/ilsang"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want %v", err, ErrNotFound)
	}
}

func TestKeyringUnavailable(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no dbus"))
	t.Cleanup(gokeyring.MockInit)

	if IsAvailable() {
		t.Error("IsAvailable() = true with failing keyring")
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrKeyringUnavailable)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("IsAvailable() = false with mock keyring")
	}
}

func TestResolve(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()
	t.Setenv(constants.EnvDBConnection, "")

	if got, src := Resolve(""); got != constants.DefaultConfigPath || src != SourceDefault {
		t.Errorf("Resolve(\"\") = %q, %s", got, src)
	}

	if err := SetConnectionString("postgres://ilsang@db/ilsang"); err != nil {
		t.Fatal(err)
	}
	if got, src := Resolve(constants.DefaultConfigPath); got != "postgres://ilsang@db/ilsang" || src != SourceKeyring {
		t.Errorf("Resolve(default) = %q, %s; want keyring value", got, src)
	}

	t.Setenv(constants.EnvDBConnection, "/tmp/env.db")
	if got, src := Resolve(""); got != "/tmp/env.db" || src != SourceEnv {
		t.Errorf("Resolve with env = %q, %s", got, src)
	}

	if got, src := Resolve("/tmp/flag.db"); got != "/tmp/flag.db" || src != SourceFlag {
		t.Errorf("Resolve(flag) = %q, %s", got, src)
	}
}
