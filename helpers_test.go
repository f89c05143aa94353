package kvtree

import (
	"encoding/hex"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
)

func setup(t testing.TB) *DB {
	t.Helper()

	dbFile := must(os.CreateTemp("", "kvtree_test_*.db"))
	t.Logf("DB: %s", dbFile.Name())
	dbFile.Close()

	db := must(Open(dbFile.Name(), Options{
		IsTesting: true,
	}))
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbFile.Name())
	})
	return db
}

func setupMem(t testing.TB) *DB {
	t.Helper()
	db := must(OpenMem(Options{IsTesting: true}))
	t.Cleanup(func() { db.Close() })
	return db
}

// eachBackend runs f against a Bolt file and against in-memory storage.
func eachBackend(t *testing.T, f func(t *testing.T, db *DB)) {
	t.Run("bolt", func(t *testing.T) {
		f(t, setup(t))
	})
	t.Run("mem", func(t *testing.T) {
		f(t, setupMem(t))
	})
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isempty[T any, S ~[]T](t testing.TB, a S) {
	if len(a) > 0 {
		t.Helper()
		t.Errorf("** got %v, wanted empty slice", a)
	}
}

func isErr(t testing.TB, err, target error) {
	if !errors.Is(err, target) {
		t.Helper()
		t.Errorf("** got error %v, wanted %v", err, target)
	}
}

func x(data string) []byte {
	data = strings.ReplaceAll(data, " ", "")
	return must(hex.DecodeString(data))
}

func assertPanics(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	fn()
}

func rawKeys(t testing.TB, db *DB, prefix string) []string {
	t.Helper()
	return must(db.RawKeys(prefix))
}
