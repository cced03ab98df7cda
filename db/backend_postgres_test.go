package db

import (
	"errors"
	"os"
	"reflect"
	"testing"
)

// postgresTestConnEnv names the variable holding the connection string the
// postgres tests run against.  They are skipped when it is unset.
const postgresTestConnEnv = "CITATION_TEST_POSTGRES"

func postgresTestBackend(t *testing.T) *PostgresBackend {
	connString := os.Getenv(postgresTestConnEnv)
	if connString == "" {
		t.Skipf("%v not set", postgresTestConnEnv)
	}
	be := NewPostgresBackend(NewPostgresConfig(connString))
	if err := be.Open(); err != nil {
		t.Fatal(err)
	}
	if err := be.Drop("pg-test", TableRuns, TablePicks, TableMetadata); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := be.Drop("pg-test"); err != nil {
			t.Error(err)
		}
		if err := be.Close(); err != nil {
			t.Error(err)
		}
	})
	return be
}

func TestPostgresBackend(t *testing.T) {
	be := postgresTestBackend(t)

	if _, err := be.Get("pg-test", []byte("does-not-exist")); err != ErrKeyNotFound {
		t.Errorf("Expected err=%s for missing table but actual=%s", ErrKeyNotFound, err)
	}

	for _, k := range []string{"b/1", "a/2", "a/1", "ab/1"} {
		if err := be.Put("pg-test", []byte(k), []byte("v"+k)); err != nil {
			t.Fatal(err)
		}
	}
	if err := be.Put("pg-test", []byte("a/1"), []byte("updated")); err != nil {
		t.Fatal(err)
	}

	v, err := be.Get("pg-test", []byte("a/1"))
	if err != nil {
		t.Fatal(err)
	}
	if expected, actual := "updated", string(v); actual != expected {
		t.Errorf("Expected value=%v but actual=%v", expected, actual)
	}
	if _, err := be.Get("pg-test", []byte("does-not-exist")); err != ErrKeyNotFound {
		t.Errorf("Expected err=%s for missing key but actual=%s", ErrKeyNotFound, err)
	}

	keys := []string{}
	if err := be.EachRowPrefix("pg-test", []byte("a/"), func(k []byte, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	}); err != nil {
		t.Fatal(err)
	}
	if expected, actual := []string{"a/1", "a/2"}, keys; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected keys=%v but actual=%v", expected, actual)
	}

	keys = keys[:0]
	if err := be.EachRowWithBreak("pg-test", func(k []byte, _ []byte) bool {
		keys = append(keys, string(k))
		return len(keys) < 3
	}); err != nil {
		t.Fatal(err)
	}
	if expected, actual := []string{"a/1", "a/2", "ab/1"}, keys; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected keys=%v but actual=%v", expected, actual)
	}

	if err := be.Delete("pg-test", []byte("a/1"), []byte("b/1")); err != nil {
		t.Fatal(err)
	}
	if n, _ := be.Len("pg-test"); n != 2 {
		t.Errorf("Expected len=2 after delete but actual=%v", n)
	}

	rollback := errors.New("rollback")
	if err := be.WithTransaction(TXOptions{}, func(tx Transaction) error {
		if err := tx.Put("pg-test", []byte("c/1"), []byte("x")); err != nil {
			return err
		}
		return rollback
	}); err != rollback {
		t.Errorf("Expected err=%s but actual=%s", rollback, err)
	}
	if _, err := be.Get("pg-test", []byte("c/1")); err != ErrKeyNotFound {
		t.Errorf("Expected rolled back put to be absent but err=%v", err)
	}

	if err := be.Drop("pg-test", "never-created"); err != nil {
		t.Fatal(err)
	}
	if n, _ := be.Len("pg-test"); n != 0 {
		t.Errorf("Expected len=0 after drop but actual=%v", n)
	}
}

func TestPostgresClientRuns(t *testing.T) {
	be := postgresTestBackend(t)
	client := newClient(be)

	testClientResume(t, client)
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		driver string
		typ    Type
		err    error
	}{
		{driver: "", typ: Bolt},
		{driver: "bolt", typ: Bolt},
		{driver: "Postgres", typ: Postgres},
		{driver: "pg", typ: Postgres},
		{driver: "rocks", err: ErrUnsupportedDriver},
	}
	for i, testCase := range testCases {
		cfg, err := NewConfig(testCase.driver, "x")
		if testCase.err != nil {
			if !errors.Is(err, testCase.err) {
				t.Errorf("[i=%v] Expected err=%s but actual=%v", i, testCase.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("[i=%v] Unexpected error: %s", i, err)
			continue
		}
		if expected, actual := testCase.typ, cfg.Type(); actual != expected {
			t.Errorf("[i=%v] Expected type=%v but actual=%v", i, expected, actual)
		}
	}

	if expected, actual := DefaultPostgresConnString, NewPostgresConfig("").ConnString; actual != expected {
		t.Errorf("Expected default conn string=%v but actual=%v", expected, actual)
	}
}
