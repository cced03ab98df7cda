package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

var (
	DefaultPostgresConnString = "dbname=citation sslmode=disable"
)

type PostgresConfig struct {
	ConnString string
}

func NewPostgresConfig(connString string) *PostgresConfig {
	if len(connString) == 0 {
		connString = DefaultPostgresConnString
	}
	cfg := &PostgresConfig{
		ConnString: connString,
	}
	return cfg
}

func (cfg PostgresConfig) Type() Type {
	return Postgres
}

// PostgresBackend keeps every table as a two column bytea relation.  Keys are
// compared bytewise by postgres, so prefix scans come back in the same order
// bolt's cursor yields them.
type PostgresBackend struct {
	config *PostgresConfig
	db     *sql.DB
	mu     sync.Mutex
}

func NewPostgresBackend(config *PostgresConfig) *PostgresBackend {
	be := &PostgresBackend{
		config: config,
	}
	return be
}

func (be *PostgresBackend) Open() error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", be.config.ConnString)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	be.db = db

	if err := be.initDB(); err != nil {
		be.db.Close()
		be.db = nil
		return err
	}

	return nil
}

func (be *PostgresBackend) Close() error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.db == nil {
		return nil
	}

	if err := be.db.Close(); err != nil {
		return err
	}

	be.db = nil

	return nil
}

func (be *PostgresBackend) initDB() error {
	return be.WithTransaction(TXOptions{}, func(tx Transaction) error {
		for _, name := range tables {
			if err := ensureTable(tx.(*pgTX).tx, name); err != nil {
				return fmt.Errorf("initDB: %s", err)
			}
		}
		return nil
	})
}

func (be *PostgresBackend) Get(table string, key []byte) ([]byte, error) {
	return pgGet(be.db, table, key)
}

func (be *PostgresBackend) Put(table string, key []byte, value []byte) error {
	return be.WithTransaction(TXOptions{}, func(tx Transaction) error {
		return tx.Put(table, key, value)
	})
}

func (be *PostgresBackend) Delete(table string, keys ...[]byte) error {
	return be.WithTransaction(TXOptions{}, func(tx Transaction) error {
		return tx.Delete(table, keys...)
	})
}

func (be *PostgresBackend) Drop(tables ...string) error {
	return be.WithTransaction(TXOptions{}, func(tx Transaction) error {
		for _, table := range tables {
			if _, err := tx.(*pgTX).tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", pq.QuoteIdentifier(table))); err != nil {
				return fmt.Errorf("dropping table=%v: %s", table, err)
			}
		}
		return nil
	})
}

func (be *PostgresBackend) WithTransaction(opts TXOptions, fn func(tx Transaction) error) error {
	tx, err := be.db.BeginTx(context.Background(), &sql.TxOptions{ReadOnly: opts.ReadOnly})
	if err != nil {
		return fmt.Errorf("obtaining tx: %s", err)
	}
	if err := fn(&pgTX{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Errorf("Rolling back postgres tx after %q failed: %s", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func (be *PostgresBackend) EachRow(table string, fn func(key []byte, value []byte)) error {
	return be.EachRowWithBreak(table, func(k []byte, v []byte) bool {
		fn(k, v)
		return true
	})
}

func (be *PostgresBackend) EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error {
	return be.EachRowPrefix(table, nil, fn)
}

func (be *PostgresBackend) EachRowPrefix(table string, prefix []byte, fn func(key []byte, value []byte) bool) error {
	return pgEachRowPrefix(be.db, table, prefix, fn)
}

func (be *PostgresBackend) Len(table string) (int, error) {
	exists, err := tableExists(be.db, table)
	if err != nil || !exists {
		return 0, err
	}
	var n int64
	if err := be.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(table))).Scan(&n); err != nil {
		return 0, fmt.Errorf("getting length of table=%v: %s", table, err)
	}
	return int(n), nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

func ensureTable(q querier, table string) error {
	_, err := q.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	key bytea PRIMARY KEY,
	value bytea NOT NULL
)`, pq.QuoteIdentifier(table)))
	if err != nil {
		return fmt.Errorf("creating table %q: %s", table, err)
	}
	return nil
}

func tableExists(q querier, table string) (bool, error) {
	var exists bool
	if err := q.QueryRow(`SELECT to_regclass($1) IS NOT NULL`, pq.QuoteIdentifier(table)).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking table %q: %s", table, err)
	}
	return exists, nil
}

func pgGet(q querier, table string, key []byte) ([]byte, error) {
	exists, err := tableExists(q, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrKeyNotFound
	}
	var v []byte
	if err := q.QueryRow(fmt.Sprintf(`SELECT value FROM %s WHERE key=$1`, pq.QuoteIdentifier(table)), key).Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("getting key=%q from %v: %s", string(key), table, err)
	}
	return v, nil
}

// pgEachRowPrefix buffers the matching rows before invoking fn, which leaves
// the connection free for fn to issue statements on the same transaction.
func pgEachRowPrefix(q querier, table string, prefix []byte, fn func(key []byte, value []byte) bool) error {
	exists, err := tableExists(q, table)
	if err != nil || !exists {
		return err
	}
	if prefix == nil {
		prefix = []byte{}
	}
	rows, err := q.Query(fmt.Sprintf(`SELECT key, value FROM %s WHERE key >= $1 ORDER BY key ASC`, pq.QuoteIdentifier(table)), prefix)
	if err != nil {
		return fmt.Errorf("scanning %v: %s", table, err)
	}

	type row struct{ k, v []byte }
	matched := []row{}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.k, &r.v); err != nil {
			rows.Close()
			return err
		}
		if !bytes.HasPrefix(r.k, prefix) {
			break
		}
		matched = append(matched, r)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range matched {
		if !fn(r.k, r.v) {
			break
		}
	}
	return nil
}

type pgTX struct {
	tx *sql.Tx
}

func (ptx *pgTX) Get(table string, key []byte) ([]byte, error) {
	return pgGet(ptx.tx, table, key)
}

func (ptx *pgTX) Put(table string, key []byte, value []byte) error {
	if err := ensureTable(ptx.tx, table); err != nil {
		return err
	}
	_, err := ptx.tx.Exec(fmt.Sprintf(`
INSERT INTO %s (key, value) VALUES ($1, $2)
	ON CONFLICT (key)
	DO UPDATE SET value=EXCLUDED.value`, pq.QuoteIdentifier(table)),
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("inserting key=%q into %v: %s", string(key), table, err)
	}
	return nil
}

func (ptx *pgTX) Delete(table string, keys ...[]byte) error {
	if err := ensureTable(ptx.tx, table); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if _, err := ptx.tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE key = ANY($1)`, pq.QuoteIdentifier(table)), pq.ByteaArray(keys)); err != nil {
		return fmt.Errorf("deleting %v keys from %v: %s", len(keys), table, err)
	}
	return nil
}

func (ptx *pgTX) EachRowPrefix(table string, prefix []byte, fn func(key []byte, value []byte) bool) error {
	return pgEachRowPrefix(ptx.tx, table, prefix, fn)
}
