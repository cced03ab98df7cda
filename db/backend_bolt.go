package db

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

type BoltConfig struct {
	DBFile      string
	BoltOptions *bolt.Options
}

func NewBoltConfig(dbFilename string) *BoltConfig {
	cfg := &BoltConfig{
		DBFile: dbFilename,
		BoltOptions: &bolt.Options{
			Timeout: 1 * time.Second,
		},
	}
	return cfg
}

func (cfg BoltConfig) Type() Type {
	return Bolt
}

type BoltBackend struct {
	config *BoltConfig
	db     *bolt.DB
	mu     sync.Mutex
}

func NewBoltBackend(config *BoltConfig) *BoltBackend {
	be := &BoltBackend{
		config: config,
	}
	return be
}

func (be *BoltBackend) Open() error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.db != nil {
		return nil
	}

	db, err := bolt.Open(be.config.DBFile, 0600, be.config.BoltOptions)
	if err != nil {
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

func (be *BoltBackend) Close() error {
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

func (be *BoltBackend) initDB() error {
	return be.db.Update(func(tx *bolt.Tx) error {
		for _, name := range tables {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("initDB: creating bucket %q: %s", name, err)
			}
		}
		return nil
	})
}

func (be *BoltBackend) Get(table string, key []byte) ([]byte, error) {
	var v []byte
	if err := be.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return ErrKeyNotFound
		}
		if v = copyBytes(b.Get(key)); v == nil {
			return ErrKeyNotFound
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return v, nil
}

func (be *BoltBackend) Put(table string, key []byte, value []byte) error {
	return be.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(table))
		if err != nil {
			return err
		}
		return b.Put(key, value)
	})
}

func (be *BoltBackend) Delete(table string, keys ...[]byte) error {
	return be.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(table))
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := b.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func (be *BoltBackend) Drop(tables ...string) error {
	return be.db.Update(func(tx *bolt.Tx) error {
		for _, table := range tables {
			if err := tx.DeleteBucket([]byte(table)); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}
		return nil
	})
}

func (be *BoltBackend) WithTransaction(opts TXOptions, fn func(tx Transaction) error) error {
	if opts.ReadOnly {
		return be.db.View(func(tx *bolt.Tx) error {
			return fn(&boltTX{tx: tx})
		})
	}
	return be.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTX{tx: tx})
	})
}

func (be *BoltBackend) EachRow(table string, fn func(key []byte, value []byte)) error {
	return be.EachRowWithBreak(table, func(k []byte, v []byte) bool {
		fn(k, v)
		return true
	})
}

func (be *BoltBackend) EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error {
	return be.EachRowPrefix(table, nil, fn)
}

func (be *BoltBackend) EachRowPrefix(table string, prefix []byte, fn func(key []byte, value []byte) bool) error {
	return be.db.View(func(tx *bolt.Tx) error {
		return eachRowPrefix(tx, table, prefix, fn)
	})
}

func (be *BoltBackend) Len(table string) (int, error) {
	var n int
	if err := be.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	}); err != nil {
		return 0, err
	}
	return n, nil
}

func eachRowPrefix(tx *bolt.Tx, table string, prefix []byte, fn func(key []byte, value []byte) bool) error {
	b := tx.Bucket([]byte(table))
	if b == nil {
		return nil
	}
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if !fn(k, v) {
			break
		}
	}
	return nil
}

// copyBytes detaches a value from the bolt page it points into, which is only
// valid for the life of the transaction.
func copyBytes(v []byte) []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

type boltTX struct {
	tx *bolt.Tx
}

func (btx *boltTX) Get(table string, key []byte) ([]byte, error) {
	b := btx.tx.Bucket([]byte(table))
	if b == nil {
		return nil, ErrKeyNotFound
	}
	v := b.Get(key)
	if v == nil {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (btx *boltTX) Put(table string, key []byte, value []byte) error {
	b, err := btx.tx.CreateBucketIfNotExists([]byte(table))
	if err != nil {
		return err
	}
	return b.Put(key, value)
}

func (btx *boltTX) Delete(table string, keys ...[]byte) error {
	b, err := btx.tx.CreateBucketIfNotExists([]byte(table))
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := b.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (btx *boltTX) EachRowPrefix(table string, prefix []byte, fn func(key []byte, value []byte) bool) error {
	return eachRowPrefix(btx.tx, table, prefix, fn)
}
