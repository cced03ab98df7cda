package db

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Yuheng-Li/citation/domain"
)

type ClientKV struct {
	be     Backend
	opened bool
	mu     sync.Mutex
}

func newClient(be Backend) *ClientKV {
	c := &ClientKV{
		be: be,
	}
	return c
}

func (c *ClientKV) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened {
		return nil
	}
	if err := c.be.Open(); err != nil {
		return err
	}
	c.opened = true

	log.Debug("ClientKV opened")
	return nil
}

func (c *ClientKV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil
	}
	if err := c.be.Close(); err != nil {
		return err
	}
	c.opened = false

	log.Debug("ClientKV closed")
	return nil
}

func (c *ClientKV) Backend() Backend {
	return c.be
}

func (c *ClientKV) Purge(tables ...string) error {
	for _, table := range tables {
		log.WithField("table", table).Debug("Purging")
	}
	return c.be.Drop(tables...)
}

func (c *ClientKV) RunSave(runs ...*domain.Run) error {
	return c.be.WithTransaction(TXOptions{}, func(tx Transaction) error {
		now := time.Now()
		for _, run := range runs {
			if run.CreatedAt.IsZero() {
				run.CreatedAt = now
			}
			run.UpdatedAt = now
			if err := putJSON(tx, TableRuns, []byte(run.Name), run); err != nil {
				return fmt.Errorf("saving run %q: %s", run.Name, err)
			}
		}
		return nil
	})
}

// RunDelete N.B. no existence check is performed.
func (c *ClientKV) RunDelete(names ...string) error {
	return c.be.WithTransaction(TXOptions{}, func(tx Transaction) error {
		for _, name := range names {
			keys := [][]byte{}
			if err := tx.EachRowPrefix(TablePicks, pickPrefix(name), func(k []byte, _ []byte) bool {
				keys = append(keys, copyBytes(k))
				return true
			}); err != nil {
				return err
			}
			if err := tx.Delete(TablePicks, keys...); err != nil {
				return fmt.Errorf("deleting picks of run %q: %s", name, err)
			}
			if err := tx.Delete(TableRuns, []byte(name)); err != nil {
				return fmt.Errorf("deleting run %q: %s", name, err)
			}
		}
		return nil
	})
}

func (c *ClientKV) Run(name string) (*domain.Run, error) {
	v, err := c.be.Get(TableRuns, []byte(name))
	if err != nil {
		return nil, err
	}
	run := &domain.Run{}
	if err := json.Unmarshal(v, run); err != nil {
		return nil, fmt.Errorf("unmarshalling run %q: %s", name, err)
	}
	return run, nil
}

func (c *ClientKV) EachRun(fn func(run *domain.Run)) error {
	var unmarshalErr error
	if err := c.be.EachRowWithBreak(TableRuns, func(k []byte, v []byte) bool {
		run := &domain.Run{}
		if unmarshalErr = json.Unmarshal(v, run); unmarshalErr != nil {
			unmarshalErr = fmt.Errorf("unmarshalling run %q: %s", string(k), unmarshalErr)
			return false
		}
		fn(run)
		return true
	}); err != nil {
		return err
	}
	return unmarshalErr
}

func (c *ClientKV) RunsLen() (int, error) {
	return c.be.Len(TableRuns)
}

// PickAppend stores picks under their iteration number, so appending a pick
// that was already stored overwrites it.
func (c *ClientKV) PickAppend(name string, picks ...*domain.RunPick) error {
	return c.be.WithTransaction(TXOptions{}, func(tx Transaction) error {
		v, err := tx.Get(TableRuns, []byte(name))
		if err != nil {
			return fmt.Errorf("run %q: %w", name, err)
		}
		run := &domain.Run{}
		if err := json.Unmarshal(v, run); err != nil {
			return fmt.Errorf("unmarshalling run %q: %s", name, err)
		}

		for _, pick := range picks {
			if pick.Iteration < 1 {
				return fmt.Errorf("run %q: invalid pick iteration %v", name, pick.Iteration)
			}
			if err := putJSON(tx, TablePicks, pickKey(name, pick.Iteration), pick); err != nil {
				return fmt.Errorf("saving pick %v of run %q: %s", pick.Iteration, name, err)
			}
			if pick.Iteration > run.Picks {
				run.Picks = pick.Iteration
			}
		}
		run.UpdatedAt = time.Now()
		return putJSON(tx, TableRuns, []byte(name), run)
	})
}

func (c *ClientKV) Picks(name string) ([]*domain.RunPick, error) {
	var (
		picks        = []*domain.RunPick{}
		unmarshalErr error
	)
	if err := c.be.EachRowPrefix(TablePicks, pickPrefix(name), func(_ []byte, v []byte) bool {
		pick := &domain.RunPick{}
		if unmarshalErr = json.Unmarshal(v, pick); unmarshalErr != nil {
			return false
		}
		picks = append(picks, pick)
		return true
	}); err != nil {
		return nil, err
	}
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshalling pick of run %q: %s", name, unmarshalErr)
	}
	return picks, nil
}

// Resume loads a run and the candidate indices it picked, in order.  The
// stored picks must form an unbroken 1..n sequence.
func (c *ClientKV) Resume(name string, fp domain.Fingerprint) (*domain.Run, []int, error) {
	run, err := c.Run(name)
	if err != nil {
		return nil, nil, err
	}
	if run.Fingerprint != fp {
		return nil, nil, fmt.Errorf("run %q: %w (stored=%+v current=%+v)", name, ErrFingerprintMismatch, run.Fingerprint, fp)
	}
	picks, err := c.Picks(name)
	if err != nil {
		return nil, nil, err
	}
	indices := make([]int, 0, len(picks))
	for i, pick := range picks {
		if pick.Iteration != i+1 {
			return nil, nil, fmt.Errorf("run %q: pick %v is missing", name, i+1)
		}
		indices = append(indices, pick.Index)
	}
	return run, indices, nil
}

func (c *ClientKV) MetaSave(key string, src interface{}) error {
	var v []byte
	switch src.(type) {
	case []byte:
		v = src.([]byte)

	case string:
		v = []byte(src.(string))

	default:
		return ErrMetadataUnsupportedSrcType
	}
	return c.be.Put(TableMetadata, []byte(key), v)
}

func (c *ClientKV) MetaDelete(key string) error {
	return c.be.Delete(TableMetadata, []byte(key))
}

func (c *ClientKV) Meta(key string) ([]byte, error) {
	v, err := c.be.Get(TableMetadata, []byte(key))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	return v, err
}

func putJSON(tx Transaction, table string, key []byte, v interface{}) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Put(table, key, bs)
}

// pickPrefix returns the key prefix shared by every pick of a run.  The NUL
// separator keeps run "a" from matching the picks of run "ab".
func pickPrefix(name string) []byte {
	return append([]byte(name), 0)
}

// pickKey orders picks by iteration under bolt's byte-wise key ordering.
func pickKey(name string, iteration int) []byte {
	k := pickPrefix(name)
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(iteration))
	return append(k, n[:]...)
}
