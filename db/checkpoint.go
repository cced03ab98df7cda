package db

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Yuheng-Li/citation/cover"
	"github.com/Yuheng-Li/citation/domain"
)

// NewFingerprint digests the universe and the identities each candidate
// covers, in candidate order.
func NewFingerprint(universe cover.Set, items []cover.Item) domain.Fingerprint {
	h := sha256.New()
	for _, name := range universe.Slice() {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, item := range items {
		for _, name := range item.Covers() {
			h.Write([]byte(name))
			h.Write([]byte{0})
		}
		h.Write([]byte{1})
	}
	fp := domain.Fingerprint{
		Universe:   universe.Len(),
		Candidates: len(items),
		Digest:     hex.EncodeToString(h.Sum(nil)),
	}
	return fp
}

// Checkpointer is a cover.Observer persisting every pick of a named run.
// Storage errors cannot stop the selector, so the first one is kept, further
// picks are ignored and Err reports it once selection returns.
type Checkpointer struct {
	client Client
	name   string
	title  func(item cover.Item) string
	err    error
	mu     sync.Mutex
}

// NewCheckpointer returns an observer appending picks to run name.  title is
// optional and labels stored picks.
func NewCheckpointer(client Client, name string, title func(item cover.Item) string) *Checkpointer {
	cp := &Checkpointer{
		client: client,
		name:   name,
		title:  title,
	}
	return cp
}

func (cp *Checkpointer) Picked(p cover.Progress) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if cp.err != nil {
		return
	}
	pick := &domain.RunPick{
		Iteration: p.Iteration,
		Index:     p.Pick.Index,
		Gain:      p.Pick.Gain,
	}
	if cp.title != nil {
		pick.Title = cp.title(p.Pick.Item)
	}
	if cp.err = cp.client.PickAppend(cp.name, pick); cp.err != nil {
		log.WithField("run", cp.name).Errorf("Checkpointing pick %v failed, later picks will not be stored: %s", p.Iteration, cp.err)
	}
}

func (cp *Checkpointer) Err() error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.err
}
