package db

// Backend is a generic K/V persistence interface.
type Backend interface {
	Open() error
	Close() error
	Get(table string, key []byte) (value []byte, err error)
	Put(table string, key []byte, value []byte) error
	Delete(table string, keys ...[]byte) error
	Drop(tables ...string) error
	Len(table string) (n int, err error)
	WithTransaction(opts TXOptions, fn func(tx Transaction) error) error
	EachRow(table string, fn func(key []byte, value []byte)) error
	EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error
	EachRowPrefix(table string, prefix []byte, fn func(key []byte, value []byte) bool) error
}

// Transaction is a generic TX interface to be provided by each Backend
// implementation.
type Transaction interface {
	Get(table string, key []byte) (value []byte, err error)
	Put(table string, key []byte, value []byte) error
	Delete(table string, keys ...[]byte) error
	EachRowPrefix(table string, prefix []byte, fn func(key []byte, value []byte) bool) error
}

type TXOptions struct {
	ReadOnly bool
}
