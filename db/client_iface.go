package db

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Yuheng-Li/citation/domain"
)

const (
	TableMetadata = "citation-metadata"
	TableRuns     = "runs"
	TablePicks    = "picks"
)

var (
	ErrKeyNotFound                = errors.New("requested key not found")
	ErrFingerprintMismatch        = errors.New("checkpoint was taken over different inputs")
	ErrUnsupportedDriver          = errors.New("unrecognized or unsupported DB driver")
	ErrMetadataUnsupportedSrcType = errors.New("unsupported src type: must be an []byte or string")

	tables = []string{
		TableMetadata,
		TableRuns,
		TablePicks,
	}
)

// Type identifies a storage driver.
type Type int

const (
	Bolt Type = iota
	Postgres
)

func (typ Type) String() string {
	switch typ {
	case Bolt:
		return "bolt"
	case Postgres:
		return "postgres"
	default:
		return fmt.Sprintf("Type(%d)", int(typ))
	}
}

type Client interface {
	Open() error                                                           // Open / start DB client connection.
	Close() error                                                          // Close / shutdown the DB client connection.
	Purge(tables ...string) error                                          // Reset a DB table.
	RunSave(runs ...*domain.Run) error                                     // Upsert selection runs.
	RunDelete(names ...string) error                                       // Delete runs along with their picks.
	Run(name string) (*domain.Run, error)                                  // Retrieve a specific run.
	EachRun(fn func(run *domain.Run)) error                                // Iterates over all runs and invokes callback on each.
	RunsLen() (int, error)                                                 // Number of stored runs.
	PickAppend(name string, picks ...*domain.RunPick) error                // Store picks of an existing run, keyed by iteration.
	Picks(name string) ([]*domain.RunPick, error)                          // Retrieve the picks of a run in iteration order.
	Resume(name string, fp domain.Fingerprint) (*domain.Run, []int, error) // Retrieve a run and its pick indices, verifying the fingerprint.
	MetaSave(key string, src interface{}) error                            // Store metadata key/value.  NB: src must be one of raw []byte or string.
	MetaDelete(key string) error                                           // Delete a metadata key.
	Meta(key string) ([]byte, error)                                       // Retrieve metadata value.
	Backend() Backend                                                      // Expose underlying backend impl.
}

type Config interface {
	Type() Type // Configuration type specifier.
}

// NewConfig maps a driver name onto its configuration.  For bolt dbFile is
// the database file path, for postgres it is the connection string.
func NewConfig(driver string, dbFile string) (Config, error) {
	switch strings.ToLower(driver) {
	case "", "bolt", "boltdb":
		return NewBoltConfig(dbFile), nil

	case "postgres", "postgresql", "pg":
		return NewPostgresConfig(dbFile), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// NewClient constructs a new DB client based on the passed configuration.
func NewClient(config Config) (Client, error) {
	typ := config.Type()

	switch typ {
	case Bolt:
		be := NewBoltBackend(config.(*BoltConfig))
		return newClient(be), nil

	case Postgres:
		be := NewPostgresBackend(config.(*PostgresConfig))
		return newClient(be), nil

	default:
		return nil, fmt.Errorf("no client constructor available for db configuration type: %v", typ)
	}
}

// WithClient is a convenience utility which handles DB client construction,
// open, and close..
func WithClient(config Config, fn func(dbClient Client) error) (err error) {
	dbClient, err := NewClient(config)
	if err != nil {
		return
	}

	if err = dbClient.Open(); err != nil {
		err = fmt.Errorf("opening DB client %T: %s", dbClient, err)
		return
	}
	defer func() {
		if closeErr := dbClient.Close(); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("closing DB client %T: %s", dbClient, closeErr)
			} else {
				log.Errorf("Existing error before attempt to close DB client %T: %s", dbClient, err)
				log.Errorf("Also encountered problem closing DB client %T: %s", dbClient, closeErr)
			}
		}
	}()

	if err = fn(dbClient); err != nil {
		return
	}

	return
}
