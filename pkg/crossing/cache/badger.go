package cache

import (
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BadgerConfig configures a badger-backed Store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in memory, for tests.
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's own logging. Nil silences it.
	Logger logrus.FieldLogger
}

type badgerStore struct {
	db *badger.DB
}

// OpenBadger opens a Store persisted with badger.
func OpenBadger(cfg BadgerConfig) (Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger store requires a path")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, errors.Wrapf(err, "creating %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(cfg.Logger)
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening badger store")
	}
	return &badgerStore{db: db}, nil
}

func (s *badgerStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %s", key)
	}
	return value, true, nil
}

func (s *badgerStore) Put(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	return errors.Wrapf(err, "writing %s", key)
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}
