// Package store is the durable key-value layer: a single bbolt file
// namespaced by opaque user token into independent buckets. Each bucket
// maps key names to decimal-string-encoded values; every operation runs
// in its own bbolt transaction and is atomic and durable on return.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"
)

const dbFileName = "numvault.db"

// Pool owns the durable engine handle and the data directory for the
// process lifetime. Token-scoped stores are opened lazily, cached, and
// never outlive the pool.
type Pool struct {
	path string
	db   *bbolt.DB

	mu    sync.Mutex
	users map[string]*UserStore
}

// Open creates the data directory if needed and opens the engine file.
func Open(path string) (*Pool, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	db, err := bbolt.Open(filepath.Join(path, dbFileName), 0o600, &bbolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("store: open engine: %w", err)
	}
	return &Pool{
		path:  path,
		db:    db,
		users: make(map[string]*UserStore),
	}, nil
}

// Path returns the data directory backing the pool.
func (p *Pool) Path() string {
	return p.path
}

func (p *Pool) Close() error {
	return p.db.Close()
}

// User returns the store scoped to token, creating its bucket on first
// reference. Handles are cached and safe to share across goroutines.
func (p *Pool) User(token []byte) (*UserStore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st, ok := p.users[string(token)]; ok {
		return st, nil
	}
	err := p.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(token)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store: open user bucket: %w", err)
	}
	st := &UserStore{
		db:    p.db,
		token: append([]byte(nil), token...),
	}
	p.users[string(token)] = st
	return st, nil
}

// Tokens lists the tokens with an existing bucket.
func (p *Pool) Tokens() ([]string, error) {
	var tokens []string
	err := p.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			tokens = append(tokens, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: list tokens: %w", err)
	}
	return tokens, nil
}

// UserStore is the key-value namespace for one token. The struct is
// immutable after construction; concurrency control is delegated to the
// engine's own transaction locking.
type UserStore struct {
	db    *bbolt.DB
	token []byte
}

// Token returns the opaque token identifying this namespace.
func (s *UserStore) Token() []byte {
	return append([]byte(nil), s.token...)
}

// CreateValue writes v under key only when key holds no value. The
// existence probe and the put share one write transaction, which makes
// the pair a compare-and-swap-create.
func (s *UserStore) CreateValue(key string, v decimal.Decimal) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := s.bucket(tx)
		if err != nil {
			return err
		}
		if b.Get([]byte(key)) != nil {
			return ErrKeyExists
		}
		return b.Put([]byte(key), []byte(v.String()))
	})
}

// Fetch reads the stored decimal string for key and parses it back.
func (s *UserStore) Fetch(key string) (decimal.Decimal, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := s.bucket(tx)
		if err != nil {
			return err
		}
		v := b.Get([]byte(key))
		if v == nil {
			return &NotFoundError{Key: key}
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		log.Warn().
			Str("component", "store").
			Str("key", key).
			Msg("stored value does not parse as a decimal")
		return decimal.Decimal{}, &CorruptValueError{Key: key}
	}
	return d, nil
}

// UpdateValue replaces the value under key, which must already exist.
func (s *UserStore) UpdateValue(key string, v decimal.Decimal) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := s.bucket(tx)
		if err != nil {
			return err
		}
		if b.Get([]byte(key)) == nil {
			return &UpdateMissingError{Key: key}
		}
		return b.Put([]byte(key), []byte(v.String()))
	})
}

// DeleteValue removes key; deleting an absent key is an error.
func (s *UserStore) DeleteValue(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := s.bucket(tx)
		if err != nil {
			return err
		}
		if b.Get([]byte(key)) == nil {
			return &NotFoundError{Key: key}
		}
		return b.Delete([]byte(key))
	})
}

// Contains reports whether key currently holds a value.
func (s *UserStore) Contains(key string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := s.bucket(tx)
		if err != nil {
			return err
		}
		found = b.Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

// Len returns the number of keys in the namespace.
func (s *UserStore) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := s.bucket(tx)
		if err != nil {
			return err
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

func (s *UserStore) bucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket(s.token)
	if b == nil {
		return nil, fmt.Errorf("store: bucket for token %q is missing", s.token)
	}
	return b, nil
}
