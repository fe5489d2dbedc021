package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/ctxdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

var bucketKV = []byte("kv")

// headerSize is the per-value expiry header: unix nanos, 0 = no expiry.
const headerSize = 8

// Store implements db.Store on a local bbolt file, for single-node setups
// without Redis.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewStore opens (or creates) the bolt file at path.
func NewStore(path string) (*Store, error) {
	bdb, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketKV); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketKV, err)
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}

	return &Store{db: bdb, now: time.Now}, nil
}

// Ping reports whether the file is still open.
func (s *Store) Ping(_ context.Context) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketKV) == nil {
			return fmt.Errorf("bucket %s missing", bucketKV)
		}
		return nil
	})
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		err = db.ErrClosed
	}
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the underlying file.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns immediately: a local file is ready once opened.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Get retrieves a value by key. Expired entries are reported as missing.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v, ok := s.decode(tx.Bucket(bucketKV).Get([]byte(key)))
		if !ok {
			return db.ErrKeyNotFound
		}
		out = v
		return nil
	})
	if err != nil {
		if err == db.ErrKeyNotFound { //nolint:errorlint // sentinel returned as-is from the closure
			return nil, err
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

// GetMulti fetches several keys in one read transaction. Missing keys yield nil entries.
func (s *Store) GetMulti(_ context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	out := make([][]byte, len(keys))
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKV)
		for i, k := range keys {
			if v, ok := s.decode(b.Get([]byte(k))); ok {
				out[i] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}
	return out, nil
}

// Set stores a value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMulti(ctx, []db.KVItem{{Key: key, Value: value}})
}

// SetMulti stores all items in one write transaction.
func (s *Store) SetMulti(_ context.Context, items []db.KVItem) error {
	if len(items) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKV)
		for _, it := range items {
			if err := b.Put([]byte(it.Key), encode(it.Value, time.Time{})); err != nil {
				return fmt.Errorf("put %s: %w", it.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a value that Get treats as missing after ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	expires := s.now().Add(ttl)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), encode(value, expires))
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

func encode(value []byte, expires time.Time) []byte {
	buf := make([]byte, headerSize+len(value))
	if !expires.IsZero() {
		binary.LittleEndian.PutUint64(buf, uint64(expires.UnixNano()))
	}
	copy(buf[headerSize:], value)
	return buf
}

// decode copies the payload out of bolt-owned memory, which is only valid
// for the life of the transaction.
func (s *Store) decode(raw []byte) ([]byte, bool) {
	if len(raw) < headerSize {
		return nil, false
	}
	if exp := binary.LittleEndian.Uint64(raw); exp != 0 && s.now().UnixNano() >= int64(exp) {
		return nil, false
	}
	out := make([]byte, len(raw)-headerSize)
	copy(out, raw[headerSize:])
	return out, true
}
