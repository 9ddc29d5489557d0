package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"clmm/lib/pool"
)

var poolKeyPrefix = []byte("pool/")

func poolKey(id string) []byte {
	return append(append([]byte(nil), poolKeyPrefix...), id...)
}

// DiskStore persists JSON-encoded pool records in LevelDB.
type DiskStore struct {
	db *leveldb.DB
}

func OpenDiskStore(path string) (*DiskStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open leveldb: %w", err)
	}
	return &DiskStore{db: db}, nil
}

func (s *DiskStore) Get(id string) (*pool.Pool, error) {
	raw, err := s.db.Get(poolKey(id), nil)
	if err == leveldb.ErrNotFound {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", id, err)
	}
	var p pool.Pool
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return &p, nil
}

func (s *DiskStore) Put(p *pool.Pool) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", p.PoolID(), err)
	}
	if err := s.db.Put(poolKey(p.PoolID()), raw, nil); err != nil {
		return fmt.Errorf("store: put %s: %w", p.PoolID(), err)
	}
	return nil
}

func (s *DiskStore) Has(id string) (bool, error) {
	ok, err := s.db.Has(poolKey(id), nil)
	if err != nil {
		return false, fmt.Errorf("store: has %s: %w", id, err)
	}
	return ok, nil
}

func (s *DiskStore) List() ([]string, error) {
	iter := s.db.NewIterator(util.BytesPrefix(poolKeyPrefix), nil)
	defer iter.Release()
	var ids []string
	for iter.Next() {
		ids = append(ids, string(iter.Key()[len(poolKeyPrefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *DiskStore) Close() error {
	return s.db.Close()
}
