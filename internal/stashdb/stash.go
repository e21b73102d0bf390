package stashdb

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/S0me0neR0man/skipstash/internal/config"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrEmptyKey       = errors.New("empty row key")
)

// Row is a stored key value pair
type Row struct {
	Key   []byte
	Value []byte
}

// Stash the in-memory ordered key-value tread safe store.
// Rows are kept sorted by their raw key bytes, so a composite row key built
// with rowkey.Schema scans in field order.
type Stash struct {
	tree *redBlackTree
	mu   sync.RWMutex

	conf  *config.Config
	sugar *zap.SugaredLogger
}

func NewStash(conf *config.Config, logger *zap.Logger) (*Stash, error) {
	s := &Stash{
		tree:  newRedBlackTree(),
		conf:  conf,
		sugar: logger.Sugar(),
	}

	if conf.Restore {
		if err := s.restore(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put inserts or replaces the row. Key and value are copied.
func (s *Stash) Put(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)

	s.mu.Lock()
	inserted := s.tree.put(k, v)
	s.mu.Unlock()

	s.sugar.Debugw("put", "key", fmt.Sprintf("%x", key), "inserted", inserted)
	return nil
}

// Get returns a copy of the value stored under key
func (s *Stash) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node := s.tree.get(key)
	if node == nil {
		return nil, ErrRecordNotFound
	}
	return append([]byte(nil), node.value...), nil
}

// Remove data
func (s *Stash) Remove(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tree.remove(key) {
		return ErrRecordNotFound
	}
	s.sugar.Debugw("remove", "key", fmt.Sprintf("%x", key))
	return nil
}

// Len returns the number of stored rows
func (s *Stash) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.sizeof()
}

// SaveToDisk save data to disk
func (s *Stash) SaveToDisk(ctx context.Context) error {
	if s.conf.StoreFile == "" {
		return nil
	}
	rows, err := s.copyData(ctx)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.conf.StoreFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(s.conf.StoreFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	if err = gob.NewEncoder(file).Encode(rows); err != nil {
		return fmt.Errorf("save to disk: %w", err)
	}
	s.sugar.Debugw("saved to disk", "file", s.conf.StoreFile, "rows", len(rows))
	return nil
}

func (s *Stash) restore() error {
	if s.conf.StoreFile == "" {
		return nil
	}
	file, err := os.Open(s.conf.StoreFile)
	if errors.Is(err, os.ErrNotExist) {
		s.sugar.Infow("nothing to restore", "file", s.conf.StoreFile)
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	var rows []Row
	if err = gob.NewDecoder(file).Decode(&rows); err != nil {
		return fmt.Errorf("restore from %s: %w", s.conf.StoreFile, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.clear()
	for _, row := range rows {
		s.tree.put(row.Key, row.Value)
	}
	s.sugar.Infow("restored", "file", s.conf.StoreFile, "rows", s.tree.sizeof())
	return nil
}

func (s *Stash) copyData(ctx context.Context) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]Row, 0, s.tree.sizeof())
	it := s.tree.iterator()
	for it.next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ret = append(ret, Row{Key: it.node.key, Value: it.node.value})
	}
	return ret, nil
}
