// Package memory implements an in-memory blob store for tests and the
// offline CLI.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/stoplight-backend/internal/blob"
)

type entry struct {
	info blob.Info
	data []byte
}

type Store struct {
	mu   sync.RWMutex
	objs map[string]entry
}

func New() *Store { return &Store{objs: make(map[string]entry)} }

func (s *Store) Driver() blob.Driver { return blob.DriverMemory }

// Put stores or replaces a blob.
func (s *Store) Put(key string, data []byte) (blob.Info, error) {
	k, err := blob.CleanKey(key)
	if err != nil {
		return blob.Info{}, err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	info := blob.Info{Key: k, Size: int64(len(cp)), LastModified: time.Now().UTC()}
	s.mu.Lock()
	s.objs[k] = entry{info: info, data: cp}
	s.mu.Unlock()
	return info, nil
}

func (s *Store) Get(_ context.Context, key string) (blob.Info, io.ReadCloser, error) {
	k, err := blob.CleanKey(key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	s.mu.RLock()
	obj, ok := s.objs[k]
	s.mu.RUnlock()
	if !ok {
		return blob.Info{}, nil, fmt.Errorf("%w: %s", blob.ErrNotFound, key)
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *Store) List(_ context.Context, prefix string) ([]blob.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]blob.Info, 0, len(s.objs))
	for k, v := range s.objs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, v.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
