package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yungbote/stoplight-backend/internal/blob"
)

// Store serves blobs from files under a root directory. Keys map to
// slash-separated relative paths.
type Store struct {
	root string
}

// New returns a filesystem-backed store rooted at root. The directory must exist.
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		root = "./data"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("source root %s: %w", abs, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", abs)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Driver() blob.Driver { return blob.DriverFilesystem }

func (s *Store) pathFor(key string) (string, error) {
	k, err := blob.CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func (s *Store) Get(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return blob.Info{}, nil, err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return blob.Info{}, nil, fmt.Errorf("%w: %s", blob.ErrNotFound, key)
	}
	if err != nil {
		return blob.Info{}, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return blob.Info{}, nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return blob.Info{}, nil, fmt.Errorf("%w: %s is a directory", blob.ErrNotFound, key)
	}
	return s.info(key, st), f, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]blob.Info, error) {
	var infos []blob.Info
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}
		st, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, s.info(key, st))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) info(key string, st os.FileInfo) blob.Info {
	return blob.Info{
		Key:          key,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(key)),
		LastModified: st.ModTime().UTC(),
	}
}
