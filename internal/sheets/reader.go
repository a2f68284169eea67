package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/yungbote/stoplight-backend/internal/blob"
)

// Workbook is an opened survey file. Sheet may be called concurrently.
type Workbook interface {
	Sheet(ctx context.Context, name string) (*Table, error)
	Close() error
}

// Reader opens workbooks stored in a blob store. File ids ending in
// .xlsx/.xlsm are Excel workbooks; ids ending in .csv name a bundle directory
// "<stem>/" holding one "<Sheet>.csv" per sheet.
type Reader struct {
	store  blob.Store
	prefix string
}

func NewReader(store blob.Store, prefix string) *Reader {
	return &Reader{store: store, prefix: prefix}
}

func (r *Reader) Driver() blob.Driver { return r.store.Driver() }

type format int

const (
	formatUnknown format = iota
	formatXLSX
	formatCSV
)

func formatOf(file string) format {
	switch strings.ToLower(path.Ext(file)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return formatXLSX
	case ".csv":
		return formatCSV
	default:
		return formatUnknown
	}
}

func (r *Reader) Open(ctx context.Context, file string) (Workbook, error) {
	key, err := blob.CleanKey(file)
	if err != nil {
		return nil, err
	}
	switch formatOf(key) {
	case formatXLSX:
		_, rc, err := r.store.Get(ctx, blob.Join(r.prefix, key))
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		f, err := excelize.OpenReader(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return &xlsxWorkbook{file: f}, nil
	case formatCSV:
		stem := strings.TrimSuffix(key, path.Ext(key))
		return &csvWorkbook{store: r.store, dir: blob.Join(r.prefix, stem)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file)
	}
}

// ReadSheet opens file, reads one sheet and closes the workbook.
func (r *Reader) ReadSheet(ctx context.Context, file, sheet string) (*Table, error) {
	wb, err := r.Open(ctx, file)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.Sheet(ctx, sheet)
}

// List returns the file ids that Open accepts, sorted.
func (r *Reader) List(ctx context.Context) ([]blob.Info, error) {
	prefix := ""
	if p := strings.Trim(r.prefix, "/"); p != "" {
		prefix = p + "/"
	}
	infos, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	bundles := map[string]blob.Info{}
	var out []blob.Info
	for _, info := range infos {
		key := strings.TrimPrefix(info.Key, prefix)
		switch formatOf(key) {
		case formatXLSX:
			info.Key = key
			out = append(out, info)
		case formatCSV:
			dir := path.Dir(key)
			if dir == "." {
				continue
			}
			b := bundles[dir]
			b.Key = dir + ".csv"
			b.Size += info.Size
			if info.LastModified.After(b.LastModified) {
				b.LastModified = info.LastModified
			}
			bundles[dir] = b
		}
	}
	for _, b := range bundles {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type xlsxWorkbook struct {
	mu   sync.Mutex
	file *excelize.File
}

func (w *xlsxWorkbook) Sheet(ctx context.Context, name string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, err := w.file.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrMalformed, name)
	}
	return NewTable(name, rows[0], rows[1:])
}

func (w *xlsxWorkbook) Close() error { return w.file.Close() }

type csvWorkbook struct {
	store blob.Store
	dir   string
}

func (w *csvWorkbook) Sheet(ctx context.Context, name string) (*Table, error) {
	_, rc, err := w.store.Get(ctx, w.dir+"/"+name+".csv")
	if errors.Is(err, blob.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrMalformed, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return NewTable(name, header, rows)
}

func (w *csvWorkbook) Close() error { return nil }
