package survey

import (
	"errors"
	"fmt"

	"github.com/yungbote/stoplight-backend/internal/blob"
	"github.com/yungbote/stoplight-backend/internal/sheets"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNonNumeric     = errors.New("non-numeric feature value")
	ErrNoRows         = errors.New("no indicator rows")
)

// DataSourceError reports a missing or malformed source file or sheet.
type DataSourceError struct {
	File  string
	Sheet string
	Err   error
}

func (e *DataSourceError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("data source %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("data source %s[%s]: %v", e.File, e.Sheet, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// NotFound reports whether the file or sheet does not exist, as opposed to
// existing but being unreadable.
func (e *DataSourceError) NotFound() bool {
	return errors.Is(e.Err, blob.ErrNotFound) || errors.Is(e.Err, sheets.ErrSheetNotFound)
}

func sourceErr(file, sheet string, err error) error {
	var dse *DataSourceError
	if errors.As(err, &dse) {
		return err
	}
	return &DataSourceError{File: file, Sheet: sheet, Err: err}
}
