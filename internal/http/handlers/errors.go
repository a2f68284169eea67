package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/yungbote/stoplight-backend/internal/blob"
	"github.com/yungbote/stoplight-backend/internal/embedding"
	"github.com/yungbote/stoplight-backend/internal/platform/apierr"
	"github.com/yungbote/stoplight-backend/internal/sheets"
	"github.com/yungbote/stoplight-backend/internal/survey"
)

const (
	codeInvalidRequest = "invalid_request"
	codeTooLarge       = "request_too_large"
	codeDataSource     = "data_source_error"
	codeEmbedding      = "embedding_error"
	codeInternal       = "internal"
	codeRunLog         = "runlog_error"
	codeCanceled       = "request_canceled"
	codeTimeout        = "timeout"
)

// statusClientClosed is the nginx convention for a client that went away
// before the response was ready.
const statusClientClosed = 499

// toAPIError maps pipeline errors onto HTTP status and envelope code.
func toAPIError(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierr.New(http.StatusRequestEntityTooLarge, codeTooLarge, err)
	}
	switch {
	case errors.Is(err, context.Canceled):
		return apierr.New(statusClientClosed, codeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusServiceUnavailable, codeTimeout, err)
	}
	if errors.Is(err, survey.ErrInvalidRequest) || errors.Is(err, blob.ErrInvalidKey) || errors.Is(err, sheets.ErrUnsupportedFormat) {
		return apierr.New(http.StatusBadRequest, codeInvalidRequest, err)
	}
	var dse *survey.DataSourceError
	if errors.As(err, &dse) {
		if dse.NotFound() {
			return apierr.New(http.StatusNotFound, codeDataSource, err)
		}
		return apierr.New(http.StatusUnprocessableEntity, codeDataSource, err)
	}
	var ee *embedding.Error
	if errors.As(err, &ee) {
		switch ee.Kind {
		case embedding.KindInvalid:
			return apierr.New(http.StatusUnprocessableEntity, codeEmbedding, err)
		case embedding.KindUnavailable:
			return apierr.New(http.StatusServiceUnavailable, codeEmbedding, err)
		default:
			return apierr.New(http.StatusBadGateway, codeEmbedding, err)
		}
	}
	return apierr.New(http.StatusInternalServerError, codeInternal, err)
}
