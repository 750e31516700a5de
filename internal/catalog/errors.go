package catalog

import (
	"errors"
	"fmt"

	"github.com/thesavant42/countrysearch/internal/api"
)

// ErrFetchFailed matches every *FetchError with errors.Is
var ErrFetchFailed = errors.New("fetch failed")

// FetchError reports a failed dataset download. The catalog stays Empty
// and the next Load retries.
type FetchError struct {
	StatusCode int // 0 when the request never got a response
	Err        error
}

func newFetchError(err error) *FetchError {
	fe := &FetchError{Err: err}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		fe.StatusCode = statusErr.StatusCode
	}
	return fe
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", ErrFetchFailed, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// errEmptyDataset is the cause used when the API returns no records
var errEmptyDataset = errors.New("empty country list")
