package remote

import "fmt"

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "reducer http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("reducer http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("reducer http error: status=%d body=%s", e.StatusCode, e.Body)
}
