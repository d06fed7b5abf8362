package calculator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	// MaxKeysPerRequest caps the keys a single press or replay request
	// may carry.
	MaxKeysPerRequest = 1024

	// maxBodyBytes caps every JSON request body.
	maxBodyBytes = 64 << 10
)

var errTooManyKeys = errors.New("too many keys")

// decodeBody reads at most maxBodyBytes of JSON from r into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// bodyError maps a decodeBody failure to the client message and status.
func bodyError(err error) (string, int) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "request body too large", http.StatusRequestEntityTooLarge
	}
	return "invalid request body", http.StatusBadRequest
}

func checkKeyCount(n int) error {
	if n > MaxKeysPerRequest {
		return fmt.Errorf("%w: %d keys, limit %d", errTooManyKeys, n, MaxKeysPerRequest)
	}
	return nil
}
