package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/isdelr/tasklist-be/internal/apperrors"
	"github.com/isdelr/tasklist-be/internal/auth"
	"github.com/pkg/errors"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst. Malformed or oversized bodies are
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation("Invalid request body").WithCause(err)
	}
	return nil
}

// currentUserID returns the id placed in the context by auth.Guard. Its
// absence means a route was mounted without the guard.
func currentUserID(r *http.Request) (string, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperrors.Internal(errors.New("handler reached without authenticated user"))
	}
	return userID, nil
}

// queryInt parses a positive integer query parameter, trying each name in
// turn. Missing or malformed values yield 0 so callers apply their defaults;
// positive values too large for an int saturate at math.MaxInt.
func queryInt(r *http.Request, names ...string) int {
	q := r.URL.Query()
	for _, name := range names {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err == nil || (errors.Is(err, strconv.ErrRange) && v > 0) {
			return v
		}
		return 0
	}
	return 0
}
