package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ejjays/assets-management/apperrors"
)

const maxBodyBytes = 1 << 20

// ParseJSON parses a JSON request body. Unknown fields are ignored; anything
// that is not a single JSON value is an invalid argument.
func ParseJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", apperrors.ErrInvalidArgument, err)
	}
	return nil
}
