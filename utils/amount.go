package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ejjays/assets-management/apperrors"
)

// ParseAmount reads a monetary value sent either as a JSON number or as a
// numeric string ("750.5"). The result must be a finite, non-negative number.
func ParseAmount(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: value is empty", apperrors.ErrInvalidArgument)
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("%w: value is not a string or number", apperrors.ErrInvalidArgument)
		}
		text = strings.TrimSpace(text)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q is not a number", apperrors.ErrInvalidArgument, text)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: value must not be negative", apperrors.ErrInvalidArgument)
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: value %q is out of range", apperrors.ErrInvalidArgument, text)
	}
	return f, nil
}
