package models

import (
	"errors"
	"fmt"
)

var ErrUnknownValue = errors.New("unknown value")

func unknown(kind, value string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownValue, kind, value)
}
