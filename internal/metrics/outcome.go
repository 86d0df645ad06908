package metrics

import (
	"errors"

	"github.com/aretw0/tgadmin/pkg/domain"
)

// Outcome maps a mutation error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, domain.ErrEmptyArray):
		return "empty_array"
	case errors.Is(err, domain.ErrValueNotFound):
		return "value_not_found"
	case errors.Is(err, domain.ErrAddressNotFound):
		return "address_not_found"
	case errors.Is(err, domain.ErrSerialize):
		return "serialize_error"
	case errors.Is(err, domain.ErrInvariant):
		return "invariant"
	}
	return "error"
}
