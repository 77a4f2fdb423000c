package pricing

import "errors"

var (
	// ErrInvalidAmount is returned when a modifier is constructed with a negative amount.
	ErrInvalidAmount = errors.New("pricing: amount must be a non-negative number")
	// ErrInvalidModifierType is returned when a modifier is constructed with an unknown type.
	ErrInvalidModifierType = errors.New("pricing: unknown modifier type")
	// ErrInvalidModifierArgument is returned when a nil tax is passed to SetTax.
	ErrInvalidModifierArgument = errors.New("pricing: invalid tax modifier argument")
	// ErrDuplicateModifierInCall is returned when the same tax is passed twice to one SetTax call.
	ErrDuplicateModifierInCall = errors.New("pricing: tax modifier given more than once in a single group")
)
