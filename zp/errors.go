package zp

import "golang.org/x/xerrors"

var (
	// ErrFieldMismatch is returned when two elements of different fields are
	// combined.
	ErrFieldMismatch = xerrors.New("field mismatch")
	// ErrNotInvertible is returned when inverting zero.
	ErrNotInvertible = xerrors.New("element not invertible")
	// ErrInsufficientShares is returned when a reconstruction is attempted with
	// no more than threshold shares.
	ErrInsufficientShares = xerrors.New("insufficient shares")
	// ErrDuplicateIndex is returned when two shares use the same evaluation
	// point.
	ErrDuplicateIndex = xerrors.New("duplicate share index")
	// ErrNotPrime is returned when a field is created with a modulus that is
	// not an odd prime.
	ErrNotPrime = xerrors.New("modulus is not an odd prime")
)
