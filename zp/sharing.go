package zp

import (
	"fmt"
	"io"

	"golang.org/x/xerrors"
)

// Share is one evaluation of a sharing polynomial. Index is the 1-based
// evaluation point.
type Share struct {
	Index int
	Value Element
}

// String implements fmt.Stringer.
func (s Share) String() string {
	return fmt.Sprintf("(%d, %s)", s.Index, s.Value)
}

// Split shares secret into numShares shares with a fresh random polynomial of
// degree threshold, evaluated at 1..numShares. Any threshold+1 shares
// determine the secret, fewer leak nothing.
func Split(r io.Reader, secret Element, numShares, threshold int) ([]Share, error) {
	if threshold < 0 {
		return nil, xerrors.Errorf("invalid threshold %d", threshold)
	}
	if numShares <= threshold {
		return nil, xerrors.Errorf("%w: %d shares cannot hold a threshold of %d",
			ErrInsufficientShares, numShares, threshold)
	}
	field := secret.Field()
	if field == nil {
		return nil, xerrors.Errorf("%w: uninitialized secret", ErrFieldMismatch)
	}
	if uint64(numShares) >= field.Modulus() {
		return nil, xerrors.Errorf("%d shares need more evaluation points than modulus %d provides",
			numShares, field.Modulus())
	}

	poly, err := NewRandomPolynomial(r, secret, threshold)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, numShares)
	for i := 1; i <= numShares; i++ {
		// x must never be 0, or the secret would be sent as is
		y, err := poly.Evaluate(field.Element(uint64(i)))
		if err != nil {
			return nil, err
		}
		shares[i-1] = Share{Index: i, Value: y}
	}

	return shares, nil
}

// Reconstruct interpolates the shares and returns the polynomial's value at
// x = 0. The caller is responsible for providing more shares than the
// threshold, see ReconstructThreshold.
func Reconstruct(shares []Share) (Element, error) {
	if len(shares) == 0 {
		return Element{}, xerrors.Errorf("%w: no share given", ErrInsufficientShares)
	}

	indices := make([]int, len(shares))
	for i, share := range shares {
		indices[i] = share.Index
	}

	field := shares[0].Value.Field()
	if field == nil {
		return Element{}, xerrors.Errorf("%w: uninitialized share value", ErrFieldMismatch)
	}
	weights, err := LagrangeCoefficients(field, indices)
	if err != nil {
		return Element{}, err
	}

	secret := field.Zero()
	for i, share := range shares {
		term, err := share.Value.Mul(weights[i])
		if err != nil {
			return Element{}, err
		}
		secret, err = secret.Add(term)
		if err != nil {
			return Element{}, err
		}
	}

	return secret, nil
}

// ReconstructThreshold reconstructs the secret after checking that more than
// threshold shares are given.
func ReconstructThreshold(shares []Share, threshold int) (Element, error) {
	if len(shares) <= threshold {
		return Element{}, xerrors.Errorf("%w: got %d, need at least %d",
			ErrInsufficientShares, len(shares), threshold+1)
	}
	return Reconstruct(shares)
}

// LagrangeCoefficients returns the Lagrange weights at 0 for the given
// evaluation points:
//
//	λᵢ = ∏_{j≠i} xⱼ / (xⱼ - xᵢ)
func LagrangeCoefficients(field *Field, indices []int) ([]Element, error) {
	seen := make(map[int]struct{}, len(indices))
	xs := make([]Element, len(indices))
	for i, index := range indices {
		if index <= 0 || uint64(index) >= field.Modulus() {
			return nil, xerrors.Errorf("invalid share index %d", index)
		}
		if _, ok := seen[index]; ok {
			return nil, xerrors.Errorf("%w: %d", ErrDuplicateIndex, index)
		}
		seen[index] = struct{}{}
		xs[i] = field.Element(uint64(index))
	}

	weights := make([]Element, len(xs))
	for i, xi := range xs {
		num := field.One()
		den := field.One()
		for j, xj := range xs {
			if i == j {
				continue
			}
			var err error
			num, err = num.Mul(xj)
			if err != nil {
				return nil, err
			}
			diff, err := xj.Sub(xi)
			if err != nil {
				return nil, err
			}
			den, err = den.Mul(diff)
			if err != nil {
				return nil, err
			}
		}
		w, err := num.Div(den)
		if err != nil {
			return nil, err
		}
		weights[i] = w
	}

	return weights, nil
}
