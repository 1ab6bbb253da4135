package zp

import (
	"io"

	"golang.org/x/xerrors"
)

// Polynomial is a polynomial over Zp. coefficients[0] is the constant term.
type Polynomial struct {
	coefficients []Element
}

// NewRandomPolynomial generates a random polynomial of the given degree with
// f(0) = secret. The other coefficients are drawn independently and uniformly
// from the field.
func NewRandomPolynomial(r io.Reader, secret Element, degree int) (*Polynomial, error) {
	if degree < 0 {
		return nil, xerrors.Errorf("invalid degree %d", degree)
	}
	if secret.Field() == nil {
		return nil, xerrors.Errorf("%w: uninitialized secret", ErrFieldMismatch)
	}

	coefficients := make([]Element, degree+1)
	coefficients[0] = secret
	for i := 1; i <= degree; i++ {
		c, err := secret.Field().Random(r)
		if err != nil {
			return nil, err
		}
		coefficients[i] = c
	}

	return &Polynomial{coefficients: coefficients}, nil
}

// Degree returns the degree of the polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Secret returns f(0).
func (p *Polynomial) Secret() Element {
	return p.coefficients[0]
}

// Evaluate returns f(x) using Horner's method.
func (p *Polynomial) Evaluate(x Element) (Element, error) {
	value := p.coefficients[p.Degree()]
	for i := p.Degree() - 1; i >= 0; i-- {
		tmp, err := value.Mul(x)
		if err != nil {
			return Element{}, err
		}
		value, err = tmp.Add(p.coefficients[i])
		if err != nil {
			return Element{}, err
		}
	}
	return value, nil
}
