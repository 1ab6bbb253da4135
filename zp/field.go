package zp

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"

	"github.com/cronokirby/saferith"
	"golang.org/x/xerrors"
)

// primalityRounds is the number of Miller-Rabin rounds used to validate a
// modulus.
const primalityRounds = 20

// Field is the prime field Zp. All arithmetic goes through saferith so that
// share values are handled in constant time.
type Field struct {
	modulus uint64
	bits    int
	m       *saferith.Modulus
}

// NewField creates the field of integers modulo p. p must be an odd prime.
func NewField(p uint64) (*Field, error) {
	bigP := new(big.Int).SetUint64(p)
	if p < 3 || p%2 == 0 || !bigP.ProbablyPrime(primalityRounds) {
		return nil, xerrors.Errorf("%w: %d", ErrNotPrime, p)
	}

	return &Field{
		modulus: p,
		bits:    bigP.BitLen(),
		m:       saferith.ModulusFromNat(new(saferith.Nat).SetUint64(p)),
	}, nil
}

// Modulus returns p.
func (f *Field) Modulus() uint64 {
	return f.modulus
}

// Element returns v mod p.
func (f *Field) Element(v uint64) Element {
	n := new(saferith.Nat).SetUint64(v)
	return Element{v: new(saferith.Nat).Mod(n, f.m), f: f}
}

// Zero returns the additive identity.
func (f *Field) Zero() Element {
	return f.Element(0)
}

// One returns the multiplicative identity.
func (f *Field) One() Element {
	return f.Element(1)
}

// Random draws an element uniformly from [0, p). rand must be a
// cryptographically secure source; nil means crypto/rand.
func (f *Field) Random(r io.Reader) (Element, error) {
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, new(big.Int).SetUint64(f.modulus))
	if err != nil {
		return Element{}, xerrors.Errorf("failed to sample field element: %v", err)
	}
	return Element{v: new(saferith.Nat).SetBig(n, f.bits), f: f}, nil
}

// Parse reads an element from its decimal wire form. The modulus must match
// the one of the field.
func (f *Field) Parse(value, modulus string) (Element, error) {
	p, err := strconv.ParseUint(modulus, 10, 64)
	if err != nil {
		return Element{}, xerrors.Errorf("invalid modulus %q: %v", modulus, err)
	}
	if p != f.modulus {
		return Element{}, xerrors.Errorf("%w: got modulus %d, expected %d", ErrFieldMismatch, p, f.modulus)
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return Element{}, xerrors.Errorf("invalid value %q: %v", value, err)
	}
	if v >= f.modulus {
		return Element{}, xerrors.Errorf("value %d out of range for modulus %d", v, f.modulus)
	}
	return f.Element(v), nil
}

// Element is a value of Zp. It is immutable: every operation returns a new
// element.
type Element struct {
	v *saferith.Nat
	f *Field
}

// Field returns the field the element belongs to.
func (e Element) Field() *Field {
	return e.f
}

// Value returns the canonical representative in [0, p).
func (e Element) Value() uint64 {
	return e.v.Uint64()
}

// Modulus returns p.
func (e Element) Modulus() uint64 {
	return e.f.modulus
}

// IsZero tells if the element is 0.
func (e Element) IsZero() bool {
	return e.v.EqZero() == 1
}

// Equal tells if both elements have the same value in the same field.
func (e Element) Equal(o Element) bool {
	if e.f == nil || o.f == nil {
		return e.f == o.f
	}
	return e.f.modulus == o.f.modulus && e.v.Eq(o.v) == 1
}

func (e Element) check(o Element) error {
	if e.f == nil || o.f == nil {
		return xerrors.Errorf("%w: uninitialized element", ErrFieldMismatch)
	}
	if e.f.modulus != o.f.modulus {
		return xerrors.Errorf("%w: %d != %d", ErrFieldMismatch, e.f.modulus, o.f.modulus)
	}
	return nil
}

// Add returns e + o mod p.
func (e Element) Add(o Element) (Element, error) {
	if err := e.check(o); err != nil {
		return Element{}, err
	}
	return Element{v: new(saferith.Nat).ModAdd(e.v, o.v, e.f.m), f: e.f}, nil
}

// Sub returns e - o mod p.
func (e Element) Sub(o Element) (Element, error) {
	if err := e.check(o); err != nil {
		return Element{}, err
	}
	return Element{v: new(saferith.Nat).ModSub(e.v, o.v, e.f.m), f: e.f}, nil
}

// Mul returns e * o mod p.
func (e Element) Mul(o Element) (Element, error) {
	if err := e.check(o); err != nil {
		return Element{}, err
	}
	return Element{v: new(saferith.Nat).ModMul(e.v, o.v, e.f.m), f: e.f}, nil
}

// Neg returns -e mod p.
func (e Element) Neg() Element {
	return Element{v: new(saferith.Nat).ModNeg(e.v, e.f.m), f: e.f}
}

// Exp returns e^k mod p.
func (e Element) Exp(k uint64) Element {
	exp := new(saferith.Nat).SetUint64(k)
	return Element{v: new(saferith.Nat).Exp(e.v, exp, e.f.m), f: e.f}
}

// Inverse returns e^-1 mod p, computed as e^(p-2) (Fermat). The modulus is
// prime by construction of the field.
func (e Element) Inverse() (Element, error) {
	if e.IsZero() {
		return Element{}, ErrNotInvertible
	}
	return e.Exp(e.f.modulus - 2), nil
}

// Div returns e * o^-1 mod p.
func (e Element) Div(o Element) (Element, error) {
	if err := e.check(o); err != nil {
		return Element{}, err
	}
	inv, err := o.Inverse()
	if err != nil {
		return Element{}, err
	}
	return e.Mul(inv)
}

// Text returns the decimal representation of the value, as sent on the wire.
func (e Element) Text() string {
	return strconv.FormatUint(e.Value(), 10)
}

// String implements fmt.Stringer.
func (e Element) String() string {
	return e.Text() + " (mod " + strconv.FormatUint(e.f.modulus, 10) + ")"
}
