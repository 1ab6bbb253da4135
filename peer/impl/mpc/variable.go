package mpc

import (
	"github.com/rs/xid"
	"go.dedis.ch/mpcmul/zp"
)

// SharedVariable is a share held by a party, together with where it comes
// from.
type SharedVariable struct {
	ID     string
	Origin string
	Value  zp.Element
}

func newVariableID() string {
	return xid.New().String()
}
