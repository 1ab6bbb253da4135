package unit

import (
	"go.dedis.ch/mpcmul/peer"
	"go.dedis.ch/mpcmul/peer/impl"
)

var peerFac peer.Factory = impl.NewPeer
