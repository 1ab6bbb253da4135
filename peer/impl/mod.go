package impl

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/peer"
	"go.dedis.ch/mpcmul/peer/impl/message"
	"go.dedis.ch/mpcmul/peer/impl/mpc"
	"go.dedis.ch/mpcmul/storage"
	"go.dedis.ch/mpcmul/types"
	"go.dedis.ch/mpcmul/zp"
	"golang.org/x/xerrors"
)

// NewPeer creates a new party. It refuses configurations whose threshold
// cannot be honored.
func NewPeer(conf peer.Configuration) (peer.Peer, error) {
	field, err := validate(&conf)
	if err != nil {
		return nil, err
	}

	identity, err := loadIdentity(&conf)
	if err != nil {
		return nil, err
	}
	conf.Identity = identity

	messageModule, err := message.NewMessageModule(&conf, identity)
	if err != nil {
		return nil, err
	}

	n := node{
		conf:      &conf,
		MPCModule: mpc.NewMPCModule(&conf, field, messageModule),
	}

	log.Info().Str("party", identity).Str("addr", conf.Socket.GetAddress()).
		Int("participants", conf.Participants).Int("threshold", conf.Threshold).
		Uint64("modulus", field.Modulus()).Msg("party created")

	return &n, nil
}

// node implements a party of the computation
//
// - implements peer.Peer
type node struct {
	conf *peer.Configuration
	*mpc.MPCModule

	stopSig context.CancelFunc
	wg      sync.WaitGroup
}

// Start implements peer.Service
func (n *node) Start() error {
	if n.stopSig != nil {
		return xerrors.Errorf("party %s already started", n.Identity())
	}

	ctx, cancel := context.WithCancel(context.Background())
	n.stopSig = cancel

	n.MessagingDaemon(ctx, &n.wg)

	return nil
}

// Stop implements peer.Service
func (n *node) Stop() error {
	if n.stopSig == nil {
		return xerrors.Errorf("party %s not started", n.Identity())
	}

	n.stopSig()
	n.wg.Wait()
	n.stopSig = nil

	return nil
}

// validate checks the configuration, fills the defaults and returns the
// field of the computation.
func validate(conf *peer.Configuration) (*zp.Field, error) {
	if conf.Socket == nil || conf.MessageRegistry == nil {
		return nil, xerrors.New("socket and message registry are required")
	}

	if conf.Participants < 1 {
		return nil, xerrors.Errorf("%w: %d participants", types.ErrThresholdViolation, conf.Participants)
	}
	if conf.Threshold < 0 || 2*conf.Threshold >= conf.Participants {
		return nil, xerrors.Errorf("%w: threshold %d with %d participants, need 0 <= t and 2t < n",
			types.ErrThresholdViolation, conf.Threshold, conf.Participants)
	}

	if conf.Modulus == 0 {
		conf.Modulus = peer.DefaultModulus
	}
	field, err := zp.NewField(conf.Modulus)
	if err != nil {
		return nil, err
	}
	if uint64(conf.Participants) >= field.Modulus() {
		return nil, xerrors.Errorf("%w: %d participants need a modulus larger than %d",
			types.ErrThresholdViolation, conf.Participants, field.Modulus())
	}

	if conf.Storage == nil {
		conf.Storage = storage.NewBasicKV()
	}

	return field, nil
}
