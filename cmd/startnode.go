package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/httpserver"
	"go.dedis.ch/mpcmul/peer"
	"go.dedis.ch/mpcmul/peer/impl"
	"go.dedis.ch/mpcmul/registry/standard"
	"go.dedis.ch/mpcmul/transport"
	"golang.org/x/xerrors"
)

// Node is a running party with its socket and optional HTTP server.
type Node struct {
	peer.Peer
	socket transport.ClosableSocket
	http   *httpserver.Server
}

// StartNode creates and starts the party described by the configuration,
// then contacts the known peers.
func StartNode(conf *Config, transp transport.Transport) (*Node, error) {
	socket, err := transp.CreateSocket(conf.Host)
	if err != nil {
		return nil, xerrors.Errorf("failed to create socket: %v", err)
	}

	key, err := impl.LoadKey(conf.PrivateKey)
	if err != nil {
		socket.Close()
		return nil, err
	}

	p, err := impl.NewPeer(peer.Configuration{
		Socket:          socket,
		MessageRegistry: standard.NewRegistry(),
		PrivateKey:      key,
		Identity:        conf.Identity,
		Participants:    conf.Participants,
		Threshold:       conf.GetThreshold(),
		Modulus:         conf.Modulus,
		ManualAdvance:   conf.ManualAdvance,
	})
	if err != nil {
		socket.Close()
		return nil, err
	}

	err = p.Start()
	if err != nil {
		socket.Close()
		return nil, err
	}

	node := &Node{Peer: p, socket: socket}

	for _, info := range conf.Peers {
		if info.Identity != "" {
			err = p.AddParticipant(info.Identity, info.Addr)
		} else {
			err = p.Connect(info.Addr)
		}
		if err != nil {
			log.Warn().Str("addr", info.Addr).Err(err).Msg("failed to reach peer")
		}
	}

	if conf.HTTP != "" {
		node.http = httpserver.NewServer(p)
		addr, err := node.http.Start(conf.HTTP)
		if err != nil {
			node.Stop()
			return nil, err
		}
		fmt.Println("Diagnostics on http://" + addr)
	}

	return node, nil
}

// GetAddr returns the address of the node's socket.
func (n *Node) GetAddr() string {
	return n.socket.GetAddress()
}

// Stop stops the HTTP server and the party, and closes the socket.
func (n *Node) Stop() error {
	if n.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		err := n.http.Stop(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to stop http server")
		}
	}

	err := n.Peer.Stop()
	if err != nil {
		return err
	}

	return n.socket.Close()
}

// WaitComplete blocks until every party joined or the context is done.
func (n *Node) WaitComplete(ctx context.Context, expected int) error {
	return poll(ctx, func() bool {
		return len(n.Participants()) == expected
	})
}

// WaitResult blocks until the product is reconstructed or the context is
// done.
func (n *Node) WaitResult(ctx context.Context) (uint64, error) {
	var res uint64
	err := poll(ctx, func() bool {
		v, err := n.ReconstructedResult()
		if err != nil {
			return false
		}
		res = v.Value()
		return true
	})
	return res, err
}

func poll(ctx context.Context, done func() bool) error {
	ticker := time.NewTicker(time.Millisecond * 50)
	defer ticker.Stop()

	for {
		if done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func printBanner(node *Node) {
	fmt.Println("##########################################")
	fmt.Println("######      Starting a MPC party      ####")
	fmt.Println("##########################################")
	fmt.Println("Party identity: ", node.Identity())
	fmt.Println("Party running on address: ", node.GetAddr())
	fmt.Println()
}
