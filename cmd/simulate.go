package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/transport/channel"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Simulate runs one party per list of inputs in-process over the in-memory
// transport and returns the product reconstructed by every party, in ordinal
// order.
func Simulate(ctx context.Context, inputs [][]uint64, threshold int, modulus uint64) ([]uint64, error) {
	n := len(inputs)
	if n == 0 {
		return nil, xerrors.New("no input")
	}

	transp := channel.NewTransport()

	nodes := make([]*Node, 0, n)
	defer func() {
		for _, node := range nodes {
			node.Stop()
		}
	}()

	for i := range inputs {
		t := threshold
		node, err := StartNode(&Config{
			Host:         "127.0.0.1:0",
			Identity:     fmt.Sprintf("party-%03d", i+1),
			Participants: n,
			Threshold:    &t,
			Modulus:      modulus,
		}, transp)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	for _, a := range nodes {
		for _, b := range nodes {
			err := a.AddParticipant(b.Identity(), b.GetAddr())
			if err != nil {
				return nil, err
			}
		}
	}

	submit := errgroup.Group{}
	for i, node := range nodes {
		node, input := node, inputs[i]
		submit.Go(func() error {
			return node.SubmitInputs(input...)
		})
	}
	err := submit.Wait()
	if err != nil {
		return nil, xerrors.Errorf("failed to submit inputs: %w", err)
	}

	results := make([]uint64, n)
	g, gctx := errgroup.WithContext(ctx)
	for i, node := range nodes {
		i, node := i, node
		g.Go(func() error {
			res, err := node.WaitResult(gctx)
			if err != nil {
				return xerrors.Errorf("%s: %v", node.Identity(), err)
			}
			results[i] = res
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		return nil, err
	}

	log.Info().Uints64("results", results).Msg("simulation done")

	return results, nil
}
