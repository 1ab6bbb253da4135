package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/transport/udp"
	"golang.org/x/xerrors"
)

var errExit = xerrors.New("exit")

// -----------------------------------------------------------------------------
// Start CMD

// StartCMD starts a party over UDP with the interactive console.
func StartCMD(conf *Config) error {
	node, err := StartNode(conf, udp.NewUDP())
	if err != nil {
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		exitNode(node)
		os.Exit(1)
	}()

	printBanner(node)

	return performActions(node)
}

// -----------------------------------------------------------------------------
// Daemon

// RunDaemon starts a party over UDP without console. Once every party joined
// it submits the configured inputs, then waits for the product. It returns
// when the context is done.
func RunDaemon(ctx context.Context, conf *Config) error {
	node, err := StartNode(conf, udp.NewUDP())
	if err != nil {
		return err
	}
	defer node.Stop()

	printBanner(node)

	err = node.WaitComplete(ctx, conf.Participants)
	if err != nil {
		return xerrors.Errorf("roster never completed: %v", err)
	}
	log.Info().Strs("participants", node.Participants()).Msg("roster complete")

	if len(conf.Inputs) == 0 {
		log.Info().Msg("no input configured, waiting")
		<-ctx.Done()
		return nil
	}

	err = node.SubmitInputs(conf.Inputs...)
	if err != nil {
		return err
	}

	res, err := node.WaitResult(ctx)
	if err != nil {
		return xerrors.Errorf("product never reconstructed: %v", err)
	}
	fmt.Printf("The product is %d (mod %d)\n", res, conf.Modulus)

	<-ctx.Done()
	return nil
}
