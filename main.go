package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cli "go.dedis.ch/mpcmul/cmd"
	"go.dedis.ch/mpcmul/peer"
)

func main() {
	var logLevel string

	command := &cobra.Command{
		Use:   "mpcmul",
		Short: "Multiply private numbers with the parties of a roster",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
			return nil
		},
		SilenceUsage: true,
	}
	command.PersistentFlags().StringVar(&logLevel, "log-level", "error", "zerolog level")

	addStartCmd(command)
	addDaemonCmd(command)
	addSimulateCmd(command)

	err := command.Execute()
	if err != nil {
		os.Exit(1)
	}
}

type partyFlags struct {
	config       string
	host         string
	identity     string
	participants int
	threshold    int
}

func (f *partyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "connection file (YAML)")
	cmd.Flags().StringVar(&f.host, "host", "127.0.0.1:0", "address to listen on")
	cmd.Flags().StringVar(&f.identity, "identity", "", "identity in the roster, derived from the key by default")
	cmd.Flags().IntVarP(&f.participants, "participants", "n", 3, "number of parties")
	cmd.Flags().IntVarP(&f.threshold, "threshold", "t", -1, "threshold, (n-1)/2 by default")
}

func (f *partyFlags) load() (*cli.Config, error) {
	if f.config != "" {
		return cli.LoadConfig(f.config)
	}

	conf := &cli.Config{
		Host:         f.host,
		Identity:     f.identity,
		Participants: f.participants,
		Modulus:      peer.DefaultModulus,
	}
	if f.threshold >= 0 {
		conf.Threshold = &f.threshold
	}
	return conf, nil
}

// addStartCmd starts a party with the interactive console
func addStartCmd(command *cobra.Command) {
	flags := partyFlags{}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start a party with interactive console",
		Long:  "Start a party with interactive console, join the others and multiply the numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := flags.load()
			if err != nil {
				return err
			}
			return cli.StartCMD(conf)
		},
	}

	flags.register(startCmd)
	command.AddCommand(startCmd)
}

// addDaemonCmd starts a party without console
func addDaemonCmd(command *cobra.Command) {
	flags := partyFlags{}
	var inputs []uint

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Start a party as daemon",
		Long:  "Start a party as daemon, submit the configured inputs once the roster is complete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := flags.load()
			if err != nil {
				return err
			}
			if len(inputs) > 0 {
				conf.Inputs = make([]uint64, len(inputs))
				for i, v := range inputs {
					conf.Inputs[i] = uint64(v)
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return cli.RunDaemon(ctx, conf)
		},
	}

	flags.register(daemonCmd)
	daemonCmd.Flags().UintSliceVar(&inputs, "inputs", nil, "private inputs, override the connection file")
	command.AddCommand(daemonCmd)
}

// addSimulateCmd runs every party in-process
func addSimulateCmd(command *cobra.Command) {
	var inputs []string
	var threshold int
	var modulus uint64
	var timeout time.Duration

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one party per list of inputs in-process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([][]uint64, len(inputs))
			for i, raw := range inputs {
				party, err := cli.ParseNumbers(raw)
				if err != nil {
					return err
				}
				values[i] = party
			}
			if threshold < 0 {
				threshold = peer.DefaultThreshold(len(values))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			results, err := cli.Simulate(ctx, values, threshold, modulus)
			if err != nil {
				return err
			}

			for i, res := range results {
				fmt.Printf("party %d: %d\n", i+1, res)
			}
			return nil
		},
	}

	simulateCmd.Flags().StringArrayVarP(&inputs, "inputs", "i", []string{"5", "7", "11"},
		"private inputs of a party, comma separated, repeated for every party")
	simulateCmd.Flags().IntVarP(&threshold, "threshold", "t", -1, "threshold, (n-1)/2 by default")
	simulateCmd.Flags().Uint64Var(&modulus, "modulus", peer.DefaultModulus, "prime modulus")
	simulateCmd.Flags().DurationVar(&timeout, "timeout", time.Second*30, "maximum duration")

	command.AddCommand(simulateCmd)
}
