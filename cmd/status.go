package cmd

import (
	"fmt"
	"strings"

	"go.dedis.ch/mpcmul/types"
)

// formatStatus renders a session snapshot for the console.
func formatStatus(status types.MPCStatus) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Party %s (ordinal %d)\n", status.Identity, status.Ordinal)
	fmt.Fprintf(&b, "Roster %s\n", shortFingerprint(status.Roster))
	for i, p := range status.Participants {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	fmt.Fprintf(&b, "Threshold %d, modulus %d\n", status.Threshold, status.Modulus)
	fmt.Fprintf(&b, "My inputs: %v, input shares: %d/%d\n", status.OwnInputs, len(status.Inputs), status.InputCount)

	for _, gate := range status.Gates {
		fmt.Fprintf(&b, "  gate %d: %s, received %v, quorum %v\n",
			gate.Index, gate.State, gate.Received, gate.Quorum)
	}

	fmt.Fprintf(&b, "Final shares: %d, opened: %t\n", len(status.FinalShares), status.Opened)
	if status.Result != "" {
		fmt.Fprintf(&b, "Result: %s\n", status.Result)
	}

	return b.String()
}

func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}
