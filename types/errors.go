package types

import "golang.org/x/xerrors"

var (
	// ErrUnknownParticipant is returned when an identity is not part of the
	// roster.
	ErrUnknownParticipant = xerrors.New("unknown participant")

	// ErrThresholdViolation is returned when the threshold cannot be honored
	// by the number of participants (it needs 0 <= t and 2t < n).
	ErrThresholdViolation = xerrors.New("threshold violation")

	// ErrMalformedMessage is returned for messages that cannot be decoded or
	// whose content is invalid.
	ErrMalformedMessage = xerrors.New("malformed message")

	// ErrRosterMismatch is returned when a message was produced against a
	// different roster than ours.
	ErrRosterMismatch = xerrors.New("roster mismatch")

	// ErrRosterFull is returned when trying to add a participant to a complete
	// roster.
	ErrRosterFull = xerrors.New("roster full")

	// ErrSenderMismatch is returned when a share does not come from the
	// address of the party it claims to be from.
	ErrSenderMismatch = xerrors.New("sender mismatch")
)
