package mpc

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/storage"
	"go.dedis.ch/mpcmul/types"
	"go.dedis.ch/mpcmul/zp"
	"golang.org/x/xerrors"
)

var (
	// ErrNotReady is returned when a step cannot be issued yet.
	ErrNotReady = xerrors.New("not ready")

	// ErrChainComplete is returned when every step was issued.
	ErrChainComplete = xerrors.New("multiplication chain complete")

	// ErrInputSubmitted is returned when submitting a second input.
	ErrInputSubmitted = xerrors.New("input already submitted")
)

// MaxInputsPerParty is the largest number of inputs a party can submit.
const MaxInputsPerParty = 256

// inputKey is the ledger key of our input with the given sequence number.
func inputKey(seq int) string {
	return fmt.Sprintf("input/%03d", seq)
}

// Network is what a session needs from the messaging layer.
type Network interface {
	Self() string
	Participants() []string
	Index(identity string) (int, error)
	Address(identity string) (string, error)
	Fingerprint() string
	Complete() bool
	Send(to string, msg types.Message) error
	Broadcast(msg types.Message) error
}

// SessionConfig holds the parameters of a session.
type SessionConfig struct {
	Field         *zp.Field
	Participants  int
	Threshold     int
	ManualAdvance bool
	Rand          io.Reader
	Ledger        storage.KVStore
}

// Session is the state of a party in the computation of the product of all
// inputs. Every party contributes one or more inputs, and the k inputs of the
// roster are ordered by owner ordinal then sequence number. The chain has k-1
// gates: gate 0 multiplies the first two inputs, gate g multiplies the result
// of gate g-1 with input g+1. The last step opens the share of the product to
// every party.
//
// All the state is guarded by the mutex. Messages are prepared under the lock
// and sent after it is released.
type Session struct {
	sync.Mutex
	net  Network
	conf SessionConfig

	// inputs is indexed by ordinal then sequence number, slot 0 is unused. A
	// nil row means the number of inputs of that party is not known yet.
	inputs [][]*SharedVariable
	gates  map[int]*MultiplicationGate
	finals []*zp.Element

	// next is the next step to issue: steps 0..k-2 are gates, step k-1 opens
	// the product
	next   int
	opened bool
	result *zp.Element

	// deferred holds the messages received before the roster was complete,
	// waiting lists the owners of those messages that are not in the roster
	deferred []deferredMessage
	waiting  map[string]struct{}
}

type deferredMessage struct {
	from string
	msg  types.Message
}

type outbound struct {
	to  string // empty for a broadcast
	msg types.Message
}

// NewSession creates a session. The threshold must already be validated.
func NewSession(net Network, conf SessionConfig) *Session {
	if conf.Ledger == nil {
		conf.Ledger = storage.NewBasicKV()
	}

	return &Session{
		net:     net,
		conf:    conf,
		inputs:  make([][]*SharedVariable, conf.Participants+1),
		gates:   make(map[int]*MultiplicationGate),
		finals:  make([]*zp.Element, conf.Participants+1),
		waiting: make(map[string]struct{}),
	}
}

// SubmitInput shares a single input.
func (s *Session) SubmitInput(secret uint64) error {
	return s.SubmitInputs(secret)
}

// SubmitInputs splits our inputs and sends the shares, the one of ordinal i
// to the participant of ordinal i. All our inputs are submitted at once, the
// other parties learn their number from the shares.
func (s *Session) SubmitInputs(secrets ...uint64) error {
	s.Lock()

	out, err := s.submitLocked(secrets)
	if err == nil {
		out = append(out, s.autoAdvanceLocked()...)
	}

	s.Unlock()

	s.flush(out)
	return err
}

func (s *Session) submitLocked(secrets []uint64) ([]outbound, error) {
	if !s.net.Complete() {
		return nil, xerrors.Errorf("%w: roster incomplete", ErrNotReady)
	}
	if s.conf.Ledger.Len() > 0 {
		return nil, ErrInputSubmitted
	}
	if len(secrets) == 0 || len(secrets) > MaxInputsPerParty {
		return nil, xerrors.Errorf("expected between 1 and %d inputs, got %d", MaxInputsPerParty, len(secrets))
	}
	for _, secret := range secrets {
		if secret >= s.conf.Field.Modulus() {
			return nil, xerrors.Errorf("input %d out of range for modulus %d", secret, s.conf.Field.Modulus())
		}
	}

	self := s.net.Self()
	ordinal, err := s.net.Index(self)
	if err != nil {
		return nil, err
	}

	count := len(secrets)
	row := make([]*SharedVariable, count)
	out := []outbound{}

	for seq, secret := range secrets {
		value := s.conf.Field.Element(secret)
		shares, err := zp.Split(s.conf.Rand, value, s.conf.Participants, s.conf.Threshold)
		if err != nil {
			return nil, xerrors.Errorf("failed to share input: %w", err)
		}

		variable := SharedVariable{ID: newVariableID(), Origin: self, Value: value}

		err = s.conf.Ledger.Put(inputKey(seq), variable)
		if err != nil {
			return nil, xerrors.Errorf("failed to record input: %v", err)
		}

		for i, participant := range s.net.Participants() {
			share := shares[i]

			if participant == self {
				row[seq] = &SharedVariable{ID: variable.ID, Origin: self, Value: share.Value}
				continue
			}

			out = append(out, outbound{
				to: participant,
				msg: types.InputShareMessage{
					Seq:   seq,
					Count: count,
					Share: s.wireShare(variable.ID, share.Value),
				},
			})
		}
	}

	s.inputs[ordinal] = row

	log.Info().Str("party", self).Int("count", count).Msg("inputs shared")

	return out, nil
}

// AdvanceMultiplication issues the next step of the chain. Unless manual
// advance is configured, the session then keeps advancing on its own.
func (s *Session) AdvanceMultiplication() error {
	s.Lock()

	out, err := s.stepLocked()
	if err == nil {
		out = append(out, s.autoAdvanceLocked()...)
	}

	s.Unlock()

	s.flush(out)
	return err
}

// ReconstructedResult returns the product once more than t final shares are
// held.
func (s *Session) ReconstructedResult() (zp.Element, error) {
	s.Lock()
	defer s.Unlock()

	if s.result == nil {
		return zp.Element{}, xerrors.Errorf("%w: %d final shares, need more than %d",
			zp.ErrInsufficientShares, s.countFinalsLocked(), s.conf.Threshold)
	}

	return *s.result, nil
}

// Status returns a snapshot of the session.
func (s *Session) Status() types.MPCStatus {
	s.Lock()
	defer s.Unlock()

	participants := s.net.Participants()
	self := s.net.Self()
	ordinal, _ := s.net.Index(self)

	owner := func(i int) string {
		if i-1 < len(participants) {
			return participants[i-1]
		}
		return ""
	}

	status := types.MPCStatus{
		Identity:     self,
		Ordinal:      ordinal,
		Participants: participants,
		Roster:       s.net.Fingerprint(),
		Threshold:    s.conf.Threshold,
		Modulus:      s.conf.Field.Modulus(),
		OwnInputs:    make([]string, 0, s.conf.Ledger.Len()),
		Inputs:       []types.MPCShareStatus{},
		Gates:        []types.MPCGateStatus{},
		FinalShares:  []types.MPCShareStatus{},
		Opened:       s.opened,
	}

	_, status.InputSubmitted = s.conf.Ledger.Get(inputKey(0))

	s.conf.Ledger.For(func(key string, value interface{}) error {
		variable, ok := value.(SharedVariable)
		if ok {
			status.OwnInputs = append(status.OwnInputs, variable.Value.Text())
		}
		return nil
	})

	if k, known := s.inputCountLocked(); known {
		status.InputCount = k
	}

	for i, row := range s.inputs {
		for seq, input := range row {
			if input == nil {
				continue
			}
			status.Inputs = append(status.Inputs, types.MPCShareStatus{
				Owner:   owner(i),
				Ordinal: i,
				Seq:     seq,
				Value:   input.Value.Text(),
			})
		}
	}

	indices := make([]int, 0, len(s.gates))
	for g := range s.gates {
		indices = append(indices, g)
	}
	sort.Ints(indices)

	for _, g := range indices {
		gate := s.gates[g]
		gs := types.MPCGateStatus{
			Index:    g,
			State:    gate.State().String(),
			Issued:   gate.issued,
			Received: gate.Received(),
			Quorum:   gate.Quorum(),
		}
		if v, ok := gate.Value(); ok {
			gs.Value = v.Text()
		}
		status.Gates = append(status.Gates, gs)
	}

	for i, final := range s.finals {
		if final == nil {
			continue
		}
		status.FinalShares = append(status.FinalShares, types.MPCShareStatus{
			Owner:   owner(i),
			Ordinal: i,
			Value:   final.Text(),
		})
	}

	if s.result != nil {
		status.Result = s.result.Text()
	}

	return status
}

// RosterChanged replays the messages received before the roster was
// complete.
func (s *Session) RosterChanged() {
	s.Lock()
	if !s.net.Complete() || len(s.deferred) == 0 {
		s.Unlock()
		return
	}
	deferred := s.deferred
	s.deferred = nil
	s.waiting = make(map[string]struct{})
	s.Unlock()

	for _, d := range deferred {
		err := s.Handle(d.from, d.msg)
		if err != nil {
			log.Warn().Str("party", s.net.Self()).Err(err).Msgf("dropping deferred %s", d.msg.Name())
		}
	}
}

// Handle processes a share message received from the given address.
func (s *Session) Handle(from string, msg types.Message) error {
	s.Lock()

	if !s.net.Complete() {
		err := s.deferLocked(from, msg)
		s.Unlock()
		return err
	}

	var out []outbound
	var err error

	switch m := msg.(type) {
	case *types.InputShareMessage:
		err = s.handleInputLocked(from, m)
	case *types.ProductShareMessage:
		err = s.handleProductLocked(from, m)
	case *types.FinalShareMessage:
		err = s.handleFinalLocked(from, m)
	default:
		err = xerrors.Errorf("%w: unexpected %T", types.ErrMalformedMessage, msg)
	}

	if err == nil {
		out = s.autoAdvanceLocked()
	}

	s.Unlock()

	s.flush(out)
	return err
}

// deferLocked keeps a message until the roster is complete. The queue is
// bounded, and owners that did not join yet cannot outnumber the free slots
// of the roster.
func (s *Session) deferLocked(from string, msg types.Message) error {
	share, ok := shareOf(msg)
	if !ok {
		return xerrors.Errorf("%w: unexpected %T", types.ErrMalformedMessage, msg)
	}

	if len(s.deferred) >= s.maxDeferred() {
		return xerrors.Errorf("%w: %d messages already wait for the roster",
			types.ErrRosterFull, len(s.deferred))
	}

	for identity := range s.waiting {
		if _, err := s.net.Index(identity); err == nil {
			delete(s.waiting, identity)
		}
	}

	_, err := s.net.Index(share.Owner)
	if err != nil {
		_, found := s.waiting[share.Owner]
		free := s.conf.Participants - len(s.net.Participants())
		if !found && len(s.waiting) >= free {
			return xerrors.Errorf("%w: no slot left for %s", types.ErrRosterFull, share.Owner)
		}
		s.waiting[share.Owner] = struct{}{}
	}

	s.deferred = append(s.deferred, deferredMessage{from: from, msg: msg})

	return nil
}

// maxDeferred is the number of input shares the other parties can send.
func (s *Session) maxDeferred() int {
	return (s.conf.Participants - 1) * MaxInputsPerParty
}

func shareOf(msg types.Message) (types.MPCShare, bool) {
	switch m := msg.(type) {
	case *types.InputShareMessage:
		return m.Share, true
	case *types.ProductShareMessage:
		return m.Share, true
	case *types.FinalShareMessage:
		return m.Share, true
	default:
		return types.MPCShare{}, false
	}
}

func (s *Session) handleInputLocked(from string, msg *types.InputShareMessage) error {
	ordinal, value, err := s.parseShareLocked(from, msg.Share)
	if err != nil {
		return err
	}

	if msg.Count < 1 || msg.Count > MaxInputsPerParty || msg.Seq < 0 || msg.Seq >= msg.Count {
		return xerrors.Errorf("%w: input %d of %d", types.ErrMalformedMessage, msg.Seq, msg.Count)
	}

	row := s.inputs[ordinal]
	if row == nil {
		row = make([]*SharedVariable, msg.Count)
		s.inputs[ordinal] = row
	}
	if len(row) != msg.Count {
		return xerrors.Errorf("%w: %s announced %d inputs, then %d", types.ErrMalformedMessage,
			msg.Share.Owner, len(row), msg.Count)
	}

	if row[msg.Seq] != nil {
		log.Debug().Str("party", s.net.Self()).Int("ordinal", ordinal).Int("seq", msg.Seq).
			Msg("ignoring duplicate input share")
		return nil
	}
	row[msg.Seq] = &SharedVariable{ID: msg.Share.ID, Origin: msg.Share.Owner, Value: value}

	return nil
}

func (s *Session) handleProductLocked(from string, msg *types.ProductShareMessage) error {
	// until every input count is known, the chain is bounded by the largest
	// number of inputs
	gates := s.conf.Participants*MaxInputsPerParty - 1
	if k, known := s.inputCountLocked(); known {
		gates = k - 1
	}
	if msg.Gate < 0 || msg.Gate >= gates {
		return xerrors.Errorf("%w: gate %d out of chain", types.ErrMalformedMessage, msg.Gate)
	}

	ordinal, value, err := s.parseShareLocked(from, msg.Share)
	if err != nil {
		return err
	}

	gate, err := s.gateLocked(msg.Gate)
	if err != nil {
		return err
	}

	stored, err := gate.Receive(ordinal, value)
	if err != nil {
		return err
	}
	if !stored {
		log.Debug().Str("party", s.net.Self()).Int("gate", msg.Gate).Str("from", msg.Share.Owner).
			Msg("ignoring duplicate product share")
		return nil
	}

	return s.resolveLocked(gate)
}

func (s *Session) handleFinalLocked(from string, msg *types.FinalShareMessage) error {
	ordinal, value, err := s.parseShareLocked(from, msg.Share)
	if err != nil {
		return err
	}

	if s.finals[ordinal] != nil {
		return nil
	}
	s.finals[ordinal] = &value

	return s.reconstructLocked()
}

// parseShareLocked checks that a share was produced against our roster by
// the party at the sending address, and returns the ordinal of its owner with
// its value.
func (s *Session) parseShareLocked(from string, share types.MPCShare) (int, zp.Element, error) {
	if share.Roster != s.net.Fingerprint() {
		return 0, zp.Element{}, xerrors.Errorf("%w: share from %s", types.ErrRosterMismatch, share.Owner)
	}

	ordinal, err := s.net.Index(share.Owner)
	if err != nil {
		return 0, zp.Element{}, err
	}

	addr, err := s.net.Address(share.Owner)
	if err != nil {
		return 0, zp.Element{}, err
	}
	if addr != from {
		return 0, zp.Element{}, xerrors.Errorf("%w: share of %s sent by %s", types.ErrSenderMismatch,
			share.Owner, from)
	}

	value, err := s.conf.Field.Parse(share.Value, share.Modulus)
	if errors.Is(err, zp.ErrFieldMismatch) {
		return 0, zp.Element{}, err
	}
	if err != nil {
		return 0, zp.Element{}, xerrors.Errorf("%w: %v", types.ErrMalformedMessage, err)
	}

	return ordinal, value, nil
}

// inputCountLocked returns the number of inputs of the roster. It is known
// once every party announced its number of inputs.
func (s *Session) inputCountLocked() (int, bool) {
	k := 0
	for _, row := range s.inputs[1:] {
		if row == nil {
			return 0, false
		}
		k += len(row)
	}
	return k, true
}

func (s *Session) inputsCompleteLocked() bool {
	for _, row := range s.inputs[1:] {
		if row == nil {
			return false
		}
		for _, input := range row {
			if input == nil {
				return false
			}
		}
	}
	return true
}

// inputAtLocked returns our share of the i-th input of the chain.
func (s *Session) inputAtLocked(i int) (zp.Element, error) {
	for _, row := range s.inputs[1:] {
		if i < len(row) {
			if row[i] == nil {
				break
			}
			return row[i].Value, nil
		}
		i -= len(row)
	}
	return zp.Element{}, xerrors.Errorf("%w: missing input", ErrNotReady)
}

func (s *Session) countFinalsLocked() int {
	count := 0
	for _, final := range s.finals {
		if final != nil {
			count++
		}
	}
	return count
}

// gateLocked returns the gate, creating it if needed.
func (s *Session) gateLocked(index int) (*MultiplicationGate, error) {
	gate, found := s.gates[index]
	if found {
		return gate, nil
	}

	gate, err := NewMultiplicationGate(s.conf.Field, index, s.conf.Participants,
		recombinationSet(s.conf.Threshold))
	if err != nil {
		return nil, err
	}
	s.gates[index] = gate

	return gate, nil
}

func (s *Session) resolveLocked(gate *MultiplicationGate) error {
	resolved, err := gate.Resolve()
	if err != nil {
		return xerrors.Errorf("failed to resolve gate %d: %w", gate.Index(), err)
	}
	if resolved {
		log.Info().Str("party", s.net.Self()).Int("gate", gate.Index()).Msg("gate resolved")
		gatesCounter.WithLabelValues(s.net.Self()).Inc()
	}
	return nil
}

func (s *Session) reconstructLocked() error {
	if s.result != nil {
		return nil
	}

	shares := []zp.Share{}
	for i, final := range s.finals {
		if final != nil {
			shares = append(shares, zp.Share{Index: i, Value: *final})
		}
	}
	if len(shares) <= s.conf.Threshold {
		return nil
	}

	result, err := zp.ReconstructThreshold(shares, s.conf.Threshold)
	if err != nil {
		return xerrors.Errorf("failed to reconstruct: %w", err)
	}
	s.result = &result

	log.Info().Str("party", s.net.Self()).Str("result", result.String()).Msg("product reconstructed")
	resultsCounter.WithLabelValues(s.net.Self()).Inc()

	return nil
}

// stepLocked issues the next step of the chain.
func (s *Session) stepLocked() ([]outbound, error) {
	if !s.net.Complete() {
		return nil, xerrors.Errorf("%w: roster incomplete", ErrNotReady)
	}
	if !s.inputsCompleteLocked() {
		return nil, xerrors.Errorf("%w: missing inputs", ErrNotReady)
	}

	k, _ := s.inputCountLocked()
	if s.next >= k {
		return nil, ErrChainComplete
	}

	if s.next < k-1 {
		return s.issueGateLocked(s.next)
	}
	return s.openLocked(k)
}

// operandLocked returns the running product before gate g, that is the
// first input for g = 0 and the result of gate g-1 otherwise.
func (s *Session) operandLocked(g int) (zp.Element, error) {
	if g == 0 {
		return s.inputAtLocked(0)
	}

	previous, found := s.gates[g-1]
	if !found {
		return zp.Element{}, xerrors.Errorf("%w: gate %d not started", ErrNotReady, g-1)
	}
	value, ok := previous.Value()
	if !ok {
		return zp.Element{}, xerrors.Errorf("%w: gate %d not resolved", ErrNotReady, g-1)
	}
	return value, nil
}

func (s *Session) issueGateLocked(g int) ([]outbound, error) {
	a, err := s.operandLocked(g)
	if err != nil {
		return nil, err
	}
	b, err := s.inputAtLocked(g + 1)
	if err != nil {
		return nil, err
	}

	// local product, on a polynomial of degree 2t
	h, err := a.Mul(b)
	if err != nil {
		return nil, err
	}

	shares, err := zp.Split(s.conf.Rand, h, s.conf.Participants, s.conf.Threshold)
	if err != nil {
		return nil, xerrors.Errorf("failed to reshare gate %d: %w", g, err)
	}

	gate, err := s.gateLocked(g)
	if err != nil {
		return nil, err
	}
	gate.issued = true
	s.next++

	self := s.net.Self()
	id := newVariableID()

	out := []outbound{}
	for i, participant := range s.net.Participants() {
		share := shares[i]

		if participant == self {
			_, err = gate.Receive(share.Index, share.Value)
			if err != nil {
				return nil, err
			}
			continue
		}

		out = append(out, outbound{
			to: participant,
			msg: types.ProductShareMessage{
				Gate:  g,
				Share: s.wireShare(id, share.Value),
			},
		})
	}

	log.Debug().Str("party", self).Int("gate", g).Msg("gate issued")

	err = s.resolveLocked(gate)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// openLocked opens our share of the product of the k inputs. With a single
// input there is no gate and the input itself is opened.
func (s *Session) openLocked(k int) ([]outbound, error) {
	value, err := s.operandLocked(k - 1)
	if err != nil {
		return nil, err
	}

	ordinal, err := s.net.Index(s.net.Self())
	if err != nil {
		return nil, err
	}

	s.next++
	s.opened = true
	if s.finals[ordinal] == nil {
		s.finals[ordinal] = &value
	}

	log.Debug().Str("party", s.net.Self()).Msg("opening final share")

	err = s.reconstructLocked()
	if err != nil {
		return nil, err
	}

	msg := types.FinalShareMessage{Share: s.wireShare(newVariableID(), value)}
	return []outbound{{msg: msg}}, nil
}

// autoAdvanceLocked issues every step whose prerequisites hold.
func (s *Session) autoAdvanceLocked() []outbound {
	if s.conf.ManualAdvance {
		return nil
	}

	out := []outbound{}
	for {
		step, err := s.stepLocked()
		if errors.Is(err, ErrNotReady) || errors.Is(err, ErrChainComplete) {
			return out
		}
		if err != nil {
			log.Error().Str("party", s.net.Self()).Err(err).Msg("failed to advance")
			return out
		}
		out = append(out, step...)
	}
}

func (s *Session) wireShare(id string, value zp.Element) types.MPCShare {
	return types.MPCShare{
		Owner:   s.net.Self(),
		ID:      id,
		Roster:  s.net.Fingerprint(),
		Value:   value.Text(),
		Modulus: strconv.FormatUint(value.Modulus(), 10),
	}
}

// flush sends the messages. Failures are logged and never retried.
func (s *Session) flush(out []outbound) {
	for _, o := range out {
		var err error
		if o.to == "" {
			err = s.net.Broadcast(o.msg)
		} else {
			err = s.net.Send(o.to, o.msg)
		}
		if err != nil {
			log.Warn().Str("party", s.net.Self()).Str("to", o.to).Err(err).
				Msgf("failed to send %s", o.msg.Name())
		}
	}
}
