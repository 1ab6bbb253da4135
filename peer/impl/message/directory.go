package message

import (
	"encoding/binary"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/zeebo/blake3"
	"go.dedis.ch/mpcmul/types"
	"golang.org/x/xerrors"
)

// Directory is the thread-safe roster of the computation. It maps identities
// to addresses and gives every identity its ordinal: its rank in the sorted
// identities plus one. Once the expected number of parties is registered the
// roster is frozen, so ordinals never change during a computation.
type Directory struct {
	*sync.RWMutex
	expected int
	addrs    map[string]string
	sorted   []string
}

// NewDirectory returns an empty directory expecting n parties.
func NewDirectory(n int) *Directory {
	return &Directory{
		RWMutex:  &sync.RWMutex{},
		expected: n,
		addrs:    make(map[string]string),
	}
}

// Add registers a participant and returns true if it was not known. The
// address of a known participant is updated.
func (d *Directory) Add(identity, addr string) (bool, error) {
	if identity == "" {
		return false, xerrors.Errorf("%w: empty identity", types.ErrUnknownParticipant)
	}

	d.Lock()
	defer d.Unlock()

	if _, ok := d.addrs[identity]; ok {
		d.addrs[identity] = addr
		return false, nil
	}
	if len(d.sorted) >= d.expected {
		return false, xerrors.Errorf("%w: cannot add %s, %d parties already registered",
			types.ErrRosterFull, identity, d.expected)
	}

	d.addrs[identity] = addr

	i := sort.SearchStrings(d.sorted, identity)
	d.sorted = append(d.sorted, "")
	copy(d.sorted[i+1:], d.sorted[i:])
	d.sorted[i] = identity

	return true, nil
}

// Index returns the ordinal of the participant, starting at 1.
func (d *Directory) Index(identity string) (int, error) {
	d.RLock()
	defer d.RUnlock()

	i := sort.SearchStrings(d.sorted, identity)
	if i == len(d.sorted) || d.sorted[i] != identity {
		return 0, xerrors.Errorf("%w: %s", types.ErrUnknownParticipant, identity)
	}
	return i + 1, nil
}

// Participants returns the sorted identities.
func (d *Directory) Participants() []string {
	d.RLock()
	defer d.RUnlock()

	return append([]string(nil), d.sorted...)
}

// Address returns the address of the participant.
func (d *Directory) Address(identity string) (string, error) {
	d.RLock()
	defer d.RUnlock()

	addr, ok := d.addrs[identity]
	if !ok {
		return "", xerrors.Errorf("%w: %s", types.ErrUnknownParticipant, identity)
	}
	return addr, nil
}

// Members returns the participants with their addresses, in ordinal order.
func (d *Directory) Members() []types.Member {
	d.RLock()
	defer d.RUnlock()

	members := make([]types.Member, len(d.sorted))
	for i, identity := range d.sorted {
		members[i] = types.Member{Identity: identity, Addr: d.addrs[identity]}
	}
	return members
}

// Len returns the number of registered participants.
func (d *Directory) Len() int {
	d.RLock()
	defer d.RUnlock()

	return len(d.sorted)
}

// Expected returns the number of parties of the computation.
func (d *Directory) Expected() int {
	return d.expected
}

// Complete tells if all the expected parties are registered.
func (d *Directory) Complete() bool {
	return d.Len() == d.expected
}

// Fingerprint returns the hex encoded BLAKE3 digest of the sorted roster.
// Two parties with the same fingerprint assign the same ordinals.
func (d *Directory) Fingerprint() string {
	d.RLock()
	defer d.RUnlock()

	h := blake3.New()
	for _, identity := range d.sorted {
		// identities are length-prefixed so that no two rosters collide
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(identity)))
		h.Write(size[:])
		h.Write([]byte(identity))
	}

	return hex.EncodeToString(h.Sum(nil))
}
