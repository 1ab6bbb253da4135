// Package channel implements an in-memory transport. Sockets of the same
// transport deliver packets to each other through buffered channels, which
// makes it suitable for tests and local simulations.
package channel

import (
	"net"
	"strconv"
	"sync"
	"time"

	"go.dedis.ch/mpcmul/transport"
	"golang.org/x/xerrors"
)

// inboxSize is the number of packets a socket can hold before senders block.
const inboxSize = 1024

// firstPort is the first port assigned to ":0" addresses.
const firstPort = 10000

// NewTransport returns a new in-memory transport.
func NewTransport() transport.Transport {
	return &Transport{
		sockets:  make(map[string]*Socket),
		nextPort: firstPort,
	}
}

// Transport is an in-memory transport.
//
// - implements transport.Transport
type Transport struct {
	sync.Mutex
	sockets  map[string]*Socket
	nextPort int
}

// CreateSocket implements transport.Transport. A port 0 is replaced by a free
// port.
func (t *Transport) CreateSocket(address string) (transport.ClosableSocket, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, xerrors.Errorf("invalid address %s: %v", address, err)
	}

	t.Lock()
	defer t.Unlock()

	if port == "0" {
		for {
			address = net.JoinHostPort(host, strconv.Itoa(t.nextPort))
			t.nextPort++
			if _, found := t.sockets[address]; !found {
				break
			}
		}
	}

	if _, found := t.sockets[address]; found {
		return nil, xerrors.Errorf("address %s already in use", address)
	}

	s := &Socket{
		transport: t,
		myAddr:    address,
		inbox:     make(chan transport.Packet, inboxSize),
		closed:    make(chan struct{}),
	}
	t.sockets[address] = s

	return s, nil
}

func (t *Transport) get(address string) (*Socket, bool) {
	t.Lock()
	defer t.Unlock()

	s, found := t.sockets[address]
	return s, found
}

func (t *Transport) remove(address string) {
	t.Lock()
	defer t.Unlock()

	delete(t.sockets, address)
}

// Socket is an in-memory socket.
//
// - implements transport.ClosableSocket
type Socket struct {
	transport *Transport
	myAddr    string

	inbox     chan transport.Packet
	closed    chan struct{}
	closeOnce sync.Once

	ins  packets
	outs packets
}

// Close implements transport.ClosableSocket.
func (s *Socket) Close() error {
	err := xerrors.Errorf("socket %s already closed", s.myAddr)
	s.closeOnce.Do(func() {
		s.transport.remove(s.myAddr)
		close(s.closed)
		err = nil
	})
	return err
}

// Send implements transport.Socket. Sending to an unknown address is an
// error, unlike UDP where the packet is silently lost.
func (s *Socket) Send(dest string, pkt transport.Packet, timeout time.Duration) error {
	to, found := s.transport.get(dest)
	if !found {
		return xerrors.Errorf("no socket listening on %s", dest)
	}

	var expired <-chan time.Time
	if timeout != 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	pkt = pkt.Copy()

	select {
	case to.inbox <- pkt:
	case <-to.closed:
		return xerrors.Errorf("socket %s closed", dest)
	case <-expired:
		return transport.TimeoutError(timeout)
	}

	s.outs.add(pkt)
	return nil
}

// Recv implements transport.Socket.
func (s *Socket) Recv(timeout time.Duration) (transport.Packet, error) {
	var expired <-chan time.Time
	if timeout != 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case pkt := <-s.inbox:
		s.ins.add(pkt)
		return pkt, nil
	case <-s.closed:
		return transport.Packet{}, xerrors.Errorf("socket %s closed", s.myAddr)
	case <-expired:
		return transport.Packet{}, transport.TimeoutError(timeout)
	}
}

// GetAddress implements transport.Socket.
func (s *Socket) GetAddress() string {
	return s.myAddr
}

// GetIns implements transport.Socket.
func (s *Socket) GetIns() []transport.Packet {
	return s.ins.getAll()
}

// GetOuts implements transport.Socket.
func (s *Socket) GetOuts() []transport.Packet {
	return s.outs.getAll()
}

type packets struct {
	sync.Mutex
	data []transport.Packet
}

func (p *packets) add(pkt transport.Packet) {
	p.Lock()
	defer p.Unlock()

	p.data = append(p.data, pkt.Copy())
}

func (p *packets) getAll() []transport.Packet {
	p.Lock()
	defer p.Unlock()

	res := make([]transport.Packet, len(p.data))
	for i, pkt := range p.data {
		res[i] = pkt.Copy()
	}

	return res
}
