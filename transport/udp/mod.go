package udp

import (
	"errors"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/transport"
	"golang.org/x/xerrors"
)

// bufSize bounds a datagram. Share messages are a few hundred bytes, the
// largest packet is a WelcomeMessage with the whole roster.
const bufSize = 65000

// NewUDP returns a new udp transport implementation.
func NewUDP() transport.Transport {
	return &UDP{}
}

// UDP implements a transport layer using UDP
//
// - implements transport.Transport
type UDP struct{}

func checkValidAddr(address string) error {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return xerrors.Errorf("invalid address %s: %v", address, err)
	}
	if net.ParseIP(host) == nil {
		return xerrors.Errorf("invalid address %s: %q is not an IP", address, host)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return xerrors.Errorf("invalid address %s: bad port", address)
	}
	return nil
}

// CreateSocket implements transport.Transport
func (n *UDP) CreateSocket(address string) (transport.ClosableSocket, error) {
	err := checkValidAddr(address)
	if err != nil {
		return nil, err
	}

	udpAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, xerrors.Errorf("failed to resolve %s: %v", address, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, xerrors.Errorf("failed to listen on %s: %v", address, err)
	}

	return &Socket{
		conn:   conn,
		myAddr: conn.LocalAddr().String(),
	}, nil
}

// Socket implements a network socket using UDP.
//
// - implements transport.Socket
// - implements transport.ClosableSocket
type Socket struct {
	sync.Mutex
	conn   *net.UDPConn
	closed bool
	myAddr string
	ins    packets
	outs   packets
}

// Close implements transport.Socket. It returns an error if already closed.
func (s *Socket) Close() error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return xerrors.Errorf("socket %s already closed", s.myAddr)
	}
	s.closed = true
	return s.conn.Close()
}

// Send implements transport.Socket
func (s *Socket) Send(dest string, pkt transport.Packet, timeout time.Duration) error {
	err := checkValidAddr(dest)
	if err != nil {
		return err
	}
	destAddr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return xerrors.Errorf("failed to resolve %s: %v", dest, err)
	}

	deadline := time.Time{}
	if timeout != 0 {
		deadline = time.Now().Add(timeout)
	}
	err = s.conn.SetWriteDeadline(deadline)
	if err != nil {
		return xerrors.Errorf("failed to set deadline: %v", err)
	}

	buf, err := pkt.Marshal()
	if err != nil {
		return xerrors.Errorf("failed to marshal packet: %v", err)
	}
	if len(buf) > bufSize {
		return xerrors.Errorf("packet of %d bytes exceeds %d", len(buf), bufSize)
	}

	_, err = s.conn.WriteToUDP(buf, destAddr)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return transport.TimeoutError(timeout)
	}
	if err != nil {
		return xerrors.Errorf("failed to send to %s: %v", dest, err)
	}

	s.outs.add(pkt)
	return nil
}

// Recv implements transport.Socket. It blocks until a packet is received, or
// the timeout is reached. In the case the timeout is reached, return a
// TimeoutErr.
func (s *Socket) Recv(timeout time.Duration) (transport.Packet, error) {
	pkt := transport.Packet{}

	deadline := time.Time{}
	if timeout != 0 {
		deadline = time.Now().Add(timeout)
	}
	err := s.conn.SetReadDeadline(deadline)
	if err != nil {
		return pkt, xerrors.Errorf("failed to set deadline: %v", err)
	}

	buffer := make([]byte, bufSize)
	size, from, err := s.conn.ReadFromUDP(buffer)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return pkt, transport.TimeoutError(timeout)
	}
	if err != nil {
		return pkt, err
	}

	err = pkt.Unmarshal(buffer[:size])
	if err != nil {
		log.Debug().Str("from", from.String()).Err(err).Msg("dropping unreadable datagram")
		return pkt, xerrors.Errorf("failed to unmarshal packet: %v", err)
	}
	if pkt.Header == nil || pkt.Msg == nil {
		return pkt, xerrors.Errorf("incomplete packet from %s", from)
	}

	s.ins.add(pkt)
	return pkt, nil
}

// GetAddress implements transport.Socket. It returns the address assigned. Can
// be useful in the case one provided a :0 address, which makes the system use a
// random free port.
func (s *Socket) GetAddress() string {
	return s.myAddr
}

// GetIns implements transport.Socket
func (s *Socket) GetIns() []transport.Packet {
	return s.ins.getAll()
}

// GetOuts implements transport.Socket
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
