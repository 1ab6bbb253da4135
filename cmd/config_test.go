package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcmul/peer"
)

func Test_Config_Parse(t *testing.T) {
	conf, err := ParseConfig([]byte(`
host: 127.0.0.1:7001
identity: alice
participants: 3
inputs: [5, 2]
peers:
  - addr: 127.0.0.1:7002
    identity: bob
  - addr: 127.0.0.1:7003
`))
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:7001", conf.Host)
	require.Equal(t, "alice", conf.Identity)
	require.Equal(t, 1, conf.GetThreshold())
	require.Equal(t, uint64(peer.DefaultModulus), conf.Modulus)
	require.Equal(t, []uint64{5, 2}, conf.Inputs)
	require.Equal(t, []PeerInfo{
		{Addr: "127.0.0.1:7002", Identity: "bob"},
		{Addr: "127.0.0.1:7003"},
	}, conf.Peers)
}

func Test_Config_Threshold_Override(t *testing.T) {
	conf, err := ParseConfig([]byte("participants: 5\nthreshold: 0\n"))
	require.NoError(t, err)
	require.Equal(t, 0, conf.GetThreshold())
	require.Equal(t, "127.0.0.1:0", conf.Host)
}

func Test_Config_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte("participants: 0\n"))
	require.Error(t, err)

	_, err = ParseConfig([]byte("participants: 2\npeers:\n  - identity: bob\n"))
	require.Error(t, err)

	_, err = ParseConfig([]byte("participants: [\n"))
	require.Error(t, err)
}

func Test_Config_Save_Load(t *testing.T) {
	threshold := 1
	conf := &Config{
		Host:         "127.0.0.1:7001",
		Participants: 3,
		Threshold:    &threshold,
		Modulus:      peer.DefaultModulus,
		Peers:        []PeerInfo{{Addr: "127.0.0.1:7002"}},
	}

	path := filepath.Join(t.TempDir(), "party.yaml")
	require.NoError(t, conf.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, conf, loaded)
}
