package cmd

import (
	"os"

	"go.dedis.ch/mpcmul/peer"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Config is the connection file of a party.
//
//	host: 127.0.0.1:7001
//	identity: alice
//	participants: 3
//	inputs: [5, 2]
//	peers:
//	  - addr: 127.0.0.1:7002
//	    identity: bob
//	  - addr: 127.0.0.1:7003
type Config struct {
	Host          string     `yaml:"host"`
	Identity      string     `yaml:"identity,omitempty"`
	PrivateKey    string     `yaml:"private_key,omitempty"`
	Participants  int        `yaml:"participants"`
	Threshold     *int       `yaml:"threshold,omitempty"`
	Modulus       uint64     `yaml:"modulus,omitempty"`
	ManualAdvance bool       `yaml:"manual_advance,omitempty"`
	HTTP          string     `yaml:"http,omitempty"`
	Inputs        []uint64   `yaml:"inputs,omitempty"`
	Peers         []PeerInfo `yaml:"peers,omitempty"`
}

// PeerInfo is a known party. Without identity, the party is joined through
// the join exchange.
type PeerInfo struct {
	Addr     string `yaml:"addr"`
	Identity string `yaml:"identity,omitempty"`
}

// LoadConfig reads and validates a connection file.
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read config: %v", err)
	}

	return ParseConfig(buf)
}

// ParseConfig parses and validates a connection file.
func ParseConfig(buf []byte) (*Config, error) {
	var conf Config
	err := yaml.Unmarshal(buf, &conf)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse config: %v", err)
	}

	if conf.Host == "" {
		conf.Host = "127.0.0.1:0"
	}
	if conf.Participants < 1 {
		return nil, xerrors.Errorf("participants must be at least 1, got %d", conf.Participants)
	}
	if conf.Modulus == 0 {
		conf.Modulus = peer.DefaultModulus
	}
	for i, p := range conf.Peers {
		if p.Addr == "" {
			return nil, xerrors.Errorf("peer %d has no address", i)
		}
	}

	return &conf, nil
}

// Save writes the connection file.
func (c *Config) Save(path string) error {
	buf, err := yaml.Marshal(c)
	if err != nil {
		return xerrors.Errorf("failed to marshal config: %v", err)
	}

	err = os.WriteFile(path, buf, 0o600)
	if err != nil {
		return xerrors.Errorf("failed to write config: %v", err)
	}

	return nil
}

// GetThreshold returns the configured threshold, or the largest one the
// number of participants supports.
func (c *Config) GetThreshold() int {
	if c.Threshold != nil {
		return *c.Threshold
	}
	return peer.DefaultThreshold(c.Participants)
}
