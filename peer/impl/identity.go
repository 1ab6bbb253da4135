package impl

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/xerrors"

	"go.dedis.ch/mpcmul/peer"
)

// NewIdentity returns the identity of the party owning the key, the hex
// address derived from its public key.
func NewIdentity(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

// LoadKey parses a hex encoded secp256k1 private key. An empty string
// generates a new key.
func LoadKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, xerrors.Errorf("failed to generate key: %v", err)
		}
		return key, nil
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, xerrors.Errorf("invalid private key: %v", err)
	}
	return key, nil
}

// loadIdentity makes sure the configuration has a key, and returns the
// configured identity or the one derived from the key.
func loadIdentity(conf *peer.Configuration) (string, error) {
	if conf.PrivateKey == nil {
		key, err := LoadKey("")
		if err != nil {
			return "", err
		}
		conf.PrivateKey = key
	}

	if conf.Identity != "" {
		return conf.Identity, nil
	}
	return NewIdentity(conf.PrivateKey), nil
}
