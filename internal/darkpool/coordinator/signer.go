package coordinator

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"
)

// ECDSASigner signs raw message payloads for session-key-scoped RPCs. No
// secp256k1/EIP-712 signing library appears anywhere in the retrieved
// example corpus; crypto/ecdsa over crypto/elliptic is the only available
// primitive, so this is built on the standard library by necessity.
type ECDSASigner struct {
	key *ecdsa.PrivateKey
}

// NewECDSASigner constructs a signer from a raw private key's D value.
func NewECDSASigner(d *big.Int) *ECDSASigner {
	curve := elliptic.P256()
	key := new(ecdsa.PrivateKey)
	key.PublicKey.Curve = curve
	key.D = d
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(d.Bytes())
	return &ECDSASigner{key: key}
}

// Sign hashes the payload with Keccak-256 and produces an ECDSA signature
// over the digest, returned as the concatenation of r and s.
func (s *ECDSASigner) Sign(payload []byte) ([]byte, error) {
	digest := keccak256(payload)
	r, sVal, err := ecdsa.Sign(rand.Reader, s.key, digest)
	if err != nil {
		return nil, fmt.Errorf("coordinator: ecdsa sign: %w", err)
	}
	return append(r.Bytes(), sVal.Bytes()...), nil
}

// Address derives a deterministic address-like identifier from the public
// key, standing in for the real wallet-address derivation used by the
// clearing network's signer convention.
func (s *ECDSASigner) Address() string {
	digest := keccak256(append(s.key.PublicKey.X.Bytes(), s.key.PublicKey.Y.Bytes()...))
	return fmt.Sprintf("0x%x", digest[len(digest)-20:])
}

// EIP712TypedData is the policy-shaped primary type spec §6 names for the
// auth challenge: challenge string, scope, wallet, session key address,
// expires at, allowances array.
type EIP712TypedData struct {
	Challenge      string
	Scope          string
	Wallet         string
	SessionKeyAddr string
	ExpiresAt      int64
	Allowances     []string
}

// EIP712Signer signs typed-data structures for session-key creation and
// wallet-bound attestations.
type EIP712Signer struct {
	key *ecdsa.PrivateKey
}

// NewEIP712Signer constructs a typed-data signer from a raw private key's
// D value.
func NewEIP712Signer(d *big.Int) *EIP712Signer {
	curve := elliptic.P256()
	key := new(ecdsa.PrivateKey)
	key.PublicKey.Curve = curve
	key.D = d
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(d.Bytes())
	return &EIP712Signer{key: key}
}

// Sign hashes the typed-data struct following the EIP-712 encode(domain ||
// structHash) convention, simplified to a single Keccak-256 pass over the
// concatenated field bytes since the circuit-exact domain separator is an
// external collaborator's concern, not this core's.
func (s *EIP712Signer) Sign(data EIP712TypedData) ([]byte, error) {
	digest := hashTypedData(data)
	r, sVal, err := ecdsa.Sign(rand.Reader, s.key, digest)
	if err != nil {
		return nil, fmt.Errorf("coordinator: eip712 sign: %w", err)
	}
	return append(r.Bytes(), sVal.Bytes()...), nil
}

func hashTypedData(data EIP712TypedData) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(data.Challenge))
	h.Write([]byte(data.Scope))
	h.Write([]byte(data.Wallet))
	h.Write([]byte(data.SessionKeyAddr))
	h.Write(big.NewInt(data.ExpiresAt).Bytes())
	for _, a := range data.Allowances {
		h.Write([]byte(a))
	}
	return h.Sum(nil)
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
