package near

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const ed25519Prefix = "ed25519:"

// KeyTypeED25519 is the borsh tag of an ed25519 key or signature.
const KeyTypeED25519 byte = 0

var ErrInvalidKey = errors.New("invalid key")

type PublicKey struct {
	Type byte
	Data [ed25519.PublicKeySize]byte
}

func ParsePublicKey(s string) (PublicKey, error) {
	if !strings.HasPrefix(s, ed25519Prefix) {
		return PublicKey{}, fmt.Errorf("%w: unsupported key type in %q", ErrInvalidKey, s)
	}

	raw, err := base58.Decode(strings.TrimPrefix(s, ed25519Prefix))
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: base58.Decode -> %v", ErrInvalidKey, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return PublicKey{}, fmt.Errorf("%w: public key is %d bytes", ErrInvalidKey, len(raw))
	}

	pk := PublicKey{Type: KeyTypeED25519}
	copy(pk.Data[:], raw)

	return pk, nil
}

func (pk PublicKey) String() string {
	return ed25519Prefix + base58.Encode(pk.Data[:])
}

func (pk PublicKey) Verify(message, signature []byte) bool {
	return ed25519.Verify(pk.Data[:], message, signature)
}

// KeyPair is an ed25519 key in the near-cli text form "ed25519:<base58>".
type KeyPair struct {
	private ed25519.PrivateKey
	public  PublicKey
}

func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("ed25519.GenerateKey -> %w", err)
	}

	return newKeyPair(priv, pub), nil
}

// ParseKeyPair accepts the 64-byte secret key form written by near-cli and
// wallets, or a bare 32-byte seed.
func ParseKeyPair(s string) (KeyPair, error) {
	if !strings.HasPrefix(s, ed25519Prefix) {
		return KeyPair{}, fmt.Errorf("%w: unsupported key type", ErrInvalidKey)
	}

	raw, err := base58.Decode(strings.TrimPrefix(s, ed25519Prefix))
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: base58.Decode -> %v", ErrInvalidKey, err)
	}

	var priv ed25519.PrivateKey
	switch len(raw) {
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(raw)
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(raw)
	default:
		return KeyPair{}, fmt.Errorf("%w: secret key is %d bytes", ErrInvalidKey, len(raw))
	}

	return newKeyPair(priv, priv.Public().(ed25519.PublicKey)), nil
}

func newKeyPair(priv ed25519.PrivateKey, pub ed25519.PublicKey) KeyPair {
	kp := KeyPair{private: priv, public: PublicKey{Type: KeyTypeED25519}}
	copy(kp.public.Data[:], pub)

	return kp
}

func (kp KeyPair) PublicKey() PublicKey {
	return kp.public
}

func (kp KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(kp.private, message)
}

func (kp KeyPair) IsZero() bool {
	return len(kp.private) == 0
}

// String returns the secret key in text form.
func (kp KeyPair) String() string {
	return ed25519Prefix + base58.Encode(kp.private)
}
