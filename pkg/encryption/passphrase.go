package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// Plaintext is the result of a local-layer decryption. An empty value means
// the input was malformed, was sealed under a different secret, or failed
// authentication. Callers must check it before use.
type Plaintext struct {
	value string
	ok    bool
}

func (p Plaintext) Value() (string, bool) {
	return p.value, p.ok
}

func (p Plaintext) IsEmpty() bool {
	return !p.ok || p.value == ""
}

// PassphraseEncryption is the local symmetric envelope layer. Keys are derived
// from the process-wide secret with scrypt using a fresh salt per message, and
// the payload is sealed with AES-256-GCM.
type PassphraseEncryption struct {
	secret []byte
	n      int
}

// NewPassphraseEncryption creates the local layer for the given secret
func NewPassphraseEncryption(secret string) (*PassphraseEncryption, error) {
	if secret == "" {
		return nil, fmt.Errorf("encryption secret must not be empty")
	}
	return &PassphraseEncryption{secret: []byte(secret), n: scryptN}, nil
}

func (e *PassphraseEncryption) deriveKey(salt []byte) ([]byte, error) {
	return scrypt.Key(e.secret, salt, e.n, scryptR, scryptP, scryptKeyLen)
}

// Encrypt seals plaintext and returns base64(salt || nonce || ciphertext).
// Two encryptions of the same plaintext never produce the same output.
func (e *PassphraseEncryption) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := e.newGCM(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltLen+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt never fails; see Plaintext.
func (e *PassphraseEncryption) Decrypt(ciphertext string) Plaintext {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) < saltLen {
		return Plaintext{}
	}

	gcm, err := e.newGCM(raw[:saltLen])
	if err != nil {
		return Plaintext{}
	}

	rest := raw[saltLen:]
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return Plaintext{}
	}

	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	opened, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return Plaintext{}
	}
	return Plaintext{value: string(opened), ok: true}
}

func (e *PassphraseEncryption) newGCM(salt []byte) (cipher.AEAD, error) {
	key, err := e.deriveKey(salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
