package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// sealedPrefix marks a stored value as an envelope rather than a plain secret.
const sealedPrefix = "sealed:v1:"

type Envelope struct {
	KeyID      string
	Nonce      []byte
	Ciphertext []byte
}

// String renders the envelope as sealed:v1:<key id>:<nonce>:<ciphertext>.
func (e Envelope) String() string {
	return sealedPrefix + e.KeyID + ":" +
		base64.RawStdEncoding.EncodeToString(e.Nonce) + ":" +
		base64.RawStdEncoding.EncodeToString(e.Ciphertext)
}

func ParseEnvelope(raw string) (Envelope, error) {
	if !IsSealed(raw) {
		return Envelope{}, fmt.Errorf("value is not sealed")
	}
	parts := strings.Split(strings.TrimPrefix(raw, sealedPrefix), ":")
	if len(parts) != 3 || parts[0] == "" {
		return Envelope{}, fmt.Errorf("malformed envelope")
	}
	nonce, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return Envelope{}, fmt.Errorf("decode nonce: %w", err)
	}
	ciphertext, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return Envelope{}, fmt.Errorf("decode ciphertext: %w", err)
	}
	return Envelope{KeyID: parts[0], Nonce: nonce, Ciphertext: ciphertext}, nil
}

func IsSealed(raw string) bool {
	return strings.HasPrefix(raw, sealedPrefix)
}

type Manager struct {
	currentKeyID string
	keys         map[string][]byte
}

func NewManager(currentKeyID string, keys map[string][]byte) (*Manager, error) {
	if currentKeyID == "" {
		return nil, fmt.Errorf("current key id is empty")
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("keys map is empty")
	}
	if _, ok := keys[currentKeyID]; !ok {
		return nil, fmt.Errorf("current key id %q not found", currentKeyID)
	}
	cp := make(map[string][]byte, len(keys))
	for id, key := range keys {
		if strings.Contains(id, ":") {
			return nil, fmt.Errorf("key id %q must not contain ':'", id)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("key %q must be 32 bytes", id)
		}
		buf := make([]byte, len(key))
		copy(buf, key)
		cp[id] = buf
	}
	return &Manager{currentKeyID: currentKeyID, keys: cp}, nil
}

func (m *Manager) Encrypt(plaintext []byte) (Envelope, error) {
	aead, err := newAEAD(m.keys[m.currentKeyID])
	if err != nil {
		return Envelope{}, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("nonce: %w", err)
	}
	// The key id is bound as associated data so an envelope cannot be relabeled.
	ciphertext := aead.Seal(nil, nonce, plaintext, []byte(m.currentKeyID))

	return Envelope{
		KeyID:      m.currentKeyID,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

func (m *Manager) Decrypt(env Envelope) ([]byte, error) {
	key, ok := m.keys[env.KeyID]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", env.KeyID)
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes", aead.NonceSize())
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, []byte(env.KeyID))
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// Seal encrypts a secret with the current key and renders the envelope.
func (m *Manager) Seal(secret string) (string, error) {
	env, err := m.Encrypt([]byte(secret))
	if err != nil {
		return "", err
	}
	return env.String(), nil
}

// Open reverses Seal. Values without the sealed prefix are returned as is so
// stores written before a master key was configured keep loading.
func (m *Manager) Open(raw string) (string, error) {
	if !IsSealed(raw) {
		return raw, nil
	}
	env, err := ParseEnvelope(raw)
	if err != nil {
		return "", err
	}
	pt, err := m.Decrypt(env)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// Reseal re-encrypts a stored value under the current key.
func (m *Manager) Reseal(raw string) (string, error) {
	plain, err := m.Open(raw)
	if err != nil {
		return "", err
	}
	return m.Seal(plain)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return aead, nil
}
