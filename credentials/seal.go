package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keyLength   = 32
	nonceLength = 24
	sep         = "|" // base64(nonce)|base64(ciphertext)
)

// sealer encrypts credential values at rest with a per-install secretbox key.
type sealer struct {
	key [keyLength]byte
}

// loadOrCreateKey reads the key file, generating it on first use (0600).
func loadOrCreateKey(path string) (*sealer, error) {
	s := &sealer{}
	b, err := os.ReadFile(path)
	if err == nil {
		raw, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(string(b)))
		if decErr != nil || len(raw) != keyLength {
			return nil, fmt.Errorf("key file %s is not a base64-encoded %d byte key", path, keyLength)
		}
		copy(s.key[:], raw)
		return s, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(s.key[:])
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return s, nil
}

// seal encrypts plainText and returns base64(nonce)|base64(ciphertext).
func (s *sealer) seal(plainText string) (string, error) {
	var nonce [nonceLength]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}
	ct := secretbox.Seal(nil, []byte(plainText), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(nonce[:]) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// open decrypts a sealed value. Any malformed input yields an error; callers
// translate that into "entry not present".
func (s *sealer) open(sealed string) (string, error) {
	parts := strings.SplitN(sealed, sep, 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed sealed value")
	}
	nonceRaw, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(nonceRaw) != nonceLength {
		return "", fmt.Errorf("malformed nonce")
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("malformed ciphertext")
	}
	var nonce [nonceLength]byte
	copy(nonce[:], nonceRaw)
	plain, ok := secretbox.Open(nil, ct, &nonce, &s.key)
	if !ok {
		return "", fmt.Errorf("decryption failed")
	}
	return string(plain), nil
}
