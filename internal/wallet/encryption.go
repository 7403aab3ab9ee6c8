package wallet

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed seed layout: salt(32) | memory(4) | iterations(4) | parallelism(1)
// | nonce(24) | ciphertext. The header doubles as AEAD associated data, so
// tampering with the KDF parameters fails authentication.
const (
	SaltSize   = 32
	headerSize = SaltSize + 4 + 4 + 1
)

// ErrCiphertextTooShort is returned when a keystore blob is truncated.
var ErrCiphertextTooShort = errors.New("wallet: ciphertext too short")

// EncryptionParams holds Argon2id cost parameters.
type EncryptionParams struct {
	Memory      uint32 // in KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns the Argon2id costs used for new keystores.
func DefaultParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 4,
	}
}

// deriveKey stretches the password into an XChaCha20-Poly1305 key.
func deriveKey(password, salt []byte, params EncryptionParams) []byte {
	return argon2.IDKey(
		password,
		salt,
		params.Iterations,
		params.Memory,
		params.Parallelism,
		chacha20poly1305.KeySize,
	)
}

// encodeHeader appends salt and KDF parameters in the sealed layout.
func encodeHeader(dst, salt []byte, params EncryptionParams) []byte {
	dst = append(dst, salt...)
	dst = binary.LittleEndian.AppendUint32(dst, params.Memory)
	dst = binary.LittleEndian.AppendUint32(dst, params.Iterations)
	dst = append(dst, params.Parallelism)
	return dst
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Encrypt seals data under the password using Argon2id + XChaCha20-Poly1305.
func Encrypt(data, password []byte, params EncryptionParams) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := deriveKey(password, salt, params)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	header := encodeHeader(make([]byte, 0, headerSize), salt, params)

	out := make([]byte, 0, headerSize+len(nonce)+len(data)+aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, data, header), nil
}

// Decrypt opens a blob produced by Encrypt with the given password.
func Decrypt(encrypted, password []byte) ([]byte, error) {
	nonceSize := chacha20poly1305.NonceSizeX
	minSize := headerSize + nonceSize + chacha20poly1305.Overhead
	if len(encrypted) < minSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrCiphertextTooShort, len(encrypted), minSize)
	}

	header := encrypted[:headerSize]
	salt := header[:SaltSize]
	params := EncryptionParams{
		Memory:      binary.LittleEndian.Uint32(header[SaltSize:]),
		Iterations:  binary.LittleEndian.Uint32(header[SaltSize+4:]),
		Parallelism: header[SaltSize+8],
	}
	nonce := encrypted[headerSize : headerSize+nonceSize]
	ciphertext := encrypted[headerSize+nonceSize:]

	key := deriveKey(password, salt, params)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
