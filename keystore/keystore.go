// Package keystore persists identities encrypted under a passphrase.
//
// The on-disk form is a JSON envelope. The two secret scalars are sealed with
// XChaCha20-Poly1305 under a key stretched from the passphrase with argon2id;
// the envelope header is authenticated as associated data.
package keystore

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	stealth "github.com/athanorlabs/go-stealth"
)

const (
	envelopeVersion = 1
	kdfArgon2id     = "argon2id"
	secretSize      = 32
	saltSize        = 16

	// argon2id needs at least 8 KiB per lane; more than 4 GiB is refused
	maxMemoryKB = 4 * 1024 * 1024
	fileMode        = 0o600
)

var (
	// ErrWrongPassphrase is returned when the passphrase is wrong or the
	// envelope has been modified.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted keystore")
	// ErrInvalidKeystore is returned for envelopes that cannot be read.
	ErrInvalidKeystore = errors.New("invalid keystore")
)

// Params are the argon2id cost parameters.
type Params struct {
	Time     uint32
	MemoryKB uint32
	Threads  uint8
}

// DefaultParams is used by Encrypt and Save.
var DefaultParams = Params{
	Time:     2,
	MemoryKB: 64 * 1024,
	Threads:  1,
}

type envelope struct {
	Version     int    `json:"version"`
	Curve       string `json:"curve"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// associatedData binds everything except the ciphertext to the seal.
func (e *envelope) associatedData() []byte {
	h := *e
	h.Ciphertext = nil
	b, err := json.Marshal(h)
	if err != nil {
		panic(err)
	}
	return b
}

// Encrypt seals id's secret scalars under passphrase.
func Encrypt(id *stealth.Identity, passphrase []byte) ([]byte, error) {
	return encrypt(id, passphrase, DefaultParams)
}

func encrypt(id *stealth.Identity, passphrase []byte, params Params) ([]byte, error) {
	spend := id.SpendSecret.Encode()
	defer zeroBytes(spend)
	view := id.ViewSecret.Encode()
	defer zeroBytes(view)

	plaintext := make([]byte, 0, len(spend)+len(view))
	plaintext = append(plaintext, spend...)
	plaintext = append(plaintext, view...)
	defer zeroBytes(plaintext)

	return seal(id.Curve.Name(), plaintext, passphrase, params)
}

func seal(curve string, plaintext, passphrase []byte, params Params) ([]byte, error) {
	if err := checkParams(params.Time, params.MemoryKB, params.Threads); err != nil {
		return nil, err
	}

	env := &envelope{
		Version:     envelopeVersion,
		Curve:       curve,
		KDF:         kdfArgon2id,
		KDFTime:     params.Time,
		KDFMemoryKB: params.MemoryKB,
		KDFThreads:  params.Threads,
		Salt:        make([]byte, saltSize),
		Nonce:       make([]byte, chacha20poly1305.NonceSizeX),
	}

	if _, err := rand.Read(env.Salt); err != nil {
		return nil, err
	}
	if _, err := rand.Read(env.Nonce); err != nil {
		return nil, err
	}

	key := argon2.IDKey(passphrase, env.Salt, env.KDFTime, env.KDFMemoryKB, env.KDFThreads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	env.Ciphertext = aead.Seal(nil, env.Nonce, plaintext, env.associatedData())
	return json.MarshalIndent(env, "", "  ")
}

// checkParams bounds the cost parameters read from an envelope before they
// reach argon2, which panics on zero time or threads.
func checkParams(time, memoryKB uint32, threads uint8) error {
	switch {
	case time < 1:
		return fmt.Errorf("%w: kdf time must be at least 1", ErrInvalidKeystore)
	case threads < 1:
		return fmt.Errorf("%w: kdf threads must be at least 1", ErrInvalidKeystore)
	case memoryKB < 8*uint32(threads) || memoryKB > maxMemoryKB:
		return fmt.Errorf("%w: kdf memory %d KiB out of range", ErrInvalidKeystore, memoryKB)
	}
	return nil
}

// Decrypt opens an envelope produced by Encrypt. Secrets that are not the
// canonical encoding of a scalar are rejected rather than reduced.
func Decrypt(data, passphrase []byte) (*stealth.Identity, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKeystore, err)
	}

	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidKeystore, env.Version)
	}
	if env.KDF != kdfArgon2id {
		return nil, fmt.Errorf("%w: unsupported kdf %q", ErrInvalidKeystore, env.KDF)
	}
	if len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("%w: bad nonce length", ErrInvalidKeystore)
	}
	if len(env.Salt) != saltSize {
		return nil, fmt.Errorf("%w: bad salt length", ErrInvalidKeystore)
	}
	if err := checkParams(env.KDFTime, env.KDFMemoryKB, env.KDFThreads); err != nil {
		return nil, err
	}

	curve, err := stealth.CurveByName(env.Curve)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeystore, err)
	}

	key := argon2.IDKey(passphrase, env.Salt, env.KDFTime, env.KDFMemoryKB, env.KDFThreads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, env.associatedData())
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	defer zeroBytes(plaintext)

	if len(plaintext) != 2*secretSize {
		return nil, fmt.Errorf("%w: bad secret length", ErrInvalidKeystore)
	}

	var spend, view [secretSize]byte
	defer zeroBytes(spend[:])
	defer zeroBytes(view[:])
	copy(spend[:], plaintext[:secretSize])
	copy(view[:], plaintext[secretSize:])

	if !canonical(curve, spend[:]) || !canonical(curve, view[:]) {
		return nil, fmt.Errorf("%w: non-canonical secret scalar", ErrInvalidKeystore)
	}

	return stealth.IdentityFromSecrets(curve, spend, view), nil
}

func canonical(curve stealth.Curve, b []byte) bool {
	s, err := curve.DecodeToScalar(b)
	if err != nil {
		return false
	}
	defer s.Zero()

	enc := s.Encode()
	defer zeroBytes(enc)
	return bytes.Equal(enc, b)
}

// Save encrypts id and writes it to path, replacing any existing file.
func Save(path string, id *stealth.Identity, passphrase []byte) error {
	b, err := Encrypt(id, passphrase)
	if err != nil {
		return err
	}

	return writeFile(path, b, fileMode)
}

// Load reads and decrypts the keystore at path.
func Load(path string, passphrase []byte) (*stealth.Identity, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Decrypt(b, passphrase)
}

// writeFile writes b via a temp file in the same directory, then renames it
// over path.
func writeFile(path string, b []byte, mode os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
