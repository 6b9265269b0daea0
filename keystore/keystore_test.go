package keystore

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	stealth "github.com/athanorlabs/go-stealth"
	edwards "github.com/athanorlabs/go-stealth/ed25519"
	"github.com/athanorlabs/go-stealth/secp256k1"
)

var testParams = Params{Time: 1, MemoryKB: 1024, Threads: 1}

func testIdentity(t *testing.T, curve stealth.Curve) *stealth.Identity {
	id, err := stealth.NewIdentity(curve)
	require.NoError(t, err)
	return id
}

func TestEncryptDecrypt(t *testing.T) {
	for _, curve := range []stealth.Curve{edwards.NewCurve(), secp256k1.NewCurve()} {
		t.Run(curve.Name(), func(t *testing.T) {
			id := testIdentity(t, curve)
			pass := []byte("correct horse battery staple")

			b, err := encrypt(id, pass, testParams)
			require.NoError(t, err)
			require.False(t, bytes.Contains(b, id.SpendSecret.Encode()))

			restored, err := Decrypt(b, pass)
			require.NoError(t, err)
			require.Equal(t, curve.Name(), restored.Curve.Name())
			require.True(t, restored.MetaAddress().Equals(id.MetaAddress()))

			out, err := id.MetaAddress().Initiate()
			require.NoError(t, err)
			_, ok := restored.Recover(out.OneTimePublic, out.EphemeralPublic)
			require.True(t, ok)
		})
	}
}

func TestDecrypt_WrongPassphrase(t *testing.T) {
	b, err := encrypt(testIdentity(t, edwards.NewCurve()), []byte("right"), testParams)
	require.NoError(t, err)

	_, err = Decrypt(b, []byte("wrong"))
	require.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestDecrypt_Tampered(t *testing.T) {
	pass := []byte("pass")
	b, err := encrypt(testIdentity(t, edwards.NewCurve()), pass, testParams)
	require.NoError(t, err)

	tamper := func(fn func(env *envelope)) []byte {
		var env envelope
		require.NoError(t, json.Unmarshal(b, &env))
		fn(&env)
		out, err := json.Marshal(env)
		require.NoError(t, err)
		return out
	}

	_, err = Decrypt(tamper(func(env *envelope) { env.Ciphertext[0] ^= 1 }), pass)
	require.ErrorIs(t, err, ErrWrongPassphrase)

	_, err = Decrypt(tamper(func(env *envelope) { env.Curve = "secp256k1" }), pass)
	require.ErrorIs(t, err, ErrWrongPassphrase)

	_, err = Decrypt(tamper(func(env *envelope) { env.Curve = "p256" }), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)
	require.ErrorIs(t, err, stealth.ErrUnknownCurve)

	_, err = Decrypt(tamper(func(env *envelope) { env.Version = 2 }), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)

	_, err = Decrypt(tamper(func(env *envelope) { env.KDF = "scrypt" }), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)

	_, err = Decrypt(tamper(func(env *envelope) { env.Nonce = env.Nonce[:12] }), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)

	_, err = Decrypt(tamper(func(env *envelope) { env.Salt = env.Salt[:8] }), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)

	_, err = Decrypt(tamper(func(env *envelope) { env.KDFTime = 0 }), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)

	_, err = Decrypt(tamper(func(env *envelope) { env.KDFThreads = 0 }), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)

	_, err = Decrypt(tamper(func(env *envelope) { env.KDFMemoryKB = 4 }), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)

	_, err = Decrypt(tamper(func(env *envelope) { env.KDFMemoryKB = 1 << 31 }), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)

	_, err = Decrypt([]byte("not json"), pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)
}

func TestDecrypt_NonCanonicalSecret(t *testing.T) {
	pass := []byte("pass")

	// 2^256-1 is larger than the ed25519 group order.
	b, err := seal("ed25519", bytes.Repeat([]byte{0xff}, 64), pass, testParams)
	require.NoError(t, err)

	_, err = Decrypt(b, pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)

	b, err = seal("ed25519", make([]byte, 40), pass, testParams)
	require.NoError(t, err)

	_, err = Decrypt(b, pass)
	require.ErrorIs(t, err, ErrInvalidKeystore)
}

func TestEncrypt_InvalidParams(t *testing.T) {
	_, err := encrypt(testIdentity(t, edwards.NewCurve()), []byte("pass"), Params{Time: 0, MemoryKB: 1024, Threads: 1})
	require.ErrorIs(t, err, ErrInvalidKeystore)
}

// encodeRecorder remembers every encoding it hands out.
type encodeRecorder struct {
	stealth.Scalar
	encodings [][]byte
}

func (r *encodeRecorder) Encode() []byte {
	b := r.Scalar.Encode()
	r.encodings = append(r.encodings, b)
	return b
}

func TestEncrypt_WipesEncodings(t *testing.T) {
	curve := edwards.NewCurve()
	id := testIdentity(t, curve)

	spend := &encodeRecorder{Scalar: id.SpendSecret}
	view := &encodeRecorder{Scalar: id.ViewSecret}
	wrapped := &stealth.Identity{
		Curve:       curve,
		SpendSecret: spend,
		ViewSecret:  view,
		SpendPublic: id.SpendPublic,
		ViewPublic:  id.ViewPublic,
	}

	pass := []byte("pass")
	b, err := encrypt(wrapped, pass, testParams)
	require.NoError(t, err)

	require.NotEmpty(t, spend.encodings)
	require.NotEmpty(t, view.encodings)
	for _, enc := range append(spend.encodings, view.encodings...) {
		require.Equal(t, make([]byte, len(enc)), enc)
	}

	restored, err := Decrypt(b, pass)
	require.NoError(t, err)
	require.True(t, restored.MetaAddress().Equals(id.MetaAddress()))
}

func TestSaveLoad(t *testing.T) {
	saved := DefaultParams
	DefaultParams = testParams
	t.Cleanup(func() { DefaultParams = saved })

	path := filepath.Join(t.TempDir(), "identity.json")
	id := testIdentity(t, edwards.NewCurve())
	pass := []byte("pass")

	require.NoError(t, Save(path, id, pass))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(fileMode), info.Mode().Perm())

	restored, err := Load(path, pass)
	require.NoError(t, err)
	require.True(t, restored.MetaAddress().Equals(id.MetaAddress()))

	// overwrite in place
	other := testIdentity(t, edwards.NewCurve())
	require.NoError(t, Save(path, other, pass))
	restored, err = Load(path, pass)
	require.NoError(t, err)
	require.True(t, restored.MetaAddress().Equals(other.MetaAddress()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), pass)
	require.ErrorIs(t, err, os.ErrNotExist)
}
