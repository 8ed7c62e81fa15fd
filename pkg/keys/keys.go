package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/volumekit/pvc-inspect/pkg/errors"
)

// Pair is a single-use SSH keypair for authenticating into the inspection
// pod. The public half is injected into the pod's environment; the private
// half only ever exists in a local temporary file, which must be removed when
// the session ends.
type Pair struct {
	// PublicKey is the public key in authorized_keys format, without a
	// trailing newline.
	PublicKey string

	// PrivateKeyPath is the path to the OpenSSH-encoded private key file.
	PrivateKeyPath string
}

// Generate creates a fresh ed25519 keypair and writes the private key to a
// temporary file only readable by the current user.
func Generate() (*Pair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.WithContext("generate key", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, errors.WithContext("encode public key", err)
	}

	pemBlock, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		return nil, errors.WithContext("encode private key", err)
	}

	// os.CreateTemp creates the file with mode 0600, so the key is never
	// readable by other users, even briefly.
	keyFile, err := os.CreateTemp("", "pvc-inspect-key-")
	if err != nil {
		return nil, errors.WithContext("create key file", err)
	}

	_, err = keyFile.Write(pem.EncodeToMemory(pemBlock))
	if closeErr := keyFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(keyFile.Name())
		return nil, errors.WithContext("write key file", err)
	}

	return &Pair{
		PublicKey:      strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))),
		PrivateKeyPath: keyFile.Name(),
	}, nil
}

// Remove deletes the private key file. It is safe to call more than once.
func (pair *Pair) Remove() error {
	err := os.Remove(pair.PrivateKeyPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.WithContext("remove key file", err)
	}
	return nil
}
