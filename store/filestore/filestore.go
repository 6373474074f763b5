package filestore

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/ttb-portal/store"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

var _ store.Store = (*FileStore)(nil)

// ErrDecrypt is returned when a sealed session file cannot be opened with the configured
// passphrase.
var ErrDecrypt = errors.New("session file could not be decrypted")

const (
	fileVersion = 1
	saltLength  = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// document is the on-disk layout. Exactly one of Values or Sealed is populated.
type document struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values,omitempty"`
	Salt    []byte            `json:"salt,omitempty"`
	Nonce   []byte            `json:"nonce,omitempty"`
	Sealed  []byte            `json:"sealed,omitempty"`
}

// FileStore keeps the whole session in a single JSON file. With a passphrase the values are
// sealed with XChaCha20-Poly1305 under an Argon2id derived key.
type FileStore struct {
	path       string
	passphrase []byte
	salt       []byte
	key        []byte // derived from passphrase and keySalt
	keySalt    []byte
	lock       sync.Mutex
}

func New(path, passphrase string) *FileStore {
	f := &FileStore{path: path}
	if passphrase != "" {
		f.passphrase = []byte(passphrase)
	}
	return f
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStore) Remove(_ context.Context, key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("[FileStore] read %s: %w", f.path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("[FileStore] decode %s: %w", f.path, err)
	}

	if doc.Sealed == nil {
		if doc.Values == nil {
			doc.Values = make(map[string]string)
		}
		return doc.Values, nil
	}

	if f.passphrase == nil {
		return nil, fmt.Errorf("[FileStore] %s is sealed and no passphrase is configured: %w", f.path, ErrDecrypt)
	}
	aead, err := chacha20poly1305.NewX(f.deriveKey(doc.Salt))
	if err != nil {
		return nil, fmt.Errorf("[FileStore] chacha20poly1305.NewX: %w", err)
	}
	plain, err := aead.Open(nil, doc.Nonce, doc.Sealed, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	f.salt = doc.Salt

	values := make(map[string]string)
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, fmt.Errorf("[FileStore] decode sealed values: %w", err)
	}
	return values, nil
}

func (f *FileStore) save(values map[string]string) error {
	doc := document{Version: fileVersion}

	if f.passphrase == nil {
		doc.Values = values
	} else {
		if f.salt == nil {
			f.salt = make([]byte, saltLength)
			if _, err := io.ReadFull(rand.Reader, f.salt); err != nil {
				return fmt.Errorf("[FileStore] generate salt: %w", err)
			}
		}
		aead, err := chacha20poly1305.NewX(f.deriveKey(f.salt))
		if err != nil {
			return fmt.Errorf("[FileStore] chacha20poly1305.NewX: %w", err)
		}
		plain, err := json.Marshal(values)
		if err != nil {
			return fmt.Errorf("[FileStore] encode values: %w", err)
		}
		nonce := make([]byte, aead.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return fmt.Errorf("[FileStore] generate nonce: %w", err)
		}
		doc.Salt = f.salt
		doc.Nonce = nonce
		doc.Sealed = aead.Seal(nil, nonce, plain, nil)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileStore] encode document: %w", err)
	}
	return writeAtomic(f.path, raw)
}

func (f *FileStore) deriveKey(salt []byte) []byte {
	if f.key == nil || !bytes.Equal(salt, f.keySalt) {
		f.key = argon2.IDKey(f.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
		f.keySalt = append([]byte(nil), salt...)
	}
	return f.key
}

// writeAtomic writes to a temp file in the target directory and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("[FileStore] mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("[FileStore] create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore] write temp: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore] chmod temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileStore] close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("[FileStore] rename: %w", err)
	}
	return nil
}
