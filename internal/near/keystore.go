package near

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
)

var ErrKeyNotFound = errors.New("key not found")

type KeyStore interface {
	GetKey(networkID, accountID string) (KeyPair, error)
	SetKey(networkID, accountID string, kp KeyPair) error
	RemoveKey(networkID, accountID string) error
}

// credentialsFile is the near-cli credentials layout.
type credentialsFile struct {
	AccountID  string `json:"account_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	SecretKey  string `json:"secret_key,omitempty"`
}

// FileKeyStore keeps unencrypted keys in <dir>/<network>/<account>.json,
// the same place near-cli writes them after `near login`.
type FileKeyStore struct {
	dir string
}

func NewFileKeyStore(dir string) *FileKeyStore {
	return &FileKeyStore{dir: ExpandHome(dir)}
}

func (s *FileKeyStore) path(networkID, accountID string) string {
	return filepath.Join(s.dir, networkID, accountID+".json")
}

func (s *FileKeyStore) GetKey(networkID, accountID string) (KeyPair, error) {
	body, err := os.ReadFile(s.path(networkID, accountID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return KeyPair{}, fmt.Errorf("%w: %s on %s", ErrKeyNotFound, accountID, networkID)
		}
		return KeyPair{}, fmt.Errorf("os.ReadFile -> %w", err)
	}

	var creds credentialsFile
	if err = json.Unmarshal(body, &creds); err != nil {
		return KeyPair{}, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	secret := creds.PrivateKey
	if secret == "" {
		secret = creds.SecretKey
	}

	kp, err := ParseKeyPair(secret)
	if err != nil {
		return KeyPair{}, fmt.Errorf("ParseKeyPair -> %w", err)
	}

	return kp, nil
}

func (s *FileKeyStore) SetKey(networkID, accountID string, kp KeyPair) error {
	path := s.path(networkID, accountID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("os.MkdirAll -> %w", err)
	}

	body, err := json.Marshal(credentialsFile{
		AccountID:  accountID,
		PublicKey:  kp.PublicKey().String(),
		PrivateKey: kp.String(),
	})
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err = os.WriteFile(path, body, 0o600); err != nil {
		return fmt.Errorf("os.WriteFile -> %w", err)
	}

	return nil
}

func (s *FileKeyStore) RemoveKey(networkID, accountID string) error {
	err := os.Remove(s.path(networkID, accountID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove -> %w", err)
	}

	return nil
}

type InMemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]KeyPair
}

func NewInMemoryKeyStore() *InMemoryKeyStore {
	return &InMemoryKeyStore{keys: make(map[string]KeyPair)}
}

func (s *InMemoryKeyStore) GetKey(networkID, accountID string) (KeyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kp, ok := s.keys[networkID+":"+accountID]
	if !ok {
		return KeyPair{}, fmt.Errorf("%w: %s on %s", ErrKeyNotFound, accountID, networkID)
	}

	return kp, nil
}

func (s *InMemoryKeyStore) SetKey(networkID, accountID string, kp KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[networkID+":"+accountID] = kp

	return nil
}

func (s *InMemoryKeyStore) RemoveKey(networkID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, networkID+":"+accountID)

	return nil
}

// ExpandHome resolves a leading "~/" against the current user's home.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	usr, err := user.Current()
	if err != nil {
		return path
	}

	return filepath.Join(usr.HomeDir, path[2:])
}
