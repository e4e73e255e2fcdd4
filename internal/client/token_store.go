package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Tokens 保存するトークン
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenStore トークンの保存先
type TokenStore interface {
	Load() (Tokens, error)
	Save(tokens Tokens) error
}

// MemoryTokenStore メモリ上のトークン
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens Tokens
}

// NewMemoryTokenStore MemoryTokenStoreを作成
func NewMemoryTokenStore(tokens Tokens) *MemoryTokenStore {
	return &MemoryTokenStore{tokens: tokens}
}

func (s *MemoryTokenStore) Load() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens, nil
}

func (s *MemoryTokenStore) Save(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	return nil
}

// FileTokenStore JSONファイルにトークンを保存
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore FileTokenStoreを作成
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultCredentialsPath ~/.vidtube/credentials.json
func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vidtube", "credentials.json"), nil
}

// Load ファイルがなければ空のトークンを返す
func (s *FileTokenStore) Load() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tokens Tokens
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return tokens, nil
	}
	if err != nil {
		return tokens, err
	}
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return tokens, err
	}
	return tokens, nil
}

// Save 一時ファイルに書いてから置き換える
func (s *FileTokenStore) Save(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
