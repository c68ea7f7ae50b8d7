package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"movie-booking/internal/dto/response"
)

// Session user yang login beserta token-nya
type Session struct {
	User  response.UserResponse `json:"user"`
	Token string                `json:"token"`
}

func (s *Session) IsAdmin() bool {
	if s == nil {
		return false
	}
	for _, r := range s.User.Roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

// SessionStore session tersimpan di file JSON, path kosong berarti hanya di memory
type SessionStore struct {
	path string

	mu      sync.RWMutex
	current *Session
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load baca session dari file. File tidak ada bukan error.
func (s *SessionStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return s.current, nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.current = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.Token == "" {
		s.current = nil
		return nil, nil
	}

	s.current = &session
	return s.current, nil
}

func (s *SessionStore) Save(session *Session) error {
	if session == nil {
		return s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		data, err := json.MarshalIndent(session, "", "  ")
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
		// tulis ke file sementara dulu supaya file lama tidak rusak kalau proses mati
		tmp := s.path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o600); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
		if err := os.Rename(tmp, s.path); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
	}

	copied := *session
	s.current = &copied
	return nil
}

func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Current session di memory, nil kalau belum login
func (s *SessionStore) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SessionStore) token() string {
	if cur := s.Current(); cur != nil {
		return cur.Token
	}
	return ""
}
