// Package auth keeps the client's only durable state: bearer tokens, user
// profiles, and local-only rating drafts, serialized to a single JSON file.
// Everything else the bot shows is an ephemeral cache of backend data.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/homebird-app/homebird/internal/domain"
)

type Profile struct {
	Name               string `json:"name,omitempty"`
	Address            string `json:"address,omitempty"`
	DefaultServiceType string `json:"defaultServiceType,omitempty"`
	AutoRefresh        bool   `json:"autoRefresh,omitempty"`
}

type userState struct {
	Token        string         `json:"authToken,omitempty"`
	Profile      Profile        `json:"userSession,omitempty"`
	RatingDrafts map[string]int `json:"ratingDrafts,omitempty"`
}

type fileState struct {
	Users map[string]*userState `json:"users"`
}

// Store is a mutex-guarded, last-writer-wins file store. Writes happen only
// on explicit user actions (login, logout, settings edits), so contention is
// not a concern; the lock just keeps concurrent handler goroutines honest.
type Store struct {
	mu    sync.RWMutex
	path  string
	state fileState
}

func Open(path string) (*Store, error) {
	s := &Store{path: path, state: fileState{Users: map[string]*userState{}}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if s.state.Users == nil {
		s.state.Users = map[string]*userState{}
	}
	return s, nil
}

// Token implements api.TokenSource. An empty token means anonymous mode.
func (s *Store) Token(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.state.Users[userID]; ok {
		return u.Token
	}
	return ""
}

func (s *Store) SetToken(userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(userID).Token = token
	return s.persist()
}

func (s *Store) ClearToken(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(userID).Token = ""
	return s.persist()
}

func (s *Store) Profile(userID string) Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.state.Users[userID]; ok {
		return u.Profile
	}
	return Profile{}
}

func (s *Store) SaveProfile(userID string, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(userID).Profile = p
	return s.persist()
}

// AutoRefresh reports the stored auto-refresh preference for a user.
func (s *Store) AutoRefresh(userID string) bool {
	return s.Profile(userID).AutoRefresh
}

// RatingDraft returns the locally saved rating for a booking, 0 if none.
func (s *Store) RatingDraft(userID, bookingID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.state.Users[userID]; ok {
		return u.RatingDrafts[bookingID]
	}
	return 0
}

func (s *Store) SaveRatingDraft(userID, bookingID string, rating int) error {
	if err := domain.ValidateRating(rating); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	if u.RatingDrafts == nil {
		u.RatingDrafts = map[string]int{}
	}
	u.RatingDrafts[bookingID] = rating
	return s.persist()
}

func (s *Store) user(userID string) *userState {
	u, ok := s.state.Users[userID]
	if !ok {
		u = &userState{}
		s.state.Users[userID] = u
	}
	return u
}

func (s *Store) persist() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}
