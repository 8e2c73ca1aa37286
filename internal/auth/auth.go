// Package auth keeps the optional list of Telegram users allowed to talk to the bot.
// An empty list means the bot is open to everyone.
package auth

import (
	"sort"
	"sync"
)

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

type Repository interface {
	LoadAll() ([]User, error)
	Upsert(user User) error
	Remove(userID int64) error
}

type Service struct {
	mu      sync.RWMutex
	repo    Repository
	allowed map[int64]User
}

// NewWithRepo preloads users from repo and merges the IDs configured in the environment.
func NewWithRepo(repo Repository, initial []int64) (*Service, error) {
	s := &Service{repo: repo, allowed: make(map[int64]User)}
	if repo != nil {
		users, err := repo.LoadAll()
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			s.allowed[u.ID] = u
		}
	}
	for _, id := range initial {
		if _, ok := s.allowed[id]; !ok {
			s.allowed[id] = User{ID: id}
		}
	}
	return s, nil
}

// Open reports whether no allowlist is configured.
func (s *Service) Open() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.allowed) == 0
}

func (s *Service) IsAllowed(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.allowed) == 0 {
		return true
	}
	_, ok := s.allowed[userID]
	return ok
}

func (s *Service) Allow(user User) error {
	s.mu.Lock()
	s.allowed[user.ID] = user
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Upsert(user)
	}
	return nil
}

func (s *Service) Deny(userID int64) error {
	s.mu.Lock()
	delete(s.allowed, userID)
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Remove(userID)
	}
	return nil
}

// List returns allowed users ordered by ID.
func (s *Service) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.allowed))
	for _, u := range s.allowed {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
