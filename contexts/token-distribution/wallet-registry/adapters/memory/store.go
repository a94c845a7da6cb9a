package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/entities"
	domainerrors "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/errors"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/roles"
)

// Store is the in-memory repository used by tests and local runs.
type Store struct {
	mu        sync.Mutex
	users     map[qubic.Identity]entities.User
	snapshots map[qubic.Identity]entities.WalletSnapshot

	// NowFunc is swappable so tests can pin time.
	NowFunc func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:     make(map[qubic.Identity]entities.User),
		snapshots: make(map[qubic.Identity]entities.WalletSnapshot),
		NowFunc:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Now() time.Time {
	return s.NowFunc()
}

func (s *Store) GetUser(_ context.Context, wallet qubic.Identity) (entities.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[wallet]
	return user, ok, nil
}

func (s *Store) CreateUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.WalletID]; exists {
		return nil
	}
	s.users[user.WalletID] = user
	return nil
}

func (s *Store) UpdateRoles(_ context.Context, wallet qubic.Identity, set roles.Set, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[wallet]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	user.Roles = set
	user.UpdatedAt = at
	s.users[wallet] = user
	return nil
}

func (s *Store) SetRegistered(_ context.Context, wallet qubic.Identity, registered bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[wallet]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	user.Registered = registered
	user.UpdatedAt = at
	s.users[wallet] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *Store) GetSnapshot(_ context.Context, wallet qubic.Identity) (entities.WalletSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[wallet]
	return snapshot, ok, nil
}

func (s *Store) UpsertSnapshot(_ context.Context, snapshot entities.WalletSnapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.snapshots[snapshot.WalletID]
	if ok &&
		existing.QubicBal == snapshot.QubicBal &&
		existing.QearnBal == snapshot.QearnBal &&
		existing.PortalBal == snapshot.PortalBal &&
		existing.QxmrBal == snapshot.QxmrBal {
		return false, nil
	}
	snapshot.AirdropAmt = existing.AirdropAmt
	s.snapshots[snapshot.WalletID] = snapshot
	return true, nil
}

func (s *Store) SetAirdropAmount(_ context.Context, wallet qubic.Identity, amount int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[wallet]
	if !ok {
		snapshot = entities.WalletSnapshot{WalletID: wallet}
	}
	if ok && snapshot.AirdropAmt == amount {
		return false, nil
	}
	snapshot.AirdropAmt = amount
	snapshot.UpdatedAt = at
	s.snapshots[wallet] = snapshot
	return true, nil
}

func (s *Store) ListSnapshots(_ context.Context) ([]entities.WalletSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.WalletSnapshot, 0, len(s.snapshots))
	for _, snapshot := range s.snapshots {
		out = append(out, snapshot)
	}
	return out, nil
}
