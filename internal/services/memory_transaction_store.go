package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/limbahku/backend/internal/models"
)

// MemoryTransactionStore is an in-memory TransactionStore for local
// development and tests. Watch subscribers get the current snapshot on
// subscribe and a fresh one after every mutation; a slow consumer only ever
// misses intermediate snapshots, never the latest.
type MemoryTransactionStore struct {
	mu      sync.RWMutex
	txs     map[string]*models.Transaction
	subs    map[int]*txSubscriber
	nextSub int
}

type txSubscriber struct {
	userID string
	role   string
	ch     chan []models.Transaction
}

func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{
		txs:  make(map[string]*models.Transaction),
		subs: make(map[int]*txSubscriber),
	}
}

func (s *MemoryTransactionStore) Insert(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txCopy := *tx
	s.txs[tx.ID] = &txCopy
	s.notifyLocked()
	return nil
}

func (s *MemoryTransactionStore) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.txs[id]
	if !exists {
		return nil, ErrTransactionNotFound
	}
	txCopy := *tx
	return &txCopy, nil
}

func (s *MemoryTransactionStore) ListByUser(ctx context.Context, userID, role string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(userID, role), nil
}

func (s *MemoryTransactionStore) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, notes string, at time.Time) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.txs[id]
	if !exists {
		return nil, ErrTransactionNotFound
	}

	applyStatusStamp(tx, status, notes, at)
	s.notifyLocked()

	txCopy := *tx
	return &txCopy, nil
}

func (s *MemoryTransactionStore) WatchByUser(ctx context.Context, userID, role string) (<-chan []models.Transaction, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	sub := &txSubscriber{
		userID: userID,
		role:   role,
		ch:     make(chan []models.Transaction, 1),
	}
	s.subs[id] = sub

	// Initial snapshot so new views render without waiting for a change.
	sub.ch <- s.snapshotLocked(userID, role)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(sub.ch)
		})
	}
	return sub.ch, unsubscribe, nil
}

// notifyLocked pushes a fresh snapshot to every subscriber. The 1-slot buffer
// is drained first so a stale pending snapshot is replaced, not queued behind.
func (s *MemoryTransactionStore) notifyLocked() {
	for _, sub := range s.subs {
		snap := s.snapshotLocked(sub.userID, sub.role)
		select {
		case sub.ch <- snap:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- snap
		}
	}
}

func (s *MemoryTransactionStore) snapshotLocked(userID, role string) []models.Transaction {
	out := make([]models.Transaction, 0)
	for _, tx := range s.txs {
		if role == models.RoleBuyer && tx.ReceiverID == userID {
			out = append(out, *tx)
		} else if role != models.RoleBuyer && tx.SellerID == userID {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}
