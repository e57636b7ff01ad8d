package cache

import (
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

// memStore is a mutex-guarded map whose entries expire. A background sweep
// drops expired entries so abandoned keys do not pile up.
type memStore struct {
	mu        sync.RWMutex
	entries   map[string]memEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newMemStore(sweepEvery time.Duration) *memStore {
	s := &memStore{
		entries:  make(map[string]memEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop(sweepEvery)
	return s
}

func (s *memStore) get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (s *memStore) set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = memEntry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

// setNX stores the key only when it is absent or expired
func (s *memStore) setNX(key string, value []byte, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return false
	}
	s.entries[key] = memEntry{value: value, expiresAt: now.Add(ttl)}
	return true
}

func (s *memStore) delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *memStore) clear() {
	s.mu.Lock()
	s.entries = make(map[string]memEntry)
	s.mu.Unlock()
}

func (s *memStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *memStore) close() {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}

func (s *memStore) sweepLoop(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *memStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
