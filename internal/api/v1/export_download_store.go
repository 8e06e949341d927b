package v1

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"sync"
	"time"
)

type exportDownload struct {
	filePath    string
	runID       string
	generatedAt time.Time
	expiresAt   time.Time
}

type exportDownloadStore struct {
	mu    sync.Mutex
	items map[string]exportDownload
	now   func() time.Time
}

func newExportDownloadStore() *exportDownloadStore {
	return &exportDownloadStore{
		items: make(map[string]exportDownload),
		now:   time.Now,
	}
}

func (s *exportDownloadStore) put(filePath, runID string, generatedAt time.Time, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	token = newRandomToken(24)
	s.items[token] = exportDownload{
		filePath:    filePath,
		runID:       runID,
		generatedAt: generatedAt,
		expiresAt:   now.Add(ttl),
	}
	return token
}

// take 토큰을 꺼내면서 삭제. 만료되었거나 없으면 false.
func (s *exportDownloadStore) take(token string) (exportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, ok := s.items[token]
	if !ok {
		return exportDownload{}, false
	}
	delete(s.items, token)
	if now.After(v.expiresAt) {
		_ = os.Remove(v.filePath)
		return exportDownload{}, false
	}
	return v, true
}

// purgeExpired 만료된 토큰과 파일 정리
func (s *exportDownloadStore) purgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeExpiredLocked(s.now())
}

func (s *exportDownloadStore) purgeExpiredLocked(now time.Time) int {
	n := 0
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			_ = os.Remove(v.filePath)
			delete(s.items, k)
			n++
		}
	}
	return n
}

func (s *exportDownloadStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
