package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/SketchShifter/vidtube_backend/internal/events"
	"github.com/SketchShifter/vidtube_backend/internal/mock"
	"github.com/SketchShifter/vidtube_backend/internal/repository"

	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := mock.NewSQLiteDB()
	require.NoError(t, err)
	return repository.NewGormRepositories(db)
}

func seed(t *testing.T, repos *repository.Repositories) *mock.Fixtures {
	t.Helper()
	fx, err := mock.Seed(context.Background(), repos)
	require.NoError(t, err)
	return fx
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.CommentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.CommentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) last() events.CommentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads int
	deleted []string
}

func (s *fakeStorage) Upload(_ context.Context, file io.Reader, kind MediaKind) (*UploadedMedia, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.Copy(io.Discard, file); err != nil {
		return nil, err
	}
	s.uploads++
	id := string(kind) + "-" + string(rune('a'+s.uploads))
	return &UploadedMedia{PublicID: id, URL: "https://cdn.example/" + id}, nil
}

func (s *fakeStorage) Delete(_ context.Context, publicID string, _ MediaKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, publicID)
	return nil
}

func file(content string) io.Reader {
	return bytes.NewBufferString(content)
}
