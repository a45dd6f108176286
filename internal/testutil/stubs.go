package testutil

import (
	"context"
	"fmt"
	"sync"

	"chirp/internal/mail"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/storage"
)

// MediaStore is an in-memory storage.Store.
type MediaStore struct {
	mu        sync.Mutex
	seq       int
	Objects   map[string]models.ResourceType
	Destroyed []string
	// UploadErr, when set, fails every upload.
	UploadErr error
}

func NewMediaStore() *MediaStore {
	return &MediaStore{Objects: make(map[string]models.ResourceType)}
}

func (s *MediaStore) Upload(_ context.Context, in storage.UploadInput) (*models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		return nil, s.UploadErr
	}
	s.seq++
	id := fmt.Sprintf("%ss/%d", in.Kind, s.seq)
	s.Objects[id] = in.Kind
	return &models.Media{PublicID: id, URL: "/media/" + id, ResourceType: in.Kind}, nil
}

func (s *MediaStore) Destroy(_ context.Context, publicID string, kind models.ResourceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if got, ok := s.Objects[publicID]; ok && got != kind {
		return fmt.Errorf("destroy %s: stored as %s, not %s", publicID, got, kind)
	}
	delete(s.Objects, publicID)
	s.Destroyed = append(s.Destroyed, publicID)
	return nil
}

// Has reports whether publicID is still stored.
func (s *MediaStore) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[publicID]
	return ok
}

// Mailer records messages instead of sending them.
type Mailer struct {
	Sent chan mail.Message
}

func NewMailer() *Mailer {
	return &Mailer{Sent: make(chan mail.Message, 16)}
}

func (m *Mailer) Send(_ context.Context, msg mail.Message) error {
	m.Sent <- msg
	return nil
}

// Publisher records published notification events.
type Publisher struct {
	mu     sync.Mutex
	Events map[uint][]notifications.Event
	Err    error
}

func NewPublisher() *Publisher {
	return &Publisher{Events: make(map[uint][]notifications.Event)}
}

func (p *Publisher) PublishEvent(_ context.Context, userID uint, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events[userID] = append(p.Events[userID], ev)
	return p.Err
}

// For returns the events published to userID.
func (p *Publisher) For(userID uint) []notifications.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notifications.Event(nil), p.Events[userID]...)
}
