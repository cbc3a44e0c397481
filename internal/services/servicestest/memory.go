// Package servicestest provides in-memory implementations of the service
// collaborators for tests.
package servicestest

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/pinvent-backend/internal/models"
	"github.com/AnshRaj112/pinvent-backend/internal/services"
	"github.com/AnshRaj112/pinvent-backend/pkg/utils"
)

// UserStore is an in-memory services.UserStore.
type UserStore struct {
	mu     sync.Mutex
	hasher utils.PasswordHasher
	byID   map[primitive.ObjectID]models.User
}

func NewUserStore(hasher utils.PasswordHasher) *UserStore {
	return &UserStore{hasher: hasher, byID: make(map[primitive.ObjectID]models.User)}
}

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !u.PasswordChanged() || u.PendingPassword() == "" {
		return services.ErrPasswordRequired
	}
	email := utils.NormalizeEmail(u.Email)
	for _, existing := range s.byID {
		if existing.Email == email {
			return services.ErrDuplicateEmail
		}
	}
	hash, err := s.hasher.Hash(u.PendingPassword())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now
	u.ApplyDefaults()
	u.MarkPasswordPersisted(hash)
	s.byID[u.ID] = *u
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = utils.NormalizeEmail(email)
	for _, u := range s.byID {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *UserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, services.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[oid]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) Save(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[u.ID]
	if !ok {
		return services.ErrNotFound
	}
	if u.PasswordChanged() {
		hash, err := s.hasher.Hash(u.PendingPassword())
		if err != nil {
			return err
		}
		u.MarkPasswordPersisted(hash)
	}
	stored.Name = u.Name
	stored.Photo = u.Photo
	stored.Phone = u.Phone
	stored.Bio = u.Bio
	stored.Password = u.Password
	stored.UpdatedAt = time.Now().UTC()
	s.byID[u.ID] = stored
	return nil
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// ResetTokenRepository is an in-memory services.ResetTokenRepository.
type ResetTokenRepository struct {
	mu     sync.Mutex
	byUser map[primitive.ObjectID]models.ResetToken
}

func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{byUser: make(map[primitive.ObjectID]models.ResetToken)}
}

func (r *ResetTokenRepository) Replace(_ context.Context, t *models.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = primitive.NewObjectID()
	r.byUser[t.UserID] = *t
	return nil
}

func (r *ResetTokenRepository) Consume(_ context.Context, tokenHash string, now time.Time) (*models.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, t := range r.byUser {
		if t.TokenHash == tokenHash && !t.IsExpired(now) {
			delete(r.byUser, userID)
			return &t, nil
		}
	}
	return nil, services.ErrNotFound
}

func (r *ResetTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for userID, t := range r.byUser {
		if t.IsExpired(now) {
			delete(r.byUser, userID)
			n++
		}
	}
	return n, nil
}

// Tokens returns a snapshot of the stored tokens.
func (r *ResetTokenRepository) Tokens() []models.ResetToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ResetToken, 0, len(r.byUser))
	for _, t := range r.byUser {
		out = append(out, t)
	}
	return out
}

// ProductStore is an in-memory services.ProductStore.
type ProductStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{byID: make(map[primitive.ObjectID]models.Product)}
}

func (s *ProductStore) Insert(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	s.byID[p.ID] = *p
	return nil
}

func (s *ProductStore) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.byID {
		if p.UserID == owner {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ProductStore) FindByID(_ context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, services.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[oid]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &p, nil
}

func (s *ProductStore) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; !ok {
		return services.ErrNotFound
	}
	s.byID[p.ID] = *p
	return nil
}

func (s *ProductStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return services.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// SentMail is one message captured by Mailer.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// Mailer records messages instead of sending them. Set Err to simulate a
// delivery failure.
type Mailer struct {
	mu   sync.Mutex
	Err  error
	sent []SentMail
}

func (m *Mailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *Mailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

// Uploader returns URL for every upload, or Err when set.
type Uploader struct {
	URL   string
	Err   error
	Calls int
}

func (u *Uploader) UploadImage(_ context.Context, upload services.Upload) (string, error) {
	u.Calls++
	if u.Err != nil {
		return "", u.Err
	}
	if upload.File != nil {
		if _, err := io.Copy(io.Discard, upload.File); err != nil {
			return "", err
		}
	}
	if u.URL == "" {
		return "", errors.New("no upload url configured")
	}
	return u.URL, nil
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
