package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/online-course-platform/internal/config"
	"github.com/iliyamo/online-course-platform/internal/model"
	"github.com/iliyamo/online-course-platform/internal/queue"
	"github.com/iliyamo/online-course-platform/internal/repository"
	"github.com/iliyamo/online-course-platform/internal/session"
)

func testConfig() config.Config {
	return config.Config{
		Env:              "test",
		ActivationSecret: "activation-secret",
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		ActivationTTL:    5 * time.Minute,
		AccessTTL:        5 * time.Minute,
		RefreshTTL:       3 * 24 * time.Hour,
		BcryptCost:       4, // bcrypt.MinCost keeps tests fast
	}
}

// ----- user store -----

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]model.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == strings.ToLower(u.Email) {
			return repository.ErrEmailExists
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.Email = strings.ToLower(u.Email)
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := u
	return &copied, nil
}

func (s *fakeUserStore) Save(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, existing := range s.users {
		if id != u.ID && existing.Email == strings.ToLower(u.Email) {
			return repository.ErrEmailExists
		}
	}
	s.users[u.ID] = *u
	return nil
}

// ----- course store -----

type fakeCourseStore struct {
	mu      sync.Mutex
	courses map[string]model.Course
	// beforeSave runs once at the start of the next Save, letting
	// tests inject a competing writer between read and write.
	beforeSave func()
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: map[string]model.Course{}}
}

func (s *fakeCourseStore) Create(_ context.Context, c *model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Version = 1
	s.courses[c.ID] = cloneCourse(*c)
	return nil
}

func (s *fakeCourseStore) GetByID(_ context.Context, id string) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	if !ok {
		return nil, repository.ErrCourseNotFound
	}
	copied := cloneCourse(c)
	return &copied, nil
}

func (s *fakeCourseStore) List(_ context.Context) ([]*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Course, 0, len(s.courses))
	for _, c := range s.courses {
		copied := cloneCourse(c)
		out = append(out, &copied)
	}
	return out, nil
}

func (s *fakeCourseStore) Save(_ context.Context, c *model.Course) error {
	if hook := s.takeHook(); hook != nil {
		hook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.courses[c.ID]
	if !ok {
		return repository.ErrCourseNotFound
	}
	if stored.Version != c.Version {
		return repository.ErrVersionConflict
	}
	c.Version++
	s.courses[c.ID] = cloneCourse(*c)
	return nil
}

func (s *fakeCourseStore) takeHook() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	hook := s.beforeSave
	s.beforeSave = nil
	return hook
}

// cloneCourse deep-copies through JSON so stored state cannot alias
// handler-held slices.
func cloneCourse(c model.Course) model.Course {
	version := c.Version
	b, _ := json.Marshal(c)
	var out model.Course
	_ = json.Unmarshal(b, &out)
	out.Version = version
	return out
}

// ----- session store -----

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uint64][]byte
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uint64][]byte{}}
}

func (s *fakeSessionStore) Set(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.sessions[user.ID] = b
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, userID uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.sessions[userID]
	if !ok {
		return nil, session.ErrNotFound
	}
	var u model.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, session.ErrNotFound
	}
	return &u, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *fakeSessionStore) raw(userID uint64) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.sessions[userID]
	return b, ok
}

// ----- cache -----

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.entries[key]
	return b, ok
}

func (f *fakeCache) Set(_ context.Context, key string, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = payload
}

func (f *fakeCache) Invalidate(_ context.Context, keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.entries, k)
		f.invalidated = append(f.invalidated, k)
	}
}

func (f *fakeCache) CourseKey(id string) string { return "course:" + id }
func (f *fakeCache) AllCoursesKey() string      { return "course:all" }

// ----- publisher -----

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.EmailNotificationEvent
	err    error
}

func (p *fakePublisher) PublishEmailNotification(_ context.Context, ev queue.EmailNotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

// ----- mailer -----

type sentMail struct {
	To   string
	Code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendActivationCode(_ context.Context, toEmail, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: toEmail, Code: code})
	return nil
}

func (m *fakeMailer) SendAnswerNotification(_ context.Context, toEmail, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: toEmail})
	return nil
}

// ----- media uploader -----

type fakeUploader struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
}

func (u *fakeUploader) Upload(_ context.Context, folder, _ string, _ int) (model.Avatar, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads++
	id := fmt.Sprintf("%s/asset-%d", folder, u.uploads)
	return model.Avatar{PublicID: id, URL: "https://media.example/" + id}, nil
}

func (u *fakeUploader) Destroy(_ context.Context, publicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.destroyed = append(u.destroyed, publicID)
	return nil
}
