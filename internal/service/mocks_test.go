package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/cinevault/cinevault-api/internal/auth"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// MockUserRepository is an in-memory UserRepository. Setting an ...Err field
// makes the matching method fail.
type MockUserRepository struct {
	mu      sync.Mutex
	users   map[string]*models.User
	byEmail map[string]string

	CreateErr       error
	GetByEmailErr   error
	UpdatePhotoErr  error
	ResetFailureErr error
	ResetCodeCalls  int
	resetAttempts   map[string]int
}

func NewMockUserRepository(users ...*models.User) *MockUserRepository {
	m := &MockUserRepository{
		users:         make(map[string]*models.User),
		byEmail:       make(map[string]string),
		resetAttempts: make(map[string]int),
	}
	for _, u := range users {
		m.users[u.ID] = u
		m.byEmail[u.Email] = u.ID
	}
	return m
}

func (m *MockUserRepository) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return utils.NewDuplicateError("User", "email", user.Email)
	}
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("User", id)
	}
	clone := *u
	return &clone, nil
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetByEmailErr != nil {
		return nil, m.GetByEmailErr
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, utils.NewNotFoundError("User", email)
	}
	clone := *m.users[id]
	return &clone, nil
}

func (m *MockUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *MockUserRepository) update(id string, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockUserRepository) UpdateUsername(_ context.Context, id, username string) error {
	return m.update(id, func(u *models.User) { u.Username = username })
}

func (m *MockUserRepository) UpdateLanguage(_ context.Context, id, language string) error {
	return m.update(id, func(u *models.User) { u.PreferredLanguage = language })
}

func (m *MockUserRepository) UpdatePhotoURL(_ context.Context, id, photoURL string) error {
	if m.UpdatePhotoErr != nil {
		return m.UpdatePhotoErr
	}
	return m.update(id, func(u *models.User) { u.PhotoURL = photoURL })
}

func (m *MockUserRepository) ChangePassword(_ context.Context, id, passwordHash, salt string) error {
	return m.update(id, func(u *models.User) { u.SetPassword(passwordHash, salt) })
}

func (m *MockUserRepository) SetResetCode(_ context.Context, id, codeHash string, expiry time.Time) error {
	return m.update(id, func(u *models.User) {
		m.ResetCodeCalls++
		m.resetAttempts[id] = 0
		u.ResetCodeHash = &codeHash
		u.ResetCodeExpiry = &expiry
	})
}

func (m *MockUserRepository) ResetPassword(_ context.Context, id, passwordHash, salt string) error {
	return m.update(id, func(u *models.User) {
		u.SetPassword(passwordHash, salt)
		u.ResetCodeHash = nil
		u.ResetCodeExpiry = nil
		m.resetAttempts[id] = 0
	})
}

func (m *MockUserRepository) RecordResetFailure(_ context.Context, id string, maxAttempts int) error {
	if m.ResetFailureErr != nil {
		return m.ResetFailureErr
	}
	return m.update(id, func(u *models.User) {
		m.resetAttempts[id]++
		if m.resetAttempts[id] >= maxAttempts {
			u.ResetCodeHash = nil
			u.ResetCodeExpiry = nil
		}
	})
}

func (m *MockUserRepository) ToggleListItem(_ context.Context, id string, kind models.ListKind, ref models.MovieReference) (*models.ListsResponse, error) {
	var lists *models.ListsResponse
	err := m.update(id, func(u *models.User) {
		if kind == models.ListFavourites {
			u.Favourites = toggle(u.Favourites, ref)
		} else {
			u.Watchlist = toggle(u.Watchlist, ref)
		}
		lists = &models.ListsResponse{
			Watchlist:  append(models.MovieList{}, u.Watchlist...),
			Favourites: append(models.MovieList{}, u.Favourites...),
		}
	})
	return lists, err
}

// toggle mirrors the repository statement: drop the movie if present, else append it.
func toggle(list models.MovieList, ref models.MovieReference) models.MovieList {
	out := make(models.MovieList, 0, len(list)+1)
	found := false
	for _, m := range list {
		if m.MovieID == ref.MovieID {
			found = true
			continue
		}
		out = append(out, m)
	}
	if !found {
		out = append(out, ref)
	}
	return out
}

func (m *MockUserRepository) stored(id string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

// plainHasher is a cheap reversible stand-in for argon2.
type plainHasher struct {
	hashErr error
}

func (h plainHasher) Hash(password string) (string, string, error) {
	if h.hashErr != nil {
		return "", "", h.hashErr
	}
	return "h:" + password, "salt", nil
}

func (plainHasher) Verify(password, hash, salt string) (bool, error) {
	return hash == "h:"+password && salt == "salt", nil
}

// MockTokenIssuer returns predictable tokens.
type MockTokenIssuer struct {
	Err error
}

func (m MockTokenIssuer) GenerateToken(userID string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "token-for-" + userID, nil
}

// MockVerifier implements auth.IdentityVerifier
type MockVerifier struct {
	VerifyFunc func(ctx context.Context, token string) (*auth.GoogleIdentity, error)
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*auth.GoogleIdentity, error) {
	return m.VerifyFunc(ctx, token)
}

type sentMail struct {
	Kind      string
	To        string
	Username  string
	Code      string
	Federated bool
}

// MockMailer records messages and signals each send on Sent.
type MockMailer struct {
	mu   sync.Mutex
	Err  error
	Mail []sentMail
	Sent chan struct{}
}

func NewMockMailer() *MockMailer {
	return &MockMailer{Sent: make(chan struct{}, 10)}
}

func (m *MockMailer) record(mail sentMail) error {
	m.mu.Lock()
	m.Mail = append(m.Mail, mail)
	m.mu.Unlock()
	m.Sent <- struct{}{}
	return m.Err
}

func (m *MockMailer) SendWelcome(_ context.Context, to, username string, federated bool) error {
	return m.record(sentMail{Kind: "welcome", To: to, Username: username, Federated: federated})
}

func (m *MockMailer) SendResetCode(_ context.Context, to, username, code string) error {
	return m.record(sentMail{Kind: "reset", To: to, Username: username, Code: code})
}

func (m *MockMailer) Messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.Mail...)
}

// MockPhotoStore records saved and deleted paths.
type MockPhotoStore struct {
	SaveErr   error
	DeleteErr error
	Saved     []string
	Deleted   []string
	Prev      []string
	Content   map[string]string
}

func NewMockPhotoStore() *MockPhotoStore {
	return &MockPhotoStore{Content: make(map[string]string)}
}

func (m *MockPhotoStore) SavePhoto(_ context.Context, userID, ext, prev string, content io.Reader) (string, error) {
	m.Prev = append(m.Prev, prev)
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	rel := "uploads/profilePhotos/" + userID + "_1700000000000" + ext
	m.Saved = append(m.Saved, rel)
	m.Content[rel] = string(data)
	return rel, nil
}

func (m *MockPhotoStore) Delete(_ context.Context, rel string) error {
	m.Deleted = append(m.Deleted, rel)
	return m.DeleteErr
}

var errStore = errors.New("store unavailable")

func localUser(id, email, password string) *models.User {
	u := models.NewUser("user-"+id, email)
	u.ID = id
	if password != "" {
		u.SetPassword("h:"+password, "salt")
	}
	return u
}
