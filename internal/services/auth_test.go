package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/entities"
	"github.com/abikoy/ddu-rims/pkg/config"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/types"
	"github.com/abikoy/ddu-rims/pkg/utils"
)

// stubUserRepo keeps users in memory for service tests.
type stubUserRepo struct {
	users  map[uint64]*entities.User
	nextID uint64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uint64]*entities.User), nextID: 1}
}

func (s *stubUserRepo) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	out := make([]entities.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, uint64(len(out)), nil
}

func (s *stubUserRepo) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserRepo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *stubUserRepo) CreateUser(ctx context.Context, entity *entities.User) (*entities.User, error) {
	for _, u := range s.users {
		if u.Email == entity.Email {
			return nil, apperrors.ErrEmailExists
		}
	}
	created := *entity
	created.ID = s.nextID
	s.nextID++
	s.users[created.ID] = &created
	copied := created
	return &copied, nil
}

func (s *stubUserRepo) UpdateUser(ctx context.Context, id uint64, updates map[string]interface{}) (*entities.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if v, ok := updates["full_name"].(string); ok {
		u.FullName = v
	}
	if v, ok := updates["password"].(string); ok {
		u.Password = v
	}
	if v, ok := updates["department"].(string); ok {
		u.Department = v
	}
	if v, ok := updates["role"].(string); ok {
		u.Role = v
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserRepo) ApproveUser(ctx context.Context, id uint64, approverID uint64) (*entities.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u.IsApproved = true
	copied := *u
	return &copied, nil
}

func (s *stubUserRepo) DeleteUser(ctx context.Context, id uint64) error {
	if _, ok := s.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, userID uint64, newPasswordHash string) error {
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Password = newPasswordHash
	return nil
}

// stubCache is a map-backed cache; missing keys return an error the way
// redis.Nil does.
type stubCache struct {
	values map[string]string
}

func newStubCache() *stubCache {
	return &stubCache{values: make(map[string]string)}
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", errors.New("cache: key missing")
	}
	return v, nil
}

func (s *stubCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	switch v := value.(type) {
	case string:
		s.values[key] = v
	case uint64:
		s.values[key] = strconv.FormatUint(v, 10)
	default:
		s.values[key] = "1"
	}
	return nil
}

func (s *stubCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *stubCache) Incr(ctx context.Context, key string) (int64, error) {
	n, _ := strconv.ParseInt(s.values[key], 10, 64)
	n++
	s.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (s *stubCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	_, ok := s.values[key]
	return ok, nil
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		MaxLoginAttempts: 5,
		LockoutDuration:  time.Minute * 15,
		ResetTokenTTL:    time.Minute * 15,
	}
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password, role string, approved bool) *entities.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u, err := repo.CreateUser(context.Background(), &entities.User{
		FullName:   "Test User",
		Email:      email,
		Password:   hash,
		Department: authz.DepartmentDDU,
		Role:       role,
		IsApproved: approved,
	})
	require.NoError(t, err)
	return u
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "staff@ddu.edu.et", "secret-pass", authz.RoleStaff, true)
	svc := NewAuthService(repo, newStubCache(), zap.NewNop(), testAuthConfig())

	user, err := svc.Login(context.Background(), dto.LoginDTO{Email: "staff@ddu.edu.et", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "staff@ddu.edu.et", user.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "staff@ddu.edu.et", "secret-pass", authz.RoleStaff, true)
	svc := NewAuthService(repo, newStubCache(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), dto.LoginDTO{Email: "staff@ddu.edu.et", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), newStubCache(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), dto.LoginDTO{Email: "nobody@ddu.edu.et", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginUnapprovedAccount(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "pending@ddu.edu.et", "secret-pass", authz.RoleStaff, false)
	svc := NewAuthService(repo, newStubCache(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), dto.LoginDTO{Email: "pending@ddu.edu.et", Password: "secret-pass"})
	assert.ErrorIs(t, err, apperrors.ErrAccountPendingApproval)
}

func TestLoginUnapprovedAdminStillAllowed(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "admin@ddu.edu.et", "secret-pass", authz.RoleAdmin, false)
	svc := NewAuthService(repo, newStubCache(), zap.NewNop(), testAuthConfig())

	user, err := svc.Login(context.Background(), dto.LoginDTO{Email: "admin@ddu.edu.et", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAdmin, user.Role)
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "staff@ddu.edu.et", "secret-pass", authz.RoleStaff, true)
	cache := newStubCache()
	svc := NewAuthService(repo, cache, zap.NewNop(), testAuthConfig())

	for i := 0; i < 5; i++ {
		_, err := svc.Login(context.Background(), dto.LoginDTO{Email: "staff@ddu.edu.et", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	// Even the right password is rejected while the lockout holds.
	_, err := svc.Login(context.Background(), dto.LoginDTO{Email: "staff@ddu.edu.et", Password: "secret-pass"})
	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)
}

func TestSignupDefaultsToUnapprovedStaff(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, newStubCache(), zap.NewNop(), testAuthConfig())

	user, err := svc.Signup(context.Background(), dto.SignupDTO{
		FullName:   "Abel Koy",
		Email:      "Abel.Koy@DDU.edu.et",
		Password:   "secret-pass",
		Department: "ddu",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, authz.RoleStaff, user.Role)
	assert.Equal(t, "abel.koy@ddu.edu.et", user.Email)
	assert.Equal(t, authz.DepartmentDDU, user.Department)
	assert.False(t, user.IsApproved)
}

func TestSignupByAdminAutoApproves(t *testing.T) {
	repo := newStubUserRepo()
	admin := seedUser(t, repo, "admin@ddu.edu.et", "secret-pass", authz.RoleAdmin, true)
	svc := NewAuthService(repo, newStubCache(), zap.NewNop(), testAuthConfig())

	registrar := &authz.Identity{ID: admin.ID, Role: authz.RoleAdmin, Department: authz.DepartmentDDU}
	user, err := svc.Signup(context.Background(), dto.SignupDTO{
		FullName:   "New Manager",
		Email:      "manager@ddu.edu.et",
		Password:   "secret-pass",
		Department: "IOT",
		Role:       "iotAssetManager",
	}, registrar)
	require.NoError(t, err)

	assert.True(t, user.IsApproved)
	assert.Equal(t, authz.RoleAssetManager, user.Role)
	assert.Equal(t, authz.DepartmentIOT, user.Department)
	require.True(t, user.RegisteredBy.Valid)
	assert.Equal(t, int64(admin.ID), user.RegisteredBy.Int64)
}

func TestSignupAdminRoleRequiresAdminRegistrar(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), newStubCache(), zap.NewNop(), testAuthConfig())

	_, err := svc.Signup(context.Background(), dto.SignupDTO{
		FullName:   "Wannabe",
		Email:      "wannabe@ddu.edu.et",
		Password:   "secret-pass",
		Department: "DDU",
		Role:       "admin",
	}, nil)
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 403, httpErr.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "taken@ddu.edu.et", "secret-pass", authz.RoleStaff, true)
	svc := NewAuthService(repo, newStubCache(), zap.NewNop(), testAuthConfig())

	_, err := svc.Signup(context.Background(), dto.SignupDTO{
		FullName:   "Other",
		Email:      "taken@ddu.edu.et",
		Password:   "secret-pass",
		Department: "DDU",
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)
}

func TestResetPasswordRoundTrip(t *testing.T) {
	repo := newStubUserRepo()
	user := seedUser(t, repo, "staff@ddu.edu.et", "old-pass", authz.RoleStaff, true)
	cache := newStubCache()
	svc := NewAuthService(repo, cache, zap.NewNop(), testAuthConfig())

	require.NoError(t, svc.ForgotPassword(context.Background(), dto.ForgotPasswordDTO{Email: "staff@ddu.edu.et"}))

	// Pull the issued token out of the cache the way the email would.
	var token string
	for key := range cache.values {
		if len(key) > len("reset_token:") && key[:len("reset_token:")] == "reset_token:" {
			token = key[len("reset_token:"):]
		}
	}
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(context.Background(), dto.ResetPasswordDTO{Token: token, NewPassword: "new-pass"}))

	stored, err := repo.FindUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, utils.ComparePasswords(stored.Password, "new-pass"))

	// The token is single-use.
	err = svc.ResetPassword(context.Background(), dto.ResetPasswordDTO{Token: token, NewPassword: "again"})
	require.Error(t, err)
}

func TestForgotPasswordUnknownEmailStaysQuiet(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), newStubCache(), zap.NewNop(), testAuthConfig())
	assert.NoError(t, svc.ForgotPassword(context.Background(), dto.ForgotPasswordDTO{Email: "ghost@ddu.edu.et"}))
}

func TestResolveIdentityNormalizes(t *testing.T) {
	repo := newStubUserRepo()
	u, err := repo.CreateUser(context.Background(), &entities.User{
		FullName:   "Legacy Manager",
		Email:      "legacy@ddu.edu.et",
		Department: "iot",
		Role:       "iotAssetManager",
		IsApproved: true,
	})
	require.NoError(t, err)

	svc := NewAuthService(repo, newStubCache(), zap.NewNop(), testAuthConfig())
	identity, err := svc.ResolveIdentity(context.Background(), u.ID)
	require.NoError(t, err)

	assert.Equal(t, authz.RoleAssetManager, identity.Role)
	assert.Equal(t, authz.DepartmentIOT, identity.Department)
}
