package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/premio/internal/common"
	"github.com/dmitrijs2005/premio/internal/dbx"
	"github.com/dmitrijs2005/premio/internal/server/auth"
	"github.com/dmitrijs2005/premio/internal/server/config"
	"github.com/dmitrijs2005/premio/internal/server/models"
	predictionsrepo "github.com/dmitrijs2005/premio/internal/server/repositories/predictions"
	usersrepo "github.com/dmitrijs2005/premio/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
	}
	return NewUserService(db, rm, cfg)
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut     *models.User
	getErr     error
	getKeySeen string

	getByIDOut *models.User
	getByIDErr error

	listOut []*models.User
	listErr error

	countNonAdmin int64

	promoteErr    error
	promotedID    int64
	promoteCalled bool

	deleteErr    error
	deletedID    int64
	deleteCalled bool
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	out := *u
	out.ID = 1
	return &out, nil
}

func (f *fakeUsersRepo) GetByUsernameOrEmail(ctx context.Context, key string) (*models.User, error) {
	f.getKeySeen = key
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDOut, nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	return f.listOut, f.listErr
}

func (f *fakeUsersRepo) CountNonAdmin(ctx context.Context) (int64, error) {
	return f.countNonAdmin, nil
}

func (f *fakeUsersRepo) PromoteToAdmin(ctx context.Context, id int64) error {
	f.promoteCalled = true
	f.promotedID = id
	return f.promoteErr
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	f.deleteCalled = true
	f.deletedID = id
	return f.deleteErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePredictionsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Predictions(db dbx.DBTX) predictionsrepo.Repository {
	return m.p
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}}
	s := newUserService(t, db, rm)

	u, err := s.Register(context.Background(), "alice", "Alice@Example.COM", "s3curepass")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3curepass" {
		t.Fatalf("password not hashed")
	}
	if !auth.CheckPassword(u.PasswordHash, "s3curepass") {
		t.Fatalf("stored hash does not verify")
	}
}

func TestRegister_ValidationFailures(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}}
	s := newUserService(t, db, rm)

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@b.com", "s3curepass"},
		{"bad username chars", "bad name", "a@b.com", "s3curepass"},
		{"bad email", "alice", "a@b", "s3curepass"},
		{"short password", "alice", "a@b.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.username, tt.email, tt.password)
			if !errors.Is(err, common.ErrorValidation) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicatePassthrough(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrorDuplicateUsername}}
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "alice", "a@b.com", "s3curepass")
	if !errors.Is(err, common.ErrorDuplicateUsername) {
		t.Fatalf("want ErrorDuplicateUsername, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("s3curepass")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getOut: &models.User{ID: 7, Username: "alice", PasswordHash: hash, IsAdmin: true},
	}}
	s := newUserService(t, db, rm)

	token, user, err := s.Login(context.Background(), "alice", "s3curepass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims, err := auth.ParseToken(token, []byte("k"))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != 7 || !claims.IsAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLogin_EmailKeyNormalized(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("s3curepass")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	repo := &fakeUsersRepo{
		getOut: &models.User{ID: 7, Username: "alice", Email: "alice@example.com", PasswordHash: hash},
	}
	s := newUserService(t, db, &fakeRepoManager{u: repo})

	_, user, err := s.Login(context.Background(), "  Alice@Example.COM ", "s3curepass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("unexpected user: %+v", user)
	}
	if repo.getKeySeen != "alice@example.com" {
		t.Fatalf("email key not normalized before lookup: %q", repo.getKeySeen)
	}

	// usernames keep their stored spelling and are not lowercased
	if _, _, err := s.Login(context.Background(), "AliceUpper", "s3curepass"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if repo.getKeySeen != "AliceUpper" {
		t.Fatalf("username key must pass through verbatim: %q", repo.getKeySeen)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{getErr: common.ErrorNotFound}}
	s := newUserService(t, db, rm)

	_, _, err := s.Login(context.Background(), "nobody", "whatever")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getOut: &models.User{ID: 7, Username: "alice", PasswordHash: hash},
	}}
	s := newUserService(t, db, rm)

	_, _, err = s.Login(context.Background(), "alice", "wrong-password")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestDelete_SelfForbidden(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{}
	rm := &fakeRepoManager{u: repo}
	s := newUserService(t, db, rm)

	err := s.Delete(context.Background(), 5, 5)
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("want ErrorForbidden, got %v", err)
	}
	if repo.deleteCalled {
		t.Fatalf("repo must not be touched for self-delete")
	}
}

func TestDelete_Other(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeUsersRepo{}
	rm := &fakeRepoManager{u: repo}
	s := newUserService(t, db, rm)

	if err := s.Delete(context.Background(), 5, 9); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if !repo.deleteCalled || repo.deletedID != 9 {
		t.Fatalf("delete not delegated: %+v", repo)
	}
}

func TestEnsureAdmin_AlreadyExists(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	existing := &models.User{ID: 1, Username: "admin", IsAdmin: true}
	rm := &fakeRepoManager{u: &fakeUsersRepo{getOut: existing}}
	s := newUserService(t, db, rm)

	u, created, err := s.EnsureAdmin(context.Background(), "admin", "admin@insurance.com", "admin123")
	if err != nil {
		t.Fatalf("EnsureAdmin error: %v", err)
	}
	if created {
		t.Fatalf("account must not be re-created")
	}
	if u.ID != 1 {
		t.Fatalf("unexpected account: %+v", u)
	}
}

func TestEnsureAdmin_CreatesAndPromotes(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeUsersRepo{getErr: common.ErrorNotFound}
	rm := &fakeRepoManager{u: repo}
	s := newUserService(t, db, rm)

	u, created, err := s.EnsureAdmin(context.Background(), "admin", "admin@insurance.com", "admin123")
	if err != nil {
		t.Fatalf("EnsureAdmin error: %v", err)
	}
	if !created {
		t.Fatalf("expected account creation")
	}
	if !u.IsAdmin {
		t.Fatalf("account not promoted: %+v", u)
	}
	if !repo.promoteCalled || repo.promotedID != u.ID {
		t.Fatalf("promotion not delegated: %+v", repo)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
