package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tair/library-service/internal/user/domain"
	"github.com/tair/library-service/internal/user/repository"
	"github.com/tair/library-service/pkg/auth"
)

// stubLoans reports a fixed active record count per user
type stubLoans struct {
	active map[uint]int64
}

func (s *stubLoans) ActiveRecordCount(userID uint) (int64, error) {
	return s.active[userID], nil
}

func setupRepo(t *testing.T) *repository.GormUserRepository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return repository.NewGormUserRepository(db)
}

func registerCmd(username, email string) RegisterUserCommand {
	return RegisterUserCommand{
		Username: username,
		Email:    email,
		Password: "secret123",
		FullName: "Test Student",
	}
}

func TestRegisterUser(t *testing.T) {
	repo := setupRepo(t)
	handler := NewRegisterUserHandler(repo)

	user, err := handler.Handle(registerCmd("alice", "alice@example.com"))
	assert.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.True(t, user.IsActive)
	// Stored hashed, never plaintext
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "secret123"))
}

func TestRegisterUserValidation(t *testing.T) {
	repo := setupRepo(t)
	handler := NewRegisterUserHandler(repo)

	_, err := handler.Handle(RegisterUserCommand{Email: "e@e.com", Password: "secret123", FullName: "f"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = handler.Handle(RegisterUserCommand{Username: "u", Email: "e@e.com", Password: "short", FullName: "f"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	cmd := registerCmd("bob", "bob@example.com")
	cmd.Role = "librarian"
	_, err = handler.Handle(cmd)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRegisterUserDuplicate(t *testing.T) {
	repo := setupRepo(t)
	handler := NewRegisterUserHandler(repo)

	_, err := handler.Handle(registerCmd("alice", "alice@example.com"))
	assert.NoError(t, err)

	_, err = handler.Handle(registerCmd("alice", "other@example.com"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = handler.Handle(registerCmd("other", "alice@example.com"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestLoginUser(t *testing.T) {
	repo := setupRepo(t)
	register := NewRegisterUserHandler(repo)
	login := NewLoginUserHandler(repo)

	registered, err := register.Handle(registerCmd("alice", "alice@example.com"))
	assert.NoError(t, err)

	resp, err := login.Handle(LoginUserCommand{Username: "alice", Password: "secret123"})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, registered.ID, resp.User.ID)

	claims, err := auth.ValidateToken(resp.Token)
	assert.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, domain.RoleStudent, claims.Role)
}

func TestLoginUserBadCredentials(t *testing.T) {
	repo := setupRepo(t)
	register := NewRegisterUserHandler(repo)
	login := NewLoginUserHandler(repo)

	_, err := register.Handle(registerCmd("alice", "alice@example.com"))
	assert.NoError(t, err)

	_, err = login.Handle(LoginUserCommand{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown user reads the same as a wrong password
	_, err = login.Handle(LoginUserCommand{Username: "mallory", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginDeactivatedUser(t *testing.T) {
	repo := setupRepo(t)
	register := NewRegisterUserHandler(repo)
	login := NewLoginUserHandler(repo)
	toggle := NewToggleActiveHandler(repo)

	user, err := register.Handle(registerCmd("alice", "alice@example.com"))
	assert.NoError(t, err)

	_, err = toggle.Handle(ToggleActiveCommand{UserID: user.ID, IsActive: false})
	assert.NoError(t, err)

	_, err = login.Handle(LoginUserCommand{Username: "alice", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUpdateUser(t *testing.T) {
	repo := setupRepo(t)
	register := NewRegisterUserHandler(repo)
	update := NewUpdateUserHandler(repo)

	user, err := register.Handle(registerCmd("alice", "alice@example.com"))
	assert.NoError(t, err)
	oldHash := user.Password

	updated, err := update.Handle(UpdateUserCommand{
		ID:       user.ID,
		Email:    "new@example.com",
		FullName: "Alice Renamed",
	})
	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "Alice Renamed", updated.FullName)
	// Password untouched when not supplied
	assert.Equal(t, oldHash, updated.Password)

	updated, err = update.Handle(UpdateUserCommand{
		ID:       user.ID,
		Email:    "new@example.com",
		FullName: "Alice Renamed",
		Password: "another-secret",
	})
	assert.NoError(t, err)
	assert.True(t, auth.CheckPassword(updated.Password, "another-secret"))
}

func TestChangeRole(t *testing.T) {
	repo := setupRepo(t)
	register := NewRegisterUserHandler(repo)
	change := NewChangeRoleHandler(repo)

	user, err := register.Handle(registerCmd("alice", "alice@example.com"))
	assert.NoError(t, err)

	promoted, err := change.Handle(ChangeRoleCommand{UserID: user.ID, Role: domain.RoleAdmin})
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	_, err = change.Handle(ChangeRoleCommand{UserID: user.ID, Role: "librarian"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteUser(t *testing.T) {
	repo := setupRepo(t)
	register := NewRegisterUserHandler(repo)

	user, err := register.Handle(registerCmd("alice", "alice@example.com"))
	assert.NoError(t, err)

	del := NewDeleteUserHandler(repo, &stubLoans{})
	assert.NoError(t, del.Handle(DeleteUserCommand{ID: user.ID}))

	_, err = repo.FindByID(user.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUserWithActiveLoans(t *testing.T) {
	repo := setupRepo(t)
	register := NewRegisterUserHandler(repo)

	user, err := register.Handle(registerCmd("alice", "alice@example.com"))
	assert.NoError(t, err)

	del := NewDeleteUserHandler(repo, &stubLoans{active: map[uint]int64{user.ID: 3}})
	err = del.Handle(DeleteUserCommand{ID: user.ID})
	assert.ErrorIs(t, err, domain.ErrActiveLoans)

	// Account survives the refused delete
	_, err = repo.FindByID(user.ID)
	assert.NoError(t, err)
}
