package user_test

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/jwt"
	"Foodgram-Backend/pkg/user"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredientLine{},
		&entities.Bookmark{},
		&entities.CartItem{},
		&entities.Subscription{},
	))
	return db
}

func newService(t *testing.T) (user.UserService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return user.NewUserService(user.NewUserRepository(db), jwt.NewJWTService()), db
}

func registerRequest(username string) domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "correct-horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	view, err := service.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)
	require.Equal(t, "alice", view.Username)
	require.False(t, view.IsSubscribed)

	res, err := service.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	_, err = service.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, domain.ErrWrongCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	dup := registerRequest("bob")
	dup.Email = "alice@example.com"
	_, err = service.Register(ctx, dup)
	require.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	dup = registerRequest("alice")
	dup.Email = "other@example.com"
	_, err = service.Register(ctx, dup)
	require.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestSetPasswordChecksCurrent(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	view, err := service.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	err = service.SetPassword(ctx, domain.SetPasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password",
	}, view.ID)
	require.ErrorIs(t, err, domain.ErrWrongPassword)

	err = service.SetPassword(ctx, domain.SetPasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "new-password",
	}, view.ID)
	require.NoError(t, err)

	_, err = service.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "new-password",
	})
	require.NoError(t, err)
}

func TestGetUserAnnotatesSubscription(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	follower, err := service.Register(ctx, registerRequest("follower"))
	require.NoError(t, err)
	author, err := service.Register(ctx, registerRequest("chef"))
	require.NoError(t, err)

	view, err := service.GetUser(ctx, author.ID, follower.ID)
	require.NoError(t, err)
	require.False(t, view.IsSubscribed)

	require.NoError(t, db.Exec(
		"INSERT INTO subscriptions (id, subscriber_id, author_id) VALUES (?, ?, ?)",
		"11111111-1111-1111-1111-111111111111", follower.ID, author.ID,
	).Error)

	view, err = service.GetUser(ctx, author.ID, follower.ID)
	require.NoError(t, err)
	require.True(t, view.IsSubscribed)

	// A user never sees themselves as subscribed.
	view, err = service.GetUser(ctx, follower.ID, follower.ID)
	require.NoError(t, err)
	require.False(t, view.IsSubscribed)
}

func TestGetUsersAnnotatesSubscriptionsForViewer(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	follower, err := service.Register(ctx, registerRequest("follower"))
	require.NoError(t, err)
	chef, err := service.Register(ctx, registerRequest("chef"))
	require.NoError(t, err)
	_, err = service.Register(ctx, registerRequest("baker"))
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		"INSERT INTO subscriptions (id, subscriber_id, author_id) VALUES (?, ?, ?)",
		"22222222-2222-2222-2222-222222222222", follower.ID, chef.ID,
	).Error)

	views, count, err := service.GetUsers(ctx, 1, 20, follower.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
	require.Len(t, views, 3)

	flags := make(map[string]bool, len(views))
	for _, v := range views {
		flags[v.Username] = v.IsSubscribed
	}
	require.True(t, flags["chef"])
	require.False(t, flags["baker"])
	require.False(t, flags["follower"])

	// Anonymous listing carries no subscription flags.
	views, _, err = service.GetUsers(ctx, 1, 20, "")
	require.NoError(t, err)
	for _, v := range views {
		require.False(t, v.IsSubscribed)
	}
}

func TestIsNotFound(t *testing.T) {
	require.True(t, user.IsNotFound(gorm.ErrRecordNotFound))
	require.True(t, user.IsNotFound(fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound)))
	require.False(t, user.IsNotFound(errors.New("connection reset")))
	require.False(t, user.IsNotFound(nil))
}

func TestDeleteAccount(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	view, err := service.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	require.NoError(t, service.DeleteAccount(ctx, view.ID))
	require.ErrorIs(t, service.DeleteAccount(ctx, view.ID), domain.ErrUserNotFound)
}
