package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils/mailing"
	"Foodgram-Backend/pkg/jwt"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenDuration = 15 * time.Minute

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserView, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		GetUser(ctx context.Context, id string, viewerID string) (domain.UserView, error)
		GetUsers(ctx context.Context, page, limit int, viewerID string) ([]domain.UserView, int64, error)
		SetPassword(ctx context.Context, req domain.SetPasswordRequest, userID string) error
		RequestPasswordReset(ctx context.Context, req domain.ResetPasswordRequest) error
		ConfirmPasswordReset(ctx context.Context, req domain.ResetPasswordConfirmRequest) error
		DeleteAccount(ctx context.Context, userID string) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserView, error) {
	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.UserView{}, domain.ErrEmailAlreadyExists
	} else if !IsNotFound(err) {
		return domain.UserView{}, err
	}

	if _, err := s.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return domain.UserView{}, domain.ErrUsernameTaken
	} else if !IsNotFound(err) {
		return domain.UserView{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserView{}, err
	}

	user := entities.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hash),
	}
	if err := s.userRepository.CreateUser(ctx, &user); err != nil {
		return domain.UserView{}, err
	}

	return ToUserView(&user, false), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if IsNotFound(err) {
			return domain.LoginResponse{}, domain.ErrWrongCredentials
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrWrongCredentials
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), user.IsAdmin)
	return domain.LoginResponse{Token: token}, nil
}

func (s *userService) GetUser(ctx context.Context, id string, viewerID string) (domain.UserView, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return domain.UserView{}, domain.ErrUserNotFound
		}
		return domain.UserView{}, err
	}

	subscribed := false
	if viewerID != "" && viewerID != id {
		subscribed, err = s.userRepository.IsSubscribed(ctx, viewerID, id)
		if err != nil {
			return domain.UserView{}, err
		}
	}

	return ToUserView(user, subscribed), nil
}

func (s *userService) GetUsers(ctx context.Context, page, limit int, viewerID string) ([]domain.UserView, int64, error) {
	users, count, err := s.userRepository.GetUsers(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	// One batched lookup for the whole page; anonymous viewers skip it.
	subscribed := map[uuid.UUID]bool{}
	if viewerID != "" {
		authorIDs := make([]uuid.UUID, 0, len(users))
		for _, u := range users {
			authorIDs = append(authorIDs, u.ID)
		}
		subscribed, err = s.userRepository.GetSubscribedAuthorSet(ctx, viewerID, authorIDs)
		if err != nil {
			return nil, 0, err
		}
	}

	result := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		result = append(result, ToUserView(u, subscribed[u.ID]))
	}

	return result, count, nil
}

func (s *userService) SetPassword(ctx context.Context, req domain.SetPasswordRequest, userID string) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if IsNotFound(err) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return domain.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, userID, string(hash))
}

func (s *userService) RequestPasswordReset(ctx context.Context, req domain.ResetPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if IsNotFound(err) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenResetPassword(map[string]any{
		"user_id": user.ID.String(),
		"email":   user.Email,
	}, resetTokenDuration)
	if err != nil {
		return err
	}

	appURL := mailing.LoadMailConfig().AppURL
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Use the link below to reset your password:</p>"+
			"<p><a href=\"%s/reset_password_confirm?token=%s\">Reset password</a></p>"+
			"<p>The link is valid for 15 minutes.</p>",
		user.FirstName, appURL, token,
	)
	return mailing.SendMail(user.Email, "Foodgram password reset", body)
}

func (s *userService) ConfirmPasswordReset(ctx context.Context, req domain.ResetPasswordConfirmRequest) error {
	claims, err := s.jwtService.ValidateTokenResetPassword(req.Token)
	if err != nil {
		return err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return domain.ErrTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, userID, string(hash))
}

func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.userRepository.GetUserByID(ctx, userID); err != nil {
		if IsNotFound(err) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return s.userRepository.DeleteUser(ctx, userID)
}

// ToUserView builds the read shape of a user for a given subscription flag.
func ToUserView(user *entities.User, isSubscribed bool) domain.UserView {
	return domain.UserView{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}
