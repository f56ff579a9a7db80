package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils/mailing"
	"Foodgram-Backend/pkg/jwt"
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterUserRequest) (domain.RegisterUserResponse, error)
		Login(ctx context.Context, req domain.LoginUserRequest) (domain.LoginUserResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		GetUsers(ctx context.Context, page, limit int, viewerID string) ([]domain.UserResponse, int64, error)
		GetUserDetail(ctx context.Context, id string, viewerID string) (domain.UserResponse, error)
		Subscribe(ctx context.Context, targetID, viewerID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, targetID, viewerID string) error
		GetSubscriptions(ctx context.Context, viewerID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
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

func (s *userService) Register(ctx context.Context, req domain.RegisterUserRequest) (domain.RegisterUserResponse, error) {
	emailExists, err := s.userRepository.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return domain.RegisterUserResponse{}, err
	}
	if emailExists {
		return domain.RegisterUserResponse{}, domain.ErrEmailAlreadyExists
	}

	usernameExists, err := s.userRepository.CheckUsernameExists(ctx, req.Username)
	if err != nil {
		return domain.RegisterUserResponse{}, err
	}
	if usernameExists {
		return domain.RegisterUserResponse{}, domain.ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegisterUserResponse{}, err
	}

	user := entities.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
		Role:      domain.RoleUser,
	}
	if err := s.userRepository.CreateUser(ctx, &user); err != nil {
		// A unique violation here means a concurrent registration won the
		// race after the pre-checks; the index does not say which column
		// collided, so the error names both.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RegisterUserResponse{}, domain.ErrUserAlreadyExists
		}
		return domain.RegisterUserResponse{}, err
	}

	// Welcome mail is best effort and must never fail registration.
	go func(email, username string) {
		body := fmt.Sprintf("Hello %s! Your Foodgram account has been created.", username)
		if err := mailing.SendMail(email, "Welcome to Foodgram", body); err != nil {
			log.Printf("failed to send welcome mail to %s: %v", email, err)
		}
	}(user.Email, user.Username)

	return domain.RegisterUserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginUserRequest) (domain.LoginUserResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginUserResponse{}, domain.ErrCredentialsNotMatch
		}
		return domain.LoginUserResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginUserResponse{}, domain.ErrCredentialsNotMatch
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)
	return domain.LoginUserResponse{
		Token: token,
		Role:  user.Role,
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return s.toUserResponse(ctx, user, userID)
}

func (s *userService) GetUsers(ctx context.Context, page, limit int, viewerID string) ([]domain.UserResponse, int64, error) {
	users, count, err := s.userRepository.GetUsers(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		view, err := s.toUserResponse(ctx, u, viewerID)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, view)
	}
	return res, count, nil
}

func (s *userService) GetUserDetail(ctx context.Context, id string, viewerID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return s.toUserResponse(ctx, user, viewerID)
}

func (s *userService) Subscribe(ctx context.Context, targetID, viewerID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	target, err := s.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		return domain.SubscriptionResponse{}, err
	}

	viewer, err := s.userRepository.GetUserByID(ctx, viewerID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	if target.ID == viewer.ID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscription
	}

	subscribed, err := s.userRepository.IsSubscribed(ctx, viewerID, targetID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if subscribed {
		return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
	}

	if err := s.userRepository.Subscribe(ctx, viewer.ID, target.ID); err != nil {
		// The unique index is the backstop for concurrent subscribe requests.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}

	return s.toSubscriptionResponse(ctx, target, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, targetID, viewerID string) error {
	if _, err := s.userRepository.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	affected, err := s.userRepository.Unsubscribe(ctx, viewerID, targetID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNoSubscription
	}
	return nil
}

func (s *userService) GetSubscriptions(ctx context.Context, viewerID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	users, count, err := s.userRepository.GetSubscribedUsers(ctx, viewerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.SubscriptionResponse, 0, len(users))
	for _, u := range users {
		view, err := s.toSubscriptionResponse(ctx, u, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, view)
	}
	return res, count, nil
}

// toUserResponse builds the user view for a concrete viewer; is_subscribed is
// always false for anonymous viewers and for the user themselves.
func (s *userService) toUserResponse(ctx context.Context, u *entities.User, viewerID string) (domain.UserResponse, error) {
	res := domain.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}

	if viewerID != "" && viewerID != u.ID.String() {
		subscribed, err := s.userRepository.IsSubscribed(ctx, viewerID, u.ID.String())
		if err != nil {
			return domain.UserResponse{}, err
		}
		res.IsSubscribed = subscribed
	}
	return res, nil
}

func (s *userService) toSubscriptionResponse(ctx context.Context, target *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes, err := s.userRepository.GetRecipesByAuthor(ctx, target.ID.String())
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	if recipesLimit > 0 && recipesLimit < len(recipes) {
		recipes = recipes[:recipesLimit]
	}

	summaries := make([]domain.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		summaries = append(summaries, domain.RecipeSummary{
			ID:          r.ID.String(),
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}

	return domain.SubscriptionResponse{
		UserResponse: domain.UserResponse{
			ID:           target.ID.String(),
			Email:        target.Email,
			Username:     target.Username,
			FirstName:    target.FirstName,
			LastName:     target.LastName,
			IsSubscribed: true,
		},
		Recipes:      summaries,
		RecipesCount: len(summaries),
	}, nil
}
