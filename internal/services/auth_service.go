package services

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/repositories"
	"bar_pos_backend/pkg/utils"
)

// Auth errors.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateUser       = errors.New("username or email already taken")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRole         = errors.New("role must be Admin or SalesRep")
	ErrInvalidRegistration = errors.New("invalid registration details")
)

const minPasswordLength = 8

// RegisterRequest captures a new back-office account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token pair plus the authenticated user.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// AuthService handles account registration, login and user administration.
type AuthService interface {
	RegisterUser(req RegisterRequest) (*models.User, error)
	LoginUser(req LoginRequest) (*LoginResponse, error)
	GetUserProfile(userID int64) (*models.User, error)
	GetUsers() ([]models.User, error)
	DeleteUser(userID int64) error
}

type authService struct {
	authRepo repositories.AuthRepository
	db       *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, db *sql.DB) AuthService {
	return &authService{
		authRepo: authRepo,
		db:       db,
	}
}

// RegisterUser creates an account. The role defaults to SalesRep; Admin
// accounts must be requested explicitly.
func (s *authService) RegisterUser(req RegisterRequest) (*models.User, error) {
	// Request binding enforces these on the HTTP path; the checks here cover
	// direct callers of the service.
	if utils.IsEmpty(req.Username) || utils.IsEmpty(req.FullName) {
		return nil, fmt.Errorf("%w: username and full name are required", ErrInvalidRegistration)
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: malformed email address", ErrInvalidRegistration)
	}
	if !utils.IsValidPasswordLength(req.Password, minPasswordLength) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, minPasswordLength)
	}

	role := req.Role
	if role == "" {
		role = models.RoleSalesRep
	}
	if role != models.RoleAdmin && role != models.RoleSalesRep {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
	}

	id, err := s.authRepo.CreateUser(s.db, user)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) LoginUser(req LoginRequest) (*LoginResponse, error) {
	user, err := s.authRepo.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	user.PasswordHash = ""
	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	}, nil
}

func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetUsers() ([]models.User, error) {
	users, err := s.authRepo.GetUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *authService) DeleteUser(userID int64) error {
	if err := s.authRepo.DeleteUser(s.db, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return nil
}
