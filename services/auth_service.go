package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/models"
	aws_pkg "github.com/Company-KERL/Kerl-backend/pkg/aws"
	"github.com/Company-KERL/Kerl-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const maxUsernameAttempts = 1000

// TokenIssuer issues session tokens for a user id.
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateUser(ctx context.Context, userID primitive.ObjectID, req *models.UpdateUserRequest) (*models.User, error)
}

type authServiceImpl struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	metrics    Metrics
	logger     *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, bcryptCost int, metrics Metrics, logger *zap.Logger) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authServiceImpl{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *authServiceImpl) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if strings.TrimSpace(req.Name) == "" || email == "" || req.Password == "" {
		return nil, apperrors.Validation("Name, email, and password are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal("Server error", err)
	}

	username, err := s.uniqueUsername(ctx, req.Name)
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Address:  req.Address,
		Phone:    req.ContactPhone(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("User already exists")
		}
		return nil, apperrors.Internal("Server error", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.Hex()), zap.String("username", user.Username))
	recordCount(s.metrics, aws_pkg.MetricUsersRegistered, nil)
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperrors.Validation("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, "", apperrors.Internal("Server error", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", apperrors.Internal("Server error", err)
	}
	return user, token, nil
}

func (s *authServiceImpl) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}
	return user, nil
}

// UpdateUser changes only the contact fields present in req.
func (s *authServiceImpl) UpdateUser(ctx context.Context, userID primitive.ObjectID, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.UpdateContact(ctx, userID, req.Address, req.Phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}
	return user, nil
}

// uniqueUsername derives a username from the display name: whitespace
// removed, lower-cased, then suffixed 1, 2, ... until unused.
func (s *authServiceImpl) uniqueUsername(ctx context.Context, name string) (string, error) {
	base := UsernameBase(name)
	for i := 0; i < maxUsernameAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}
		exists, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", errors.New("no free username for " + base)
}

func UsernameBase(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
