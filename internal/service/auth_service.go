package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/mama-respira/internal/auth"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/metrics"
	"github.com/dom/mama-respira/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo   repository.UserRepository
	tokens     *auth.TokenService
	coachEmail string
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenService, coachEmail string, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		coachEmail: strings.TrimSpace(coachEmail),
		log:        log,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User        *domain.User
	AccessToken string
}

// Register creates a user account. Emails are trimmed and otherwise
// compared exactly, here and in Login.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || input.Password == "" || name == "" {
		return nil, domain.ErrInvalidPayload
	}

	result, err := s.register(ctx, email, input.Password, name)
	metrics.RecordAuthAttempt("register", err == nil)
	return result, err
}

func (s *AuthService) register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeValidation, "Contraseña inválida", err)
	}

	role := domain.RoleUser
	if s.coachEmail != "" && email == s.coachEmail {
		role = domain.RoleCoach
	}

	user := &domain.User{
		UserID:       NewUserID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.duplicateCause(ctx, email, role)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.UserID), zap.String("role", role.String()))
	return s.issue(user)
}

// duplicateCause tells a lost email race apart from a second coach.
func (s *AuthService) duplicateCause(ctx context.Context, email string, role domain.Role) error {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil || role != domain.RoleCoach {
		return domain.ErrEmailTaken
	}
	return domain.ErrCoachExists
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	result, err := s.login(ctx, strings.TrimSpace(input.Email), input.Password)
	metrics.RecordAuthAttempt("login", err == nil)
	return result, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.UserID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, AccessToken: token}, nil
}

// Authenticate resolves a bearer token to its user. It reports false for
// invalid tokens and for tokens whose subject no longer exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, bool) {
	identity, ok := s.tokens.Verify(token)
	if !ok {
		return nil, false
	}
	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("token subject lookup failed", zap.String("user_id", identity.UserID), zap.Error(err))
		}
		return nil, false
	}
	return user, true
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetCoach returns the account holding the coach role.
func (s *AuthService) GetCoach(ctx context.Context) (*domain.User, error) {
	coach, err := s.userRepo.GetCoach(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrCoachNotFound
		}
		return nil, fmt.Errorf("get coach: %w", err)
	}
	return coach, nil
}

// SetRole moves a client between user and premium. The coach account is
// never changed through this path.
func (s *AuthService) SetRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if !role.IsAssignable() {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsCoach() {
		return nil, domain.ErrCoachRoleLocked
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.log.Info("role updated", zap.String("user_id", userID), zap.String("role", role.String()))
	user.Role = role
	return user, nil
}

// UpgradeToPremium is the self-service upgrade. Premium accounts are
// returned unchanged.
func (s *AuthService) UpgradeToPremium(ctx context.Context, user *domain.User) (*domain.User, error) {
	switch user.Role {
	case domain.RoleCoach:
		return nil, domain.ErrCoachRoleLocked
	case domain.RolePremium:
		return user, nil
	}

	if err := s.userRepo.UpdateRole(ctx, user.UserID, domain.RolePremium); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("upgrade role: %w", err)
	}

	upgraded := *user
	upgraded.Role = domain.RolePremium
	return &upgraded, nil
}

// AssignCoach promotes an existing account to coach when no other account
// holds the role.
func (s *AuthService) AssignCoach(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if user.IsCoach() {
		return user, nil
	}

	if current, err := s.userRepo.GetCoach(ctx); err == nil {
		return nil, domain.WrapError(domain.ErrCodeConflict, domain.ErrCoachExists.Message,
			fmt.Errorf("coach is %s", current.Email))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get coach: %w", err)
	}

	if err := s.userRepo.UpdateRole(ctx, user.UserID, domain.RoleCoach); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrCoachExists
		}
		return nil, fmt.Errorf("assign coach: %w", err)
	}

	s.log.Info("coach assigned", zap.String("user_id", user.UserID))
	user.Role = domain.RoleCoach
	return user, nil
}

// ListUsers returns every account, oldest first.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.ListByRoles(ctx, domain.RoleUser, domain.RolePremium, domain.RoleCoach)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// NewUserID returns "user_" followed by 12 hex characters.
func NewUserID() string {
	return "user_" + newHexID()
}

func newHexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
