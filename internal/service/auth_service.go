package service

import (
	"errors"
	"strings"

	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/config"
	"ai2sql/internal/pkg/crypto"
	"ai2sql/internal/pkg/jwt"
	"ai2sql/internal/pkg/logger"
	"ai2sql/internal/repository"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"

	"go.uber.org/zap"
)

var errReservedEmail = pkgErrors.New(pkgErrors.CodeForbidden, "this email is reserved, ask an administrator for an account")

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	RefreshToken(refreshToken string) (*dto.LoginResponse, error)
	Logout(userID int64)
	Me(userID int64) (*dto.UserResponse, error)
	// EnsureSuperuser creates the account, or promotes an existing one
	EnsureSuperuser(email, name, password string) (*model.User, error)
}

type authService struct {
	cfg         *config.AuthConfig
	jwt         *jwt.Manager
	resolver    *auth.Resolver
	userRepo    repository.UserRepository
	ldapService LDAPService
}

func NewAuthService(
	cfg *config.AuthConfig,
	jwtManager *jwt.Manager,
	resolver *auth.Resolver,
	userRepo repository.UserRepository,
	ldapService LDAPService,
) AuthService {
	return &authService{
		cfg:         cfg,
		jwt:         jwtManager,
		resolver:    resolver,
		userRepo:    userRepo,
		ldapService: ldapService,
	}
}

func (s *authService) Register(req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	if !s.cfg.Local.Enabled || !s.cfg.Local.AllowRegistration {
		return nil, pkgErrors.New(pkgErrors.CodeForbidden, "registration is disabled")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "name is required")
	}
	if req.Password != req.ConfirmPassword {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "passwords do not match")
	}

	email := normalizeEmail(req.Email)
	if s.reservedEmail(email) {
		return nil, errReservedEmail
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "hash password failed", err)
	}

	user := &model.User{
		AuthProvider: constants.AuthTypeLocal,
		Email:        email,
		Name:         name,
		Password:     hash,
		Role:         string(auth.GlobalRoleUser),
		BaseStatus:   model.BaseStatus{Status: constants.StatusEnabled},
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, pkgErrors.ErrRecordExists) {
			return nil, pkgErrors.New(pkgErrors.CodeConflict, "email already registered")
		}
		return nil, err
	}

	logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", user.Email))

	return s.issue(user)
}

func (s *authService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	var user *model.User
	var err error

	authType := req.AuthType
	if authType == "" {
		authType = constants.AuthTypeLocal
	}

	switch authType {
	case constants.AuthTypeLDAP:
		if !s.cfg.LDAP.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeAuthError, "ldap authentication is disabled")
		}
		ldapUser, err := s.ldapService.Authenticate(req.Email, req.Password)
		if err != nil {
			return nil, err
		}
		user, err = s.syncLDAPUser(ldapUser)
		if err != nil {
			return nil, err
		}

	case constants.AuthTypeLocal:
		if !s.cfg.Local.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeAuthError, "local authentication is disabled")
		}
		user, err = s.authenticateLocal(req.Email, req.Password)
		if err != nil {
			return nil, err
		}

	default:
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "unsupported auth type")
	}

	if user.Status != constants.StatusEnabled {
		return nil, pkgErrors.ErrUserDisabled
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Warn("update last login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return s.issue(user)
}

func (s *authService) authenticateLocal(email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.AuthProvider != constants.AuthTypeLocal || user.Password == "" {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	if !crypto.CheckPassword(password, user.Password) {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	return user, nil
}

// syncLDAPUser provisions the account on first login. Accounts of another provider are never matched.
func (s *authService) syncLDAPUser(ldapUser *LDAPUser) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ldapUser.Email)
	if err == nil {
		if user.AuthProvider != constants.AuthTypeLDAP {
			logger.Warn("ldap login for a non-ldap account",
				zap.Int64("user_id", user.ID), zap.String("auth_provider", user.AuthProvider))
			return nil, pkgErrors.ErrInvalidCredentials
		}
		return user, nil
	}
	if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}
	if s.reservedEmail(ldapUser.Email) {
		return nil, errReservedEmail
	}

	user = &model.User{
		AuthProvider: constants.AuthTypeLDAP,
		Email:        ldapUser.Email,
		Name:         ldapUser.Name,
		Role:         string(auth.GlobalRoleUser),
		BaseStatus:   model.BaseStatus{Status: constants.StatusEnabled},
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("ldap user provisioned", zap.Int64("user_id", user.ID), zap.String("email", user.Email))

	return user, nil
}

func (s *authService) RefreshToken(refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.jwt.ValidateToken(refreshToken, constants.JWTTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrInvalidToken
		}
		return nil, err
	}
	if user.Status != constants.StatusEnabled {
		return nil, pkgErrors.ErrUserDisabled
	}

	return s.issue(user)
}

// Logout only records the event, tokens expire on their own
func (s *authService) Logout(userID int64) {
	logger.Info("user logged out", zap.Int64("user_id", userID))
}

func (s *authService) Me(userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrUnauthorized
		}
		return nil, err
	}
	if user.Status != constants.StatusEnabled {
		return nil, pkgErrors.ErrUserDisabled
	}
	return toUserResponse(user, s.resolver), nil
}

func (s *authService) EnsureSuperuser(email, name, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "email is required")
	}

	user, err := s.userRepo.FindByEmail(email)
	if err == nil {
		if user.Role != string(auth.GlobalRoleSuperuser) {
			if err := s.userRepo.UpdateRole(user.ID, string(auth.GlobalRoleSuperuser)); err != nil {
				return nil, err
			}
			user.Role = string(auth.GlobalRoleSuperuser)
			logger.Info("user promoted to superuser", zap.String("email", email))
		}
		return user, nil
	}
	if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	if len(password) < 6 {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "password must be at least 6 characters")
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "hash password failed", err)
	}
	if strings.TrimSpace(name) == "" {
		name = email
	}

	user = &model.User{
		AuthProvider: constants.AuthTypeLocal,
		Email:        email,
		Name:         strings.TrimSpace(name),
		Password:     hash,
		Role:         string(auth.GlobalRoleSuperuser),
		BaseStatus:   model.BaseStatus{Status: constants.StatusEnabled},
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("superuser created", zap.String("email", email))

	return user, nil
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Name, user.AuthProvider)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "generate access token failed", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID, user.Email, user.Name, user.AuthProvider)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "generate refresh token failed", err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwt.AccessExpire(),
		User:         toUserResponse(user, s.resolver),
	}, nil
}

// reservedEmail reports addresses that would be superusers by allow-list alone.
// Those accounts come from EnsureSuperuser or the admin CLI.
func (s *authService) reservedEmail(email string) bool {
	return s.resolver.IsSuperuser(auth.Subject{Email: email})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
