package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"agency_chat/internal/config"
	apperrors "agency_chat/pkg/errors"
	"agency_chat/pkg/jwt"
	"agency_chat/pkg/logger"
)

const RoleAdmin = "admin"

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

type authService struct {
	chatCfg config.ChatConfig
	tokens  *jwt.Manager
	log     logger.Logger
}

func NewAuthService(chatCfg config.ChatConfig, jwtCfg config.JWTConfig, log logger.Logger) AuthService {
	return &authService{
		chatCfg: chatCfg,
		tokens:  jwt.NewManager(jwtCfg.Secret, jwtCfg.TTL, jwtCfg.Issuer),
		log:     log,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)

	// Единственная учетная запись - оператор; без настроенного хеша
	// вход закрыт.
	if s.chatCfg.AdminPasswordHash == "" {
		s.log.Warn("Admin login attempted without configured password hash")
		return "", apperrors.ErrInvalidCredentials
	}
	if username != s.chatCfg.AdminID {
		return "", apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.chatCfg.AdminPasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(s.chatCfg.AdminID, RoleAdmin)
	if err != nil {
		s.log.Error("Failed to generate token", "error", err)
		return "", err
	}

	return token, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*jwt.Claims, error) {
	return s.tokens.Parse(tokenString)
}
