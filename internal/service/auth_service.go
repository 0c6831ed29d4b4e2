package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"vendora/config"
	"vendora/internal/auth"
	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrOAuthAccount = errors.New("account uses social login")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrTokenExpired = errors.New("reset token invalid or expired")
)

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	mail     *MailService
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, mail *MailService) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, mail: mail}
}

func (s *AuthService) Register(name, email, password, role string) (*models.User, string, string, error) {
	if role != domain.RoleCreator {
		role = domain.RoleUser
	}
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if u.PasswordHash == "" {
		return nil, "", "", ErrOAuthAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, nil
}

// LoginWithGoogle finds or creates a user for the Google identity and returns
// tokens plus whether the account is new.
func (s *AuthService) LoginWithGoogle(googleID, email, name, avatarURL string) (*models.User, string, string, bool, error) {
	u, err := s.userRepo.GetByGoogleID(googleID)
	if err == nil {
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
		return u, access, refresh, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", false, err
	}
	existing, _ := s.userRepo.GetByEmail(email)
	if existing != nil {
		// Link Google to the existing account.
		gid := googleID
		existing.GoogleID = &gid
		if avatarURL != "" && existing.AvatarURL == "" {
			existing.AvatarURL = avatarURL
		}
		if err := s.userRepo.Update(existing); err != nil {
			return nil, "", "", false, err
		}
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, existing.ID, existing.Email, existing.Role)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, existing.ID)
		return existing, access, refresh, false, nil
	}
	gid := googleID
	u = &models.User{
		Name:      name,
		Email:     email,
		Role:      domain.RoleUser,
		GoogleID:  &gid,
		AvatarURL: avatarURL,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", false, err
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, true, nil
}

// RequestPasswordReset issues a one-hour reset token and emails it. Only the
// SHA-256 of the token is stored. Unknown emails return nil so the endpoint
// does not leak account existence.
func (s *AuthService) RequestPasswordReset(email string) error {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)
	sum := sha256.Sum256([]byte(token))
	expires := time.Now().Add(time.Hour)

	u.ResetPasswordToken = hex.EncodeToString(sum[:])
	u.ResetPasswordExpires = &expires
	if err := s.userRepo.Update(u); err != nil {
		return err
	}
	resetURL := s.cfg.Server.FrontendURL + "/reset-password?token=" + token
	return s.mail.SendPasswordReset(u.Email, u.Name, resetURL)
}

// ResetPasswordDirect sets a new password for an already-authenticated user.
func (s *AuthService) ResetPasswordDirect(u *models.User, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.userRepo.Update(u)
}

func (s *AuthService) ResetPassword(token, newPassword string) error {
	sum := sha256.Sum256([]byte(token))
	u, err := s.userRepo.GetByResetToken(hex.EncodeToString(sum[:]), time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenExpired
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	return s.userRepo.Update(u)
}
