package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-backend/internal/models"
	"github.com/vidtube/vidtube-backend/internal/repo"
	"github.com/vidtube/vidtube-backend/pkg/apierr"
	"github.com/vidtube/vidtube-backend/pkg/utils"
)

// SessionService orchestrates registration, login, refresh rotation, logout
// and password changes. A user has at most one renewable session: login
// overwrites it, refresh rotates it with a conditional store update, logout
// clears it.
type SessionService struct {
	users  repo.UserRepo
	tokens *TokenService
	media  MediaUploader
}

func NewSessionService(users repo.UserRepo, tokens *TokenService, media MediaUploader) *SessionService {
	return &SessionService{users: users, tokens: tokens, media: media}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	// Staged local file paths; AvatarPath is mandatory, CoverPath optional.
	AvatarPath string
	CoverPath  string
}

// Register creates a new user. The avatar is uploaded before the document is
// created so a failed upload never leaves a half-created user behind.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apierr.BadRequest("All fields are required")
	}

	exists, err := s.users.Exists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierr.Conflict("User with same username or email already exists")
	}

	if in.AvatarPath == "" {
		return nil, apierr.BadRequest("Avatar is required")
	}
	avatar, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil {
		return nil, apierr.Internal("Avatar upload failed")
	}

	var cover *models.AssetRef
	if in.CoverPath != "" {
		cover, err = s.media.Upload(ctx, in.CoverPath)
		if err != nil {
			return nil, apierr.Internal("Cover image upload failed")
		}
	}

	passwordHash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		FullName: fullName,
		Password: passwordHash,
		Avatar:   avatar.URL,
		AvatarID: avatar.PublicID,
	}
	if cover != nil {
		user.CoverImage = cover.URL
		user.CoverImageID = cover.PublicID
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apierr.Conflict("User with same username or email already exists")
		}
		// Creation reported success but the record could not be read back.
		return nil, apierr.Internal("Something went wrong while registering user")
	}

	return created, nil
}

// Login verifies credentials and starts a session, overwriting any prior one.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (*models.User, string, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, "", "", apierr.BadRequest("Username and password are required")
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", "", apierr.NotFound("User does not exist")
		}
		return nil, "", "", err
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return nil, "", "", apierr.Unauthorized("Invalid user credentials")
	}

	accessToken, refreshToken, err := s.tokens.IssuePair(user.ID.Hex())
	if err != nil {
		return nil, "", "", err
	}

	sess := models.Session{
		RefreshTokenHash: hashRefreshToken(refreshToken),
		IssuedAt:         time.Now().UTC(),
	}
	if err := s.users.SetSession(ctx, user.ID, sess); err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

// Refresh rotates the token pair. The incoming token must verify
// cryptographically AND match the stored session; the match-and-replace is a
// single conditional store update, so of two concurrent calls with the same
// token exactly one wins.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", apierr.Unauthorized("Refresh token is required")
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", "", apierr.Unauthorized("Invalid refresh token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return "", "", apierr.Unauthorized("Invalid refresh token")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", "", apierr.Unauthorized("Invalid refresh token")
		}
		return "", "", err
	}

	accessToken, newRefreshToken, err := s.tokens.IssuePair(claims.UserID)
	if err != nil {
		return "", "", err
	}

	sess := models.Session{
		RefreshTokenHash: hashRefreshToken(newRefreshToken),
		IssuedAt:         time.Now().UTC(),
	}
	err = s.users.RotateSession(ctx, userID, hashRefreshToken(refreshToken), sess)
	if err != nil {
		if errors.Is(err, repo.ErrStaleSession) {
			return "", "", apierr.Unauthorized("Refresh token is expired or already used")
		}
		return "", "", err
	}

	return accessToken, newRefreshToken, nil
}

// Logout revokes the user's session. Outstanding access tokens stay valid
// until natural expiry.
func (s *SessionService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	err := s.users.ClearSession(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return apierr.NotFound("User not found")
	}
	return err
}

// ChangePassword verifies the old password and stores a hash of the new one.
// The active session is intentionally left untouched.
func (s *SessionService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apierr.BadRequest("Old and new passwords are required")
	}
	if oldPassword == newPassword {
		return apierr.BadRequest("New password must be different from the old password")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apierr.NotFound("User not found")
		}
		return err
	}

	ok, err := utils.VerifyPassword(oldPassword, user.Password)
	if err != nil || !ok {
		return apierr.Unauthorized("Invalid user credentials")
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, passwordHash)
}

// CurrentUser loads the authenticated user's record.
func (s *SessionService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
