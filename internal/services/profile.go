package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-backend/internal/models"
	"github.com/vidtube/vidtube-backend/internal/repo"
	"github.com/vidtube/vidtube-backend/pkg/apierr"
)

// ProfileService coordinates profile updates that may swap or delete hosted
// media. A replacement asset is always uploaded and referenced before the old
// one is deleted, so a partial failure can orphan an asset on the host but
// never leave the record pointing at nothing.
type ProfileService struct {
	users repo.UserRepo
	media MediaUploader
}

func NewProfileService(users repo.UserRepo, media MediaUploader) *ProfileService {
	return &ProfileService{users: users, media: media}
}

type ProfileUpdateInput struct {
	FullName string
	Email    string
	// Staged local file paths; empty means no replacement was supplied.
	AvatarPath string
	CoverPath  string
	// DeleteCover removes the cover image without replacement. Callers must
	// not combine it with CoverPath.
	DeleteCover bool
}

// UpdateProfile applies a sparse patch built from the non-blank fields of in.
// Blank fields are left untouched, never overwritten with empty strings.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileUpdateInput) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.NotFound("User not found")
		}
		return nil, err
	}

	patch := repo.ProfilePatch{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
	}

	if in.AvatarPath != "" {
		newAvatar, err := s.media.Upload(ctx, in.AvatarPath)
		if err != nil {
			return nil, apierr.Internal("Avatar upload failed")
		}
		s.deleteOldAsset(ctx, user.AvatarID, user.Avatar)
		patch.Avatar = newAvatar
	}

	if in.CoverPath != "" {
		newCover, err := s.media.Upload(ctx, in.CoverPath)
		if err != nil {
			return nil, apierr.Internal("Cover image upload failed")
		}
		s.deleteOldAsset(ctx, user.CoverImageID, user.CoverImage)
		patch.Cover = newCover
	}

	if in.DeleteCover && user.CoverImage != "" {
		s.deleteOldAsset(ctx, user.CoverImageID, user.CoverImage)
		patch.ClearCover = true
	}

	if patch.IsEmpty() {
		return nil, apierr.BadRequest("No changes submitted")
	}

	updated, err := s.users.ApplyProfilePatch(ctx, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, apierr.NotFound("User not found")
		case errors.Is(err, repo.ErrDuplicate):
			return nil, apierr.Conflict("Email already in use")
		}
		return nil, err
	}
	return updated, nil
}

// deleteOldAsset removes a superseded asset from the media host. Failures are
// logged and swallowed: the field update already carries the new reference and
// must not be aborted over a host-side orphan.
func (s *ProfileService) deleteOldAsset(ctx context.Context, publicID, url string) {
	ref := publicID
	if ref == "" {
		ref = url
	}
	if ref == "" {
		return
	}
	if err := s.media.Delete(ctx, ref); err != nil {
		log.Printf("Failed to delete old asset %q: %v", ref, err)
	}
}
