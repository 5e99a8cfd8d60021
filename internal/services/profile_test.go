package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-backend/internal/models"
)

func newProfileFixture(t *testing.T) (*ProfileService, *fakeUserRepo, *fakeMedia, *models.User) {
	t.Helper()

	users := newFakeUserRepo()
	media := &fakeMedia{}

	user, err := users.Create(context.Background(), &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice Example",
		Password:     "irrelevant-hash",
		Avatar:       "https://cdn.example.com/old-avatar.png",
		AvatarID:     "old-avatar-id",
		CoverImage:   "https://cdn.example.com/old-cover.png",
		CoverImageID: "old-cover-id",
	})
	require.NoError(t, err)

	return NewProfileService(users, media), users, media, user
}

func TestUpdateProfile_FieldsOnly(t *testing.T) {
	svc, _, media, user := newProfileFixture(t)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{
		FullName: "  Alice Updated  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Updated", updated.FullName)
	assert.Equal(t, "alice@example.com", updated.Email, "blank fields stay untouched")
	assert.Empty(t, media.calls)
}

func TestUpdateProfile_BlankFieldsAreNoOps(t *testing.T) {
	svc, _, _, user := newProfileFixture(t)

	_, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{
		FullName: "   ",
		Email:    "",
	})
	assert.Equal(t, 400, statusOf(t, err), "an all-blank patch is no changes")
}

func TestUpdateProfile_NoChanges(t *testing.T) {
	svc, users, media, user := newProfileFixture(t)

	callsBefore := len(users.calls)
	_, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{})
	assert.Equal(t, 400, statusOf(t, err))
	assert.Empty(t, media.calls)
	assert.NotContains(t, users.calls[callsBefore:], "ApplyProfilePatch", "store must not be written")
}

func TestUpdateProfile_AvatarReplacement_DeleteAfterUpload(t *testing.T) {
	svc, users, media, user := newProfileFixture(t)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{
		AvatarPath: "new-avatar",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"upload:new-avatar", "delete:old-avatar-id"}, media.calls,
		"old asset is deleted only after the replacement upload succeeded")
	assert.Equal(t, "https://cdn.example.com/new-avatar.png", updated.Avatar)
	assert.Equal(t, "new-avatar-id", users.users[user.ID].AvatarID)
}

func TestUpdateProfile_AvatarUploadFailure_NoDeleteNoWrite(t *testing.T) {
	svc, users, media, user := newProfileFixture(t)
	media.failUpload = true

	_, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{
		FullName:   "New Name",
		AvatarPath: "new-avatar",
	})
	assert.Equal(t, 500, statusOf(t, err))
	assert.Empty(t, media.calls, "no delete may happen when the upload failed")

	stored := users.users[user.ID]
	assert.Equal(t, "old-avatar-id", stored.AvatarID, "record unchanged")
	assert.Equal(t, "Alice Example", stored.FullName, "record unchanged")
}

func TestUpdateProfile_CoverReplacement(t *testing.T) {
	svc, users, media, user := newProfileFixture(t)

	_, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{
		CoverPath: "new-cover",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"upload:new-cover", "delete:old-cover-id"}, media.calls)
	assert.Equal(t, "new-cover-id", users.users[user.ID].CoverImageID)
}

func TestUpdateProfile_DeleteCover(t *testing.T) {
	svc, users, media, user := newProfileFixture(t)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{
		DeleteCover: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"delete:old-cover-id"}, media.calls)
	assert.Empty(t, updated.CoverImage)
	assert.Empty(t, users.users[user.ID].CoverImageID)
}

func TestUpdateProfile_DeleteCoverWithoutCover(t *testing.T) {
	svc, users, media, _ := newProfileFixture(t)

	bare, err := users.Create(context.Background(), &models.User{
		Username: "bob",
		Email:    "bob@example.com",
		FullName: "Bob",
		Avatar:   "https://cdn.example.com/bob.png",
		AvatarID: "bob-id",
	})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), bare.ID, ProfileUpdateInput{
		DeleteCover: true,
	})
	assert.Equal(t, 400, statusOf(t, err), "deleting an absent cover is no changes")
	assert.Empty(t, media.calls)
}

func TestUpdateProfile_AssetDeleteFailureIsSoft(t *testing.T) {
	svc, users, media, user := newProfileFixture(t)
	media.failDelete = true

	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{
		AvatarPath: "new-avatar",
	})
	require.NoError(t, err, "a failed host-side delete must not abort the update")
	assert.Equal(t, "new-avatar-id", updated.AvatarID)
	assert.Equal(t, "new-avatar-id", users.users[user.ID].AvatarID)
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	svc, users, _, user := newProfileFixture(t)

	_, err := users.Create(context.Background(), &models.User{
		Username: "bob",
		Email:    "bob@example.com",
		FullName: "Bob",
		Avatar:   "https://cdn.example.com/bob.png",
	})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{
		Email: "bob@example.com",
	})
	assert.Equal(t, 409, statusOf(t, err))
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	svc, _, _, _ := newProfileFixture(t)

	_, err := svc.UpdateProfile(context.Background(), primitive.NewObjectID(), ProfileUpdateInput{
		FullName: "Ghost",
	})
	assert.Equal(t, 404, statusOf(t, err))
}
