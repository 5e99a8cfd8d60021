package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/vidtube/vidtube-backend/internal/models"
)

// ErrAssetDeleteFailed marks a failed removal on the media host. Callers decide
// per call site whether to propagate it or log and continue.
var ErrAssetDeleteFailed = errors.New("failed to delete asset from media host")

const mediaCallTimeout = 30 * time.Second

// MediaUploader is the media-host capability the orchestration layer depends
// on.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (*models.AssetRef, error)
	Delete(ctx context.Context, publicIDOrURL string) error
}

// MediaService uploads and deletes assets on Cloudinary.
type MediaService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewMediaService(cloudName, apiKey, apiSecret, folder string) (*MediaService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &MediaService{cld: cld, folder: folder}, nil
}

// Upload sends a staged local file to Cloudinary and returns its reference.
// The local file is removed on every path, success or failure. An empty path
// means no file was supplied and yields a nil ref.
func (s *MediaService) Upload(ctx context.Context, localPath string) (*models.AssetRef, error) {
	if localPath == "" {
		return nil, nil
	}
	defer os.Remove(localPath)

	ctx, cancel := context.WithTimeout(ctx, mediaCallTimeout)
	defer cancel()

	result, err := s.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return &models.AssetRef{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// Delete removes an asset from Cloudinary by public ID, or by URL when only
// the URL was retained.
func (s *MediaService) Delete(ctx context.Context, publicIDOrURL string) error {
	publicID := publicIDOrURL
	if strings.HasPrefix(publicID, "http") {
		publicID = PublicIDFromURL(publicID)
	}
	if publicID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, mediaCallTimeout)
	defer cancel()

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssetDeleteFailed, err)
	}
	return nil
}

// PublicIDFromURL derives the Cloudinary public ID from a delivery URL:
// the last path segment with its extension stripped.
func PublicIDFromURL(url string) string {
	if url == "" {
		return ""
	}
	segment := url[strings.LastIndex(url, "/")+1:]
	if idx := strings.LastIndex(segment, "."); idx > 0 {
		segment = segment[:idx]
	}
	return segment
}

// StageUpload copies a multipart part to a uniquely named file under dir so
// the upload path can work from the filesystem. The caller owns the returned
// path; MediaService.Upload removes it.
func StageUpload(fileHeader *multipart.FileHeader, dir string) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	path := filepath.Join(dir, uuid.NewString()+filepath.Ext(fileHeader.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to stage uploaded file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to stage uploaded file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to stage uploaded file: %w", err)
	}

	return path, nil
}
