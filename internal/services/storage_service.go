// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/tailor-backend/internal/config"
	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// Upload folders.
const (
	FolderDesigns  = "designs"
	FolderFabrics  = "fabrics"
	FolderVariants = "variants"
	FolderTryOn    = "try-on"
	FolderBanners  = "banners"
	FolderStores   = "stores"
)

// ImageStore keeps uploaded media. Deleting an id that does not exist is
// not an error.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, folder, filename string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
	PublicID(rawURL string) string
}

type UploadResult struct {
	URL          string              `json:"url"`
	PublicID     string              `json:"publicId"`
	ResourceType models.ResourceType `json:"resourceType"`
	Size         int64               `json:"size"`
	MimeType     string              `json:"mimeType"`
}

// NewImageStore picks S3 when a bucket is configured and local disk otherwise.
func NewImageStore(cfg *config.Config) (ImageStore, error) {
	if cfg.UseS3() {
		return NewS3ImageStore(cfg.AWS)
	}
	return NewLocalImageStore(cfg.Storage.LocalDir, cfg.Storage.LocalURL)
}

type S3ImageStore struct {
	client  *s3.S3
	bucket  string
	baseURL string
	timeout time.Duration
}

func NewS3ImageStore(cfg config.AWSConfig) (*S3ImageStore, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	// Create AWS session
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.Region)
	}

	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	return &S3ImageStore{
		client:  s3.New(sess),
		bucket:  cfg.S3Bucket,
		baseURL: baseURL,
		timeout: timeout,
	}, nil
}

func (s *S3ImageStore) Upload(ctx context.Context, data []byte, folder, filename string) (*UploadResult, error) {
	key, publicID := objectKey(folder, filename)
	contentType := detectContentType(data, filename)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, utils.External("image store", fmt.Errorf("failed to upload to S3: %w", err))
	}

	return &UploadResult{
		URL:          s.baseURL + "/" + key,
		PublicID:     publicID,
		ResourceType: resourceType(contentType),
		Size:         int64(len(data)),
		MimeType:     contentType,
	}, nil
}

// Delete removes every object stored under publicID, whatever its extension.
func (s *S3ImageStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(publicID),
	})
	if err != nil {
		return utils.External("image store", fmt.Errorf("failed to list S3 objects: %w", err))
	}

	var objects []*s3.ObjectIdentifier
	for _, obj := range out.Contents {
		key := aws.StringValue(obj.Key)
		if key == publicID || strings.HasPrefix(key, publicID+".") {
			objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(key)})
		}
	}
	if len(objects) == 0 {
		return nil
	}

	_, err = s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return utils.External("image store", fmt.Errorf("failed to delete file from S3: %w", err))
	}
	return nil
}

func (s *S3ImageStore) PublicID(rawURL string) string {
	return ExtractPublicID(strings.TrimPrefix(rawURL, s.baseURL))
}

// LocalImageStore writes uploads under a directory served at baseURL. It is
// meant for development.
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalImageStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalImageStore) Upload(ctx context.Context, data []byte, folder, filename string) (*UploadResult, error) {
	key, publicID := objectKey(folder, filename)
	target := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, utils.External("image store", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, utils.External("image store", err)
	}

	contentType := detectContentType(data, filename)
	return &UploadResult{
		URL:          s.baseURL + "/" + key,
		PublicID:     publicID,
		ResourceType: resourceType(contentType),
		Size:         int64(len(data)),
		MimeType:     contentType,
	}, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" || strings.Contains(publicID, "..") {
		return nil
	}
	base := filepath.Join(s.dir, filepath.FromSlash(publicID))
	matches, err := filepath.Glob(base + ".*")
	if err != nil {
		return utils.External("image store", err)
	}
	matches = append(matches, base)
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return utils.External("image store", err)
		}
	}
	return nil
}

func (s *LocalImageStore) PublicID(rawURL string) string {
	return ExtractPublicID(strings.TrimPrefix(rawURL, s.baseURL))
}

// Dir is the directory uploads are written to.
func (s *LocalImageStore) Dir() string {
	return s.dir
}

var versionSegment = regexp.MustCompile(`/v\d+/`)

// ExtractPublicID returns the store id of an uploaded file's URL: the path
// after an optional /v<digits>/ version segment, without its extension.
func ExtractPublicID(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	if loc := versionSegment.FindAllStringIndex(p, -1); len(loc) > 0 {
		p = p[loc[len(loc)-1][1]:]
	} else if i := strings.Index(p, "/upload/"); i >= 0 {
		p = p[i+len("/upload/"):]
	}

	p = strings.Trim(p, "/")
	if ext := path.Ext(p); ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	return p
}

// releaseImage deletes the file behind rawURL. Failures are logged only.
func releaseImage(ctx context.Context, store ImageStore, rawURL string) {
	if store == nil || rawURL == "" {
		return
	}
	publicID := store.PublicID(rawURL)
	if err := store.Delete(ctx, publicID); err != nil {
		logrus.WithError(err).WithField("public_id", publicID).Warn("Failed to release image")
	}
}

func objectKey(folder, filename string) (key, publicID string) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if name == "" {
		name = "upload"
	}
	publicID = fmt.Sprintf("%s-%d", name, time.Now().UnixNano())
	if folder != "" {
		publicID = folder + "/" + publicID
	}
	return publicID + ext, publicID
}

func detectContentType(data []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	}
	return http.DetectContentType(data)
}

func resourceType(contentType string) models.ResourceType {
	if strings.HasPrefix(contentType, "video/") {
		return models.ResourceTypeVideo
	}
	return models.ResourceTypeImage
}
