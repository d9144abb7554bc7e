package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// SpacesService stores badge icon images on DigitalOcean Spaces.
type SpacesService struct {
	client   *s3.Client
	bucket   string
	region   string
	IconRoot string
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, iconRoot string) *SpacesService {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		panic(fmt.Sprintf("Unable to load Spaces config: %v", err))
	}

	client := s3.NewFromConfig(cfg)

	return &SpacesService{
		client:   client,
		bucket:   bucket,
		region:   region,
		IconRoot: strings.TrimPrefix(iconRoot, "/"),
	}
}

// UploadBadgeIcon stores an icon under the badge's slug and returns
// the object key. Icons are public: the bucket serves them straight to
// clients via IconURL.
func (s *SpacesService) UploadBadgeIcon(ctx context.Context, slug string, data []byte, contentType string) (string, error) {
	ext := "png"
	switch contentType {
	case "image/jpeg":
		ext = "jpg"
	case "image/webp":
		ext = "webp"
	}

	key := fmt.Sprintf("%s/%s.%s", s.IconRoot, slug, ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload badge icon %s: %w", slug, err)
	}
	return key, nil
}

// DeleteBadgeIcon removes a stored icon by its object key.
func (s *SpacesService) DeleteBadgeIcon(ctx context.Context, iconPath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &iconPath,
	})
	if err != nil {
		return fmt.Errorf("failed to delete badge icon %s: %w", iconPath, err)
	}
	return nil
}

// IconURL builds the public URL for a stored icon key. Empty in,
// empty out, so callers can pass the column value through unchecked.
func (s *SpacesService) IconURL(iconPath string) string {
	if iconPath == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, iconPath)
}

func (s *SpacesService) GetBucket() string {
	return s.bucket
}

func (s *SpacesService) GetRegion() string {
	return s.region
}
