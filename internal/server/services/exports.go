package services

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/server/auth"
	sc "github.com/dmitrijs2005/valuationdesk/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const exportsPrefix = "exports"

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportService hands out presigned object-storage URLs for archiving
// exported reports. Keys are scoped by client.
type ExportService struct {
	config *sc.Config
	now    func() time.Time
}

func NewExportService(config *sc.Config) *ExportService {
	return &ExportService{config: config, now: time.Now}
}

func clientPrefix(clientID string) string {
	return exportsPrefix + "/" + unsafeKeyChars.ReplaceAllString(clientID, "_") + "/"
}

// StorageKey returns a fresh object key for fileName:
// exports/<client>/<yyyy>/<mm>/<dd>/<uuid>-<file>.
func (s *ExportService) StorageKey(clientID, fileName string) string {
	d := s.now().UTC()
	name := unsafeKeyChars.ReplaceAllString(path.Base(strings.ReplaceAll(fileName, "\\", "/")), "_")
	return fmt.Sprintf("%s%04d/%02d/%02d/%v-%s", clientPrefix(clientID), d.Year(), d.Month(), d.Day(), uuid.New(), name)
}

func (s *ExportService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

func (s *ExportService) validity() time.Duration {
	if s.config.PresignValidityDuration > 0 {
		return s.config.PresignValidityDuration
	}
	return 15 * time.Minute
}

// PresignUpload returns a new key for fileName and a presigned PUT URL for it.
func (s *ExportService) PresignUpload(ctx context.Context, p auth.Principal, fileName string) (key string, url string, err error) {
	if strings.TrimSpace(fileName) == "" {
		return "", "", fmt.Errorf("%w: fileName is required", common.ErrorValidation)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key = s.StorageKey(p.ClientID, fileName)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.validity()))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignDownload returns a presigned GET URL for key. Keys of other
// clients yield common.ErrorForbidden.
func (s *ExportService) PresignDownload(ctx context.Context, p auth.Principal, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: key is required", common.ErrorValidation)
	}
	if !strings.HasPrefix(key, clientPrefix(p.ClientID)) || strings.Contains(key, "..") {
		return "", common.ErrorForbidden
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.validity()))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
