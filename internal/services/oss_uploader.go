package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modelmarket-backend/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// OSSUploader abstracts asset uploads so handlers can be tested without
// a live bucket.
type OSSUploader interface {
	UploadFile(localPath string) (string, error)
}

// STSClientManager uploads listing assets to OSS using short-lived STS
// credentials.
type STSClientManager struct {
	config *config.Config
}

func NewSTSClientManager() *STSClientManager {
	cfg, _ := config.LoadConfig()
	return &STSClientManager{config: cfg}
}

func (m *STSClientManager) UploadFile(localPath string) (string, error) {
	return m.UploadWithSTS(localPath)
}

const multipartThreshold = 100 * 1024 * 1024

// UploadWithSTS uploads a local file under thumbnails/YYYY/MM/uuid.ext
// and returns the public URL. Files over 100MB go through multipart
// upload; a failed upload is retried once with fresh credentials.
func (m *STSClientManager) UploadWithSTS(localPath string) (string, error) {
	creds, err := GetOSSTSToken()
	if err != nil {
		return "", fmt.Errorf("failed to get STS token: %v", err)
	}

	bucket, err := m.openBucket(creds)
	if err != nil {
		return "", err
	}

	now := time.Now()
	objectKey := fmt.Sprintf("thumbnails/%d/%02d/%s%s",
		now.Year(), now.Month(), uuid.New().String(), filepath.Ext(localPath))

	fileInfo, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %v", err)
	}

	uploadErr := putObject(bucket, objectKey, localPath, fileInfo.Size())
	if uploadErr != nil {
		// Retry once with refreshed credentials in case the token expired
		// mid-upload.
		creds, err = GetOSSTSToken()
		if err == nil {
			if bucket, err = m.openBucket(creds); err == nil {
				uploadErr = putObject(bucket, objectKey, localPath, fileInfo.Size())
			}
		}
	}
	if uploadErr != nil {
		return "", fmt.Errorf("upload failed after retry: %v", uploadErr)
	}

	return m.publicURL(objectKey), nil
}

func (m *STSClientManager) openBucket(creds *STSCredentials) (*oss.Bucket, error) {
	client, err := oss.New(
		m.config.OSSEndpoint,
		creds.AccessKeyId,
		creds.AccessKeySecret,
		oss.SecurityToken(creds.SecurityToken),
		oss.Timeout(60, 120),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %v", err)
	}

	bucket, err := client.Bucket(m.config.OSSBucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %v", err)
	}
	return bucket, nil
}

func putObject(bucket *oss.Bucket, objectKey, localPath string, size int64) error {
	if size > multipartThreshold {
		return bucket.UploadFile(objectKey, localPath, 1024*1024, oss.Routines(3), oss.Checkpoint(true, ""))
	}
	return bucket.PutObjectFromFile(objectKey, localPath)
}

func (m *STSClientManager) publicURL(objectKey string) string {
	endpoint := m.config.OSSEndpoint
	scheme := "https"
	if after, ok := strings.CutPrefix(endpoint, "http://"); ok {
		scheme, endpoint = "http", after
	} else if after, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint = after
	}
	return fmt.Sprintf("%s://%s.%s/%s", scheme, m.config.OSSBucketName, endpoint, objectKey)
}
