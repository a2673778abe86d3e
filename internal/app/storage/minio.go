package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// Файл не похож на фотографию - объявления принимают только изображения
var ErrUnsupportedImage = errors.New("неподдерживаемый формат изображения")

// Content type по расширению; всё остальное отклоняется
var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MinIOClient хранит фотографии объявлений (одна на объявление)
type MinIOClient struct {
	client     *minio.Client
	bucketName string
}

func NewMinIOClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOClient, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// Bucket для фотографий создается при первом запуске
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logrus.Infof("Bucket %s created", bucketName)
	}

	return &MinIOClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// UploadListingPhoto загружает фотографию объявления и возвращает имя объекта.
// Имя генерируется на латинице, оригинальное (возможно кириллическое)
// имя файла в хранилище не попадает.
func (m *MinIOClient) UploadListingPhoto(ctx context.Context, photo []byte, originalFilename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return "", ErrUnsupportedImage
	}

	objectName := fmt.Sprintf("listing_%s_%d%s",
		uuid.New().String()[:8],
		time.Now().Unix(),
		ext)

	reader := bytes.NewReader(photo)
	_, err := m.client.PutObject(ctx, m.bucketName, objectName, reader, int64(len(photo)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	logrus.Infof("Listing photo %s uploaded", objectName)
	return objectName, nil
}

// DeleteListingPhoto убирает старую фотографию при замене или удалении
func (m *MinIOClient) DeleteListingPhoto(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	logrus.Infof("Listing photo %s deleted", objectName)
	return nil
}

// PhotoURL возвращает временную ссылку на фотографию (1 час).
// Bucket закрытый, наружу отдаются только presigned-ссылки.
func (m *MinIOClient) PhotoURL(ctx context.Context, objectName string) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucketName, objectName, time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}
