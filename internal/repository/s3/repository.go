// Package s3 хранит документ коллекции заметок одним объектом в S3-совместимом хранилище.
// Для тестов используется gofakes3.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"notes-store/internal/repository"
	"notes-store/internal/repository/collection"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// DefaultKey ключ объекта с коллекцией по умолчанию
const DefaultKey = "notes.json"

// Config настройки подключения к хранилищу
type Config struct {
	// Endpoint адрес S3-совместимого сервиса, пустой для AWS S3
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Key             string
	// UsePathStyle нужен для MinIO и gofakes3
	UsePathStyle bool
}

var _ collection.Medium = (*medium)(nil)

type medium struct {
	client *s3.Client
	bucket string
	key    string
}

// NewClient создает S3 клиент по конфигурации
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	opts = append(opts, awsconfig.WithRegion(cfg.Region))
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("awsconfig.LoadDefaultConfig: %w", err)
	}

	return s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// NewRepository создает репозиторий заметок, хранящий коллекцию в объекте bucket/key
func NewRepository(client *s3.Client, bucket, key string, opts ...collection.Option) repository.NoteRepository {
	if key == "" {
		key = DefaultKey
	}
	return collection.NewRepository(&medium{client: client, bucket: bucket, key: key}, opts...)
}

// Load скачивает объект целиком
func (m *medium) Load(ctx context.Context) ([]byte, error) {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, collection.ErrNotExist
		}
		return nil, fmt.Errorf("get object %s/%s: %w", m.bucket, m.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", m.bucket, m.key, err)
	}
	return data, nil
}

// Save перезаписывает объект целиком
func (m *medium) Save(ctx context.Context, data []byte) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", m.bucket, m.key, err)
	}
	return nil
}
