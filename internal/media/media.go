// Package media загружает картинки из админки в S3-совместимое хранилище.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const defaultExt = "jpg"

// ErrNoFile - в запросе нет данных файла.
var ErrNoFile = errors.New("No file data provided")

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ObjectPutter - часть S3-клиента, нужная для загрузки.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	CDNHost         string
}

// Result - ответ на загрузку.
type Result struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

type Uploader struct {
	client ObjectPutter
	cfg    Config
	now    func() time.Time
}

// NewS3Client собирает клиента со статическими ключами и path-style адресацией.
func NewS3Client(cfg Config) *s3.Client {
	return s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	})
}

func NewUploader(client ObjectPutter, cfg Config) *Uploader {
	return &Uploader{client: client, cfg: cfg, now: time.Now}
}

// Upload декодирует base64 (с data-URI префиксом или без) и кладёт файл в бакет.
func (u *Uploader) Upload(ctx context.Context, data, fileName string) (*Result, error) {
	if data == "" {
		return nil, ErrNoFile
	}
	raw, err := Decode(data)
	if err != nil {
		return nil, err
	}

	ext := Extension(fileName)
	key := ObjectKey(u.now(), uuid.NewString(), ext)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String(ContentType(ext)),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &Result{
		URL:      fmt.Sprintf("https://%s/projects/%s/bucket/%s", u.cfg.CDNHost, u.cfg.AccessKeyID, key),
		FileName: key,
	}, nil
}

// Decode отрезает всё до первой запятой и декодирует base64.
func Decode(data string) ([]byte, error) {
	if i := strings.Index(data, ","); i >= 0 {
		data = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode base64 file: %w", err)
	}
	return raw, nil
}

// Extension - расширение имени файла в нижнем регистре, без точки; jpg, если его нет.
func Extension(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		return defaultExt
	}
	return ext
}

func ContentType(ext string) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "image/jpeg"
}

// ObjectKey: hotel-YYYYMMDD-HHMMSS-<8 символов uuid>.<ext>
func ObjectKey(now time.Time, id, ext string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("hotel-%s-%s.%s", now.Format("20060102-150405"), id, ext)
}
