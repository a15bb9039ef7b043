package services

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/foxxcyber/shopvoice/internal/models"
)

//go:embed data/*.json
var defaultData embed.FS

// Dataset file names, both in the embedded defaults and under the bucket prefix
const (
	ProductsFile    = "products.json"
	CategoriesFile  = "categories.json"
	SeasonalFile    = "seasonal.json"
	SubstitutesFile = "substitutes.json"
)

// DatasetFiles lists every file that makes up the reference data
var DatasetFiles = []string{ProductsFile, CategoriesFile, SeasonalFile, SubstitutesFile}

// DefaultDatasets returns the reference data compiled into the binary
func DefaultDatasets() (*models.Datasets, error) {
	return decodeDatasets(func(name string) ([]byte, error) {
		return defaultData.ReadFile("data/" + name)
	})
}

// DefaultDatasetFile returns the raw embedded content of one dataset file
func DefaultDatasetFile(name string) ([]byte, error) {
	return defaultData.ReadFile("data/" + name)
}

func decodeDatasets(read func(name string) ([]byte, error)) (*models.Datasets, error) {
	d := &models.Datasets{}
	targets := map[string]any{
		ProductsFile:    &d.Catalog,
		CategoriesFile:  &d.Categories,
		SeasonalFile:    &d.Seasonal,
		SubstitutesFile: &d.Substitutes,
	}
	for _, name := range DatasetFiles {
		data, err := read(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := json.Unmarshal(data, targets[name]); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
	}
	return d, nil
}

// DatasetStorage keeps the reference datasets in an S3-compatible bucket
type DatasetStorage struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
}

// NewDatasetStorage creates a dataset store; prefix is the object key prefix
func NewDatasetStorage(endpoint, accessKey, secretKey, bucketName, region, prefix string, useSSL bool) (*DatasetStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &DatasetStorage{
		client:     client,
		bucketName: bucketName,
		region:     region,
		prefix:     prefix,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *DatasetStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{
			Region: s.region,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Upload stores one dataset file under the prefix
func (s *DatasetStorage) Upload(ctx context.Context, name string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("dataset %s is not valid JSON", name)
	}
	_, err := s.client.PutObject(ctx, s.bucketName, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

// Download reads one dataset file from the bucket
func (s *DatasetStorage) Download(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", name, err)
	}
	return data, nil
}

// Load reads all datasets from the bucket. A file missing from the bucket
// falls back to its embedded default.
func (s *DatasetStorage) Load(ctx context.Context) (*models.Datasets, error) {
	return decodeDatasets(func(name string) ([]byte, error) {
		data, err := s.Download(ctx, name)
		if err == nil {
			return data, nil
		}
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			log.Info().Str("dataset", name).Msg("dataset missing from bucket, using embedded default")
			return DefaultDatasetFile(name)
		}
		return nil, err
	})
}

func (s *DatasetStorage) key(name string) string {
	return path.Join(s.prefix, name)
}
