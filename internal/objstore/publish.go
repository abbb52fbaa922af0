// Package objstore publishes the bronze directory to S3-compatible storage.
package objstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const (
	contentTypeParquet = "application/octet-stream"
	contentTypeJSON    = "application/json"
)

// Putter is the subset of the S3 client used for uploads.
type Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options selects the upload target.
type Options struct {
	Dir    string // local bronze directory
	Bucket string
	Prefix string
}

// Object is one uploaded file.
type Object struct {
	Key   string
	Bytes int64
}

// Summary reports a publish run.
type Summary struct {
	Bucket   string
	Objects  []Object
	Duration time.Duration
}

// TotalBytes sums the uploaded object sizes.
func (s *Summary) TotalBytes() int64 {
	var n int64
	for _, o := range s.Objects {
		n += o.Bytes
	}
	return n
}

// NewClient builds an S3 client from the default AWS config chain. A
// non-empty endpoint overrides the service endpoint, e.g. for MinIO or
// LocalStack, which usually also need path-style addressing.
func NewClient(ctx context.Context, endpoint string, pathStyle bool) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Key returns the object key for a file at rel (relative to the bronze dir).
func Key(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// ContentType picks the upload content type from the file name.
func ContentType(name string) string {
	if strings.HasSuffix(name, ".json") {
		return contentTypeJSON
	}
	return contentTypeParquet
}

// Publish uploads every file under opts.Dir, preserving the directory layout
// below opts.Prefix. Temporary files left by interrupted ingests are skipped.
func Publish(ctx context.Context, client Putter, opts Options, log zerolog.Logger) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Bucket: opts.Bucket}

	err := filepath.WalkDir(opts.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".tmp") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(opts.Dir, p)
		if err != nil {
			return err
		}
		obj, err := upload(ctx, client, opts.Bucket, Key(opts.Prefix, rel), p)
		if err != nil {
			return err
		}
		log.Info().Str("key", obj.Key).Int64("bytes", obj.Bytes).Msg("uploaded")
		summary.Objects = append(summary.Objects, obj)
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.Duration = time.Since(start)
	log.Info().
		Str("bucket", opts.Bucket).
		Int("objects", len(summary.Objects)).
		Int64("bytes", summary.TotalBytes()).
		Str("duration", summary.Duration.String()).
		Msg("publish complete")
	return summary, nil
}

func upload(ctx context.Context, client Putter, bucket, key, p string) (Object, error) {
	f, err := os.Open(p)
	if err != nil {
		return Object{}, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return Object{}, fmt.Errorf("stat %s: %w", p, err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String(ContentType(p)),
	})
	if err != nil {
		return Object{}, fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return Object{Key: key, Bytes: stat.Size()}, nil
}
