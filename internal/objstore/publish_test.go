package objstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

type fakePutter struct {
	objects map[string]string // key -> content type
	bodies  map[string]string
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.objects[key] = aws.ToString(in.ContentType)
	f.bodies[key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix, rel, want string
	}{
		{"", "claims.parquet", "claims.parquet"},
		{"lake/bronze", "claims.parquet", "lake/bronze/claims.parquet"},
		{"/lake/", "claims/_delta_log/00000000000000000000.json", "lake/claims/_delta_log/00000000000000000000.json"},
	}
	for _, tt := range tests {
		if got := Key(tt.prefix, tt.rel); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.prefix, tt.rel, got, tt.want)
		}
	}
}

func TestNewClient(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_REGION", "us-east-2")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_MAX_ATTEMPTS", "7")
	t.Setenv("AWS_ENDPOINT_URL", "")
	t.Setenv("AWS_ENDPOINT_URL_S3", "")

	client, err := NewClient(context.Background(), "http://localhost:9000", true)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	o := client.Options()
	if o.Region != "us-east-2" {
		t.Errorf("region = %q", o.Region)
	}
	if !o.UsePathStyle {
		t.Error("path-style addressing not set")
	}
	if aws.ToString(o.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("endpoint = %q", aws.ToString(o.BaseEndpoint))
	}
	if o.RetryMaxAttempts != 7 {
		t.Errorf("retry max attempts = %d, want 7 from the shared config", o.RetryMaxAttempts)
	}

	client, err = NewClient(context.Background(), "", false)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if o := client.Options(); o.UsePathStyle || o.BaseEndpoint != nil {
		t.Errorf("default client has path-style %v endpoint %v", o.UsePathStyle, aws.ToString(o.BaseEndpoint))
	}
}

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"psp_enrollments.parquet":                     "PAR1",
		"claims/part-00000-x.snappy.parquet":          "PAR1",
		"claims/_delta_log/00000000000000000000.json": "{}",
		"psp_cases.parquet.tmp":                       "partial",
	}
	for rel, body := range files {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	fake := &fakePutter{objects: map[string]string{}, bodies: map[string]string{}}
	summary, err := Publish(context.Background(), fake, Options{Dir: dir, Bucket: "lake", Prefix: "bronze"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(summary.Objects) != 3 {
		t.Fatalf("uploaded %d objects, want 3 (tmp skipped)", len(summary.Objects))
	}

	var keys []string
	for k := range fake.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	want := []string{
		"bronze/claims/_delta_log/00000000000000000000.json",
		"bronze/claims/part-00000-x.snappy.parquet",
		"bronze/psp_enrollments.parquet",
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %q, want %q", i, keys[i], want[i])
		}
	}
	if ct := fake.objects["bronze/claims/_delta_log/00000000000000000000.json"]; ct != contentTypeJSON {
		t.Errorf("delta log content type = %q", ct)
	}
	if ct := fake.objects["bronze/psp_enrollments.parquet"]; ct != contentTypeParquet {
		t.Errorf("parquet content type = %q", ct)
	}
	if fake.bodies["bronze/psp_enrollments.parquet"] != "PAR1" {
		t.Error("body not uploaded")
	}
	if summary.TotalBytes() != 10 {
		t.Errorf("TotalBytes = %d, want 10", summary.TotalBytes())
	}
}
