package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Storage.
type S3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// markerKey is written into every generation so empty ones are listed.
const markerKey = ".generation"

// S3Storage keeps generations in an S3 bucket under
// <prefix><generation>/<escaped request key>.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	storage := offline.NewS3Storage(s3.NewFromConfig(cfg), "my-bucket", "cache/")
//
// S3 has no multi-object transactions: PutAll writes entries one by one
// and deletes what it wrote if any write fails.
type S3Storage struct {
	client S3API
	bucket string
	prefix string

	mu      sync.Mutex
	handles map[string]*s3Bucket
}

// NewS3Storage creates a storage in bucket under prefix.
func NewS3Storage(client S3API, bucket, prefix string) *S3Storage {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Storage{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		handles: make(map[string]*s3Bucket),
	}
}

// Open writes the generation marker and returns a handle.
func (s *S3Storage) Open(ctx context.Context, name string) (Bucket, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + name + "/" + markerKey),
		Body:        bytes.NewReader(nil),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return nil, fmt.Errorf("offline: open generation %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.handles[name]; ok && !b.isDropped() {
		return b, nil
	}
	b := &s3Bucket{storage: s, name: name}
	s.handles[name] = b
	return b, nil
}

// Names lists the generation prefixes, sorted.
func (s *S3Storage) Names(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(s.prefix),
		Delimiter: aws.String("/"),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("offline: list generations: %w", err)
		}
		for _, p := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(p.Prefix), s.prefix), "/")
			if name != "" {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Drop deletes every object of a generation, marker included.
func (s *S3Storage) Drop(ctx context.Context, name string) error {
	s.mu.Lock()
	if b, ok := s.handles[name]; ok {
		b.dropped.Store(true)
		delete(s.handles, name)
	}
	s.mu.Unlock()

	objects, err := s.list(ctx, s.prefix+name+"/")
	if err != nil {
		return err
	}
	for _, key := range objects {
		if err := s.delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Storage) list(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("offline: list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *S3Storage) delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("offline: delete %s: %w", key, err)
	}
	return nil
}

type s3Bucket struct {
	storage *S3Storage
	name    string
	dropped atomic.Bool
}

// Name returns the generation name.
func (b *s3Bucket) Name() string { return b.name }

func (b *s3Bucket) isDropped() bool { return b.dropped.Load() }

func (b *s3Bucket) objectKey(key string) string {
	return b.storage.prefix + b.name + "/" + url.PathEscape(key)
}

// Match fetches and decodes the object for key.
func (b *s3Bucket) Match(ctx context.Context, key string) (*Entry, bool, error) {
	if b.isDropped() {
		return nil, false, nil
	}
	out, err := b.storage.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.storage.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("offline: get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("offline: read %s: %w", key, err)
	}
	e := new(Entry)
	if err := json.Unmarshal(data, e); err != nil {
		return nil, false, fmt.Errorf("offline: decode %s: %w", key, err)
	}
	return e, true, nil
}

// Put writes the object for key. S3 object writes are atomic.
func (b *s3Bucket) Put(ctx context.Context, key string, e *Entry) error {
	if b.isDropped() {
		return ErrDropped
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("offline: encode %s: %w", key, err)
	}
	// A single PutObject replaces the object atomically.
	_, err = b.storage.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.storage.bucket),
		Key:         aws.String(b.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("offline: put %s: %w", key, err)
	}
	return nil
}

// PutAll writes each entry, deleting what it wrote if one fails.
func (b *s3Bucket) PutAll(ctx context.Context, entries map[string]*Entry) error {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		if err := b.Put(ctx, key, entries[key]); err != nil {
			for _, written := range keys[:i] {
				_ = b.storage.delete(ctx, b.objectKey(written))
			}
			return err
		}
	}
	return nil
}

// Keys lists the generation's keys without the marker.
func (b *s3Bucket) Keys(ctx context.Context) ([]string, error) {
	prefix := b.storage.prefix + b.name + "/"
	objects, err := b.storage.list(ctx, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		escaped := strings.TrimPrefix(obj, prefix)
		if escaped == markerKey {
			continue
		}
		key, err := url.PathUnescape(escaped)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
