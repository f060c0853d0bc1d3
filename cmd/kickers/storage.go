package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fridaykickers/kickers/internal/config"
	"github.com/fridaykickers/kickers/internal/errors"
	"github.com/fridaykickers/kickers/pkg/offline"
)

// openStorage opens the configured cache backend. The returned func
// releases it.
func (e *env) openStorage(ctx context.Context) (offline.Storage, func() error, error) {
	c := e.cfg.Cache
	switch c.Backend {
	case config.BackendMemory:
		return offline.NewMemoryStorage(), func() error { return nil }, nil

	case config.BackendBolt:
		st, err := offline.OpenBolt(c.BoltPath)
		if err != nil {
			return nil, nil, errors.New("K300").
				WithDetail("bolt file " + c.BoltPath).
				WithSuggestion("Another kickers process may hold the file open").
				Wrap(err)
		}
		return st, st.Close, nil

	case config.BackendS3:
		var opts []func(*awsconfig.LoadOptions) error
		if c.S3.Region != "" {
			opts = append(opts, awsconfig.WithRegion(c.S3.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, errors.New("K300").WithDetail("load AWS configuration").Wrap(err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if c.S3.Endpoint != "" {
				o.BaseEndpoint = aws.String(c.S3.Endpoint)
				o.UsePathStyle = true
			}
		})
		return offline.NewS3Storage(client, c.S3.Bucket, c.S3.Prefix), func() error { return nil }, nil
	}
	return nil, nil, errors.New("K103").WithDetail(c.Backend)
}
