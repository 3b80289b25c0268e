// Package sthree implements the storage.Store interface on an
// S3-compatible API. datamgr uses it against Cloudflare R2 buckets.
package sthree

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/openenergyoutlook/datamgr/pkg/storage"
	"github.com/openenergyoutlook/datamgr/pkg/storage/status"
)

// Option customizes the bucket store.
type Option func(*s3FS)

// Bucket sets the bucket this store reads and writes.
func Bucket(bucket string) Option {
	return func(fs *s3FS) {
		fs.bucket = bucket
	}
}

// AWSConfig sets the client configuration.
func AWSConfig(cfg *aws.Config) Option {
	return func(fs *s3FS) {
		fs.awsConfig = cfg
	}
}

// R2Config builds the client configuration for a Cloudflare R2 account.
// R2 exposes the S3 API at a per-account endpoint and ignores the
// region, which it expects to be "auto".
func R2Config(accountID, accessKey, secretKey string) *aws.Config {
	return aws.NewConfig().
		WithEndpoint(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)).
		WithRegion("auto").
		WithS3ForcePathStyle(true).
		WithCredentials(credentials.NewStaticCredentials(accessKey, secretKey, ""))
}

// New creates a store for a single bucket.
func New(option Option, options ...Option) storage.Store {
	fs := new(s3FS)
	option(fs)
	for _, apply := range options {
		apply(fs)
	}

	fs.s3 = s3.New(session.Must(session.NewSession(fs.awsConfig)))
	fs.uploader = s3manager.NewUploaderWithClient(fs.s3)
	return fs
}

type s3FS struct {
	bucket    string
	awsConfig *aws.Config
	s3        *s3.S3
	uploader  *s3manager.Uploader
}

func (s *s3FS) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if rerr, ok := err.(awserr.RequestFailure); ok && rerr.StatusCode() == 404 {
			return false, nil
		}
		return false, fmt.Errorf("head request for %q: %v", key, err)
	}
	return true, nil
}

func (s *s3FS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if rerr, ok := err.(awserr.RequestFailure); ok && rerr.StatusCode() == 404 {
			return nil, status.ErrNotFound.WrapMessage(key)
		}
		return nil, err
	}
	return obj.Body, nil
}

func (s *s3FS) Put(ctx context.Context, key string, rdr io.Reader, exclusive bool) error {
	if exclusive {
		has, err := s.Has(ctx, key)
		if err != nil {
			return err
		}
		if has {
			return status.ErrExists.WrapMessage(key)
		}
	}
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   rdr,
	})
	return err
}

func (s *s3FS) Delete(ctx context.Context, key string) error {
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *s3FS) BatchDelete(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += storage.MaxBatchDelete {
		end := start + storage.MaxBatchDelete
		if end > len(keys) {
			end = len(keys)
		}
		chunk := make([]*s3.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			chunk = append(chunk, &s3.ObjectIdentifier{Key: aws.String(key)})
		}
		out, err := s.s3.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3.Delete{Objects: chunk, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return err
		}
		if len(out.Errors) > 0 {
			details := make([]string, 0, len(out.Errors))
			for _, e := range out.Errors {
				details = append(details, fmt.Sprintf("%s: %s (%s)",
					aws.StringValue(e.Key), aws.StringValue(e.Message), aws.StringValue(e.Code)))
			}
			return status.ErrPartialBatchDelete.WrapMessage(strings.Join(details, "; "))
		}
	}
	return nil
}

func (s *s3FS) Keys(ctx context.Context) ([]string, error) {
	versions, err := s.KeyVersions(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(versions))
	for _, v := range versions {
		keys = append(keys, v.Key)
	}
	return keys, nil
}

func (s *s3FS) KeyVersions(ctx context.Context) ([]storage.ObjectVersion, error) {
	var versions []storage.ObjectVersion
	eachPage := func(page *s3.ListObjectsV2Output, more bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if key == "" {
				continue
			}
			versions = append(versions, storage.ObjectVersion{
				Key:          key,
				LastModified: aws.TimeValue(obj.LastModified),
			})
		}
		return more
	}
	params := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if err := s.s3.ListObjectsV2PagesWithContext(ctx, params, eachPage); err != nil {
		return nil, err
	}
	return versions, nil
}

// Copy performs a server-side copy when the source is a bucket on the
// same endpoint; cross-backend copies fall back to streaming.
func (s *s3FS) Copy(ctx context.Context, src storage.Store, srcKey, dstKey string) error {
	source, ok := src.(*s3FS)
	if !ok {
		return status.ErrNotSupported.WrapMessage("server-side copy requires an s3 source")
	}
	_, err := s.s3.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(url.PathEscape(source.bucket + "/" + srcKey)),
	})
	return err
}

func (s *s3FS) String() string {
	return "s3@" + s.bucket
}
