// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
)

type s3Storage struct {
	client   *s3.Client
	bucket   string
	basePath string
}

var _ IStorage = (*s3Storage)(nil)

func newS3(cfg *Config) (*s3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			scheme := "https://"
			if !cfg.UseTLS {
				scheme = "http://"
			}
			o.BaseEndpoint = aws.String(scheme + strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://"))
			o.UsePathStyle = true
		}
	})
	return &s3Storage{client: client, bucket: cfg.Bucket, basePath: cfg.BasePath}, nil
}

func (s *s3Storage) Put(ctx context.Context, runId, name string, data []byte) error {
	key := objectKey(s.basePath, runId, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeOf(name)),
	})
	if err != nil {
		return errors.Wrapf(err, "put object %s", key)
	}
	return nil
}

func (s *s3Storage) Get(ctx context.Context, runId, name string) ([]byte, error) {
	key := objectKey(s.basePath, runId, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, errors.Wrapf(ErrArtifactNotFound, "%s/%s", runId, name)
		}
		return nil, errors.Wrapf(err, "get object %s", key)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read object %s", key)
	}
	return data, nil
}

func (s *s3Storage) DeleteRun(ctx context.Context, runId string) error {
	prefix := objectKey(s.basePath, runId, "") + "/"
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return errors.Wrapf(err, "list objects %s", prefix)
		}
		for _, obj := range page.Contents {
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return errors.Wrapf(err, "delete object %s", aws.ToString(obj.Key))
			}
		}
		if page.IsTruncated == nil || !*page.IsTruncated {
			return nil
		}
		token = page.NextContinuationToken
	}
}
