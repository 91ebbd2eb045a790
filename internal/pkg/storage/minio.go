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

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type minioStorage struct {
	client   *minio.Client
	bucket   string
	basePath string
}

var _ IStorage = (*minioStorage)(nil)

func newMinio(cfg *Config) (*minioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseTLS,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}
	return &minioStorage{client: client, bucket: cfg.Bucket, basePath: cfg.BasePath}, nil
}

func (s *minioStorage) Put(ctx context.Context, runId, name string, data []byte) error {
	key := objectKey(s.basePath, runId, name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeOf(name),
	})
	if err != nil {
		return errors.Wrapf(err, "put object %s", key)
	}
	return nil
}

func (s *minioStorage) Get(ctx context.Context, runId, name string) ([]byte, error) {
	key := objectKey(s.basePath, runId, name)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get object %s", key)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, errors.Wrapf(ErrArtifactNotFound, "%s/%s", runId, name)
		}
		return nil, errors.Wrapf(err, "read object %s", key)
	}
	return data, nil
}

func (s *minioStorage) DeleteRun(ctx context.Context, runId string) error {
	prefix := objectKey(s.basePath, runId, "") + "/"
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return errors.Wrapf(obj.Err, "list objects %s", prefix)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return errors.Wrapf(err, "remove object %s", obj.Key)
		}
	}
	return nil
}
