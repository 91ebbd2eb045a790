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
	"testing"

	"github.com/pkg/errors"
)

func newTestLocal(t *testing.T) IStorage {
	t.Helper()
	s, err := NewStorage(&Config{Provider: Local, LocalPath: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLocalStorage_PutGet(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	data := []byte(`[{"id":"TC-001"}]`)

	if err := s.Put(ctx, "run-1", "testcases.json", data); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "run-1", "testcases.json")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}
}

func TestLocalStorage_PutReplaces(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := s.Put(ctx, "run-1", "testcases.json", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "run-1", "testcases.json", []byte("new")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "run-1", "testcases.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("Get() = %q, want %q", got, "new")
	}
}

func TestLocalStorage_GetMissing(t *testing.T) {
	s := newTestLocal(t)
	_, err := s.Get(context.Background(), "run-1", "testcases.json")
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("Get() error = %v, want ErrArtifactNotFound", err)
	}
}

func TestLocalStorage_DeleteRun(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := s.Put(ctx, "run-1", "testcases.json", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteRun(ctx, "run-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "run-1", "testcases.json"); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrArtifactNotFound", err)
	}
	// Deleting a run with no artifacts is not an error.
	if err := s.DeleteRun(ctx, "run-2"); err != nil {
		t.Fatal(err)
	}
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := s.Put(ctx, "../run-1", "testcases.json", []byte("x")); err == nil {
		t.Error("Put() with traversal run id should fail")
	}
	if _, err := s.Get(ctx, "run-1", "../../etc/passwd"); err == nil {
		t.Error("Get() with traversal name should fail")
	}
	if err := s.DeleteRun(ctx, ".."); err == nil {
		t.Error("DeleteRun() with traversal run id should fail")
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		basePath string
		want     string
	}{
		{"", "run-1/testcases.json"},
		{"artifacts", "artifacts/run-1/testcases.json"},
		{"/artifacts/", "artifacts/run-1/testcases.json"},
	}
	for _, tt := range tests {
		if got := objectKey(tt.basePath, "run-1", "testcases.json"); got != tt.want {
			t.Errorf("objectKey(%q) = %q, want %q", tt.basePath, got, tt.want)
		}
	}
}

func TestContentTypeOf(t *testing.T) {
	if got := contentTypeOf("testcases.json"); got != "application/json" {
		t.Errorf("contentTypeOf(json) = %q", got)
	}
	if got := contentTypeOf("testcases.csv"); got != "text/csv" {
		t.Errorf("contentTypeOf(csv) = %q", got)
	}
	if got := contentTypeOf("blob"); got != "application/octet-stream" {
		t.Errorf("contentTypeOf(blob) = %q", got)
	}
}

func TestNewStorage_UnsupportedProvider(t *testing.T) {
	if _, err := NewStorage(&Config{Provider: "gcs"}); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
