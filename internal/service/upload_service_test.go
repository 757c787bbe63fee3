package service

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"crack-go/internal/storage"
	"crack-go/pkg/analyzer"
	"crack-go/pkg/redis_limiter"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{7}, 64)...)

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(ctx context.Context, image []byte, contentType string) (*analyzer.Result, error) {
	return nil, errors.New("detector offline")
}

type fakeLimiter struct {
	mu       sync.Mutex
	err      error
	acquired int
	released int
}

func (f *fakeLimiter) Acquire(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.acquired++
	return nil
}

func (f *fakeLimiter) Release(ctx context.Context, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
}

func newUploadService(t *testing.T, a analyzer.Analyzer, limiter SlotLimiter, maxSize int64) (*UploadService, *storage.LocalStore, *test.Hook) {
	t.Helper()
	store, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "uploads"), "/uploads")
	require.NoError(t, err)
	if a == nil {
		a = analyzer.NewStubAnalyzer(rand.New(rand.NewPCG(1, 1)))
	}
	logger, hook := test.NewNullLogger()
	return NewUploadService(store, a, limiter, maxSize, logger), store, hook
}

func storedFiles(t *testing.T, store *storage.LocalStore) []string {
	t.Helper()
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploadService_StoresByteIdenticalImage(t *testing.T) {
	svc, store, _ := newUploadService(t, nil, nil, 10<<20)

	res, err := svc.Upload(context.Background(), 1, UploadInput{
		Filename:    "Crack.PNG",
		ContentType: "image/png",
		Body:        bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)

	assert.Equal(t, "Crack.PNG", res.OriginalFilename)
	assert.True(t, strings.HasPrefix(res.Filename, "image-"))
	assert.True(t, strings.HasSuffix(res.Filename, ".png"))
	assert.Equal(t, "/uploads/"+res.Filename, res.Path)
	require.NotNil(t, res.Analysis)
	assert.NoError(t, res.Analysis.Validate())

	onDisk, err := os.ReadFile(filepath.Join(store.Dir(), res.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, onDisk)
}

func TestUploadService_SniffsOctetStream(t *testing.T) {
	svc, _, _ := newUploadService(t, nil, nil, 10<<20)

	_, err := svc.Upload(context.Background(), 1, UploadInput{
		Filename:    "crack",
		ContentType: "application/octet-stream",
		Body:        bytes.NewReader(pngBytes),
	})
	assert.NoError(t, err)
}

func TestUploadService_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input UploadInput
		want  error
	}{
		{
			name:  "empty body",
			input: UploadInput{Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(nil)},
			want:  ErrNoFile,
		},
		{
			name:  "declared text",
			input: UploadInput{Filename: "a.txt", ContentType: "text/plain", Body: strings.NewReader("hello")},
			want:  ErrNotImage,
		},
		{
			name:  "sniffed text",
			input: UploadInput{Filename: "a.png", ContentType: "", Body: strings.NewReader("hello world")},
			want:  ErrNotImage,
		},
		{
			name:  "too large",
			input: UploadInput{Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(bytes.Repeat([]byte{1}, 1024))},
			want:  ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newUploadService(t, nil, nil, 512)

			_, err := svc.Upload(context.Background(), 1, tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, storedFiles(t, store), "nothing may be persisted")
		})
	}
}

func TestUploadService_ExactlyMaxSizeAccepted(t *testing.T) {
	svc, _, _ := newUploadService(t, nil, nil, int64(len(pngBytes)))

	_, err := svc.Upload(context.Background(), 1, UploadInput{Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(pngBytes)})
	assert.NoError(t, err)
}

func TestUploadService_AnalyzerFailureRemovesImage(t *testing.T) {
	svc, store, _ := newUploadService(t, failingAnalyzer{}, nil, 10<<20)

	_, err := svc.Upload(context.Background(), 1, UploadInput{Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(pngBytes)})
	require.Error(t, err)
	assert.Empty(t, storedFiles(t, store))
}

func TestUploadService_ConcurrentSameName(t *testing.T) {
	svc, store, _ := newUploadService(t, nil, nil, 10<<20)

	const n = 8
	paths := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Upload(context.Background(), 1, UploadInput{Filename: "same.jpg", ContentType: "image/jpeg", Body: bytes.NewReader(pngBytes)})
			if assert.NoError(t, err) {
				paths[i] = res.Path
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
		ok, err := store.Exists(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestUploadService_Limiter(t *testing.T) {
	t.Run("slot released", func(t *testing.T) {
		limiter := &fakeLimiter{}
		svc, _, _ := newUploadService(t, nil, limiter, 10<<20)

		_, err := svc.Upload(context.Background(), 1, UploadInput{Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(pngBytes)})
		require.NoError(t, err)
		assert.Equal(t, 1, limiter.acquired)
		assert.Equal(t, 1, limiter.released)
	})

	t.Run("full", func(t *testing.T) {
		limiter := &fakeLimiter{err: redis_limiter.ErrLimitReached}
		svc, store, _ := newUploadService(t, nil, limiter, 10<<20)

		_, err := svc.Upload(context.Background(), 1, UploadInput{Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(pngBytes)})
		assert.ErrorIs(t, err, ErrUploadBusy)
		assert.Empty(t, storedFiles(t, store))
	})

	t.Run("unavailable fails open", func(t *testing.T) {
		limiter := &fakeLimiter{err: errors.New("connection refused")}
		svc, _, hook := newUploadService(t, nil, limiter, 10<<20)

		_, err := svc.Upload(context.Background(), 1, UploadInput{Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(pngBytes)})
		require.NoError(t, err)
		assert.Equal(t, 0, limiter.released)
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})
}
