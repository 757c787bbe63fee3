package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"crack-go/internal/storage"
	"crack-go/internal/utils"
	"crack-go/pkg/analyzer"
	"crack-go/pkg/redis_limiter"

	"github.com/sirupsen/logrus"
)

// SlotLimiter bounds concurrent work per key.
type SlotLimiter interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string)
}

// UploadInput is one image received from a client.
type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UploadResult describes a stored and analyzed image.
type UploadResult struct {
	Filename         string
	OriginalFilename string
	Path             string
	Analysis         *analyzer.Result
}

// UploadService validates, stores and analyzes uploaded images.
type UploadService struct {
	store    storage.ImageStore
	analyzer analyzer.Analyzer
	limiter  SlotLimiter
	maxSize  int64
	logger   *logrus.Logger
	now      func() time.Time
}

// NewUploadService creates an UploadService. limiter may be nil.
func NewUploadService(store storage.ImageStore, a analyzer.Analyzer, limiter SlotLimiter, maxSize int64, logger *logrus.Logger) *UploadService {
	return &UploadService{
		store:    store,
		analyzer: a,
		limiter:  limiter,
		maxSize:  maxSize,
		logger:   logger,
		now:      time.Now,
	}
}

// MaxSize returns the largest accepted image in bytes.
func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

// Upload stores the image under a fresh unique name and analyzes it. Nothing
// is left in the store when validation or analysis fails.
func (s *UploadService) Upload(ctx context.Context, userID uint, in UploadInput) (*UploadResult, error) {
	release, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	contentType := utils.ResolveContentType(in.ContentType, data)
	if !utils.IsImageContentType(contentType) {
		return nil, ErrNotImage
	}

	if int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}

	name := utils.StoredImageName(in.Filename, s.now())
	publicPath, err := s.store.Save(ctx, name, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	result, err := s.analyzer.Analyze(ctx, data, contentType)
	if err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), publicPath); delErr != nil {
			s.logger.WithError(delErr).WithField("path", publicPath).Warn("Failed to remove image after analysis error")
		}
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	return &UploadResult{
		Filename:         name,
		OriginalFilename: in.Filename,
		Path:             publicPath,
		Analysis:         result,
	}, nil
}

// acquire takes an upload slot for userID. Limiter failures other than a
// full key are logged and the upload proceeds unthrottled.
func (s *UploadService) acquire(ctx context.Context, userID uint) (func(), error) {
	if s.limiter == nil {
		return func() {}, nil
	}

	key := strconv.FormatUint(uint64(userID), 10)
	if err := s.limiter.Acquire(ctx, key); err != nil {
		if errors.Is(err, redis_limiter.ErrLimitReached) {
			return nil, ErrUploadBusy
		}
		s.logger.WithError(err).WithField("user_id", userID).Warn("Upload limiter unavailable")
		return func() {}, nil
	}

	return func() {
		s.limiter.Release(context.WithoutCancel(ctx), key)
	}, nil
}
