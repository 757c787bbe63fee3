package service

import (
	"context"
	"errors"
	"fmt"

	"crack-go/internal/dto"
	"crack-go/internal/models"
	"crack-go/internal/repository"
	"crack-go/internal/storage"

	"github.com/sirupsen/logrus"
)

// ReportService manages the crack reports of authenticated users.
type ReportService struct {
	reportRepo *repository.CrackReportRepository
	store      storage.ImageStore
	logger     *logrus.Logger
}

// NewReportService creates a ReportService.
func NewReportService(reportRepo *repository.CrackReportRepository, store storage.ImageStore, logger *logrus.Logger) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		store:      store,
		logger:     logger,
	}
}

// Create stores a report for userID. The referenced image must exist.
func (s *ReportService) Create(ctx context.Context, userID uint, req *dto.CreateReportRequest) (*models.CrackReport, error) {
	exists, err := s.store.Exists(ctx, req.ImagePath)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPath) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to check image: %w", err)
	}
	if !exists {
		return nil, ErrImageNotFound
	}

	report := &models.CrackReport{
		UserID:         userID,
		Filename:       req.Filename,
		ImagePath:      req.ImagePath,
		LengthMM:       req.LengthMM,
		WidthMM:        req.WidthMM,
		DepthMM:        req.DepthMM,
		Severity:       req.Severity,
		Recommendation: req.Recommendation,
		AnalysisData:   req.AnalysisData,
	}

	created, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return created, nil
}

// List returns the reports owned by userID, newest first.
func (s *ReportService) List(ctx context.Context, userID uint) ([]models.CrackReport, error) {
	reports, err := s.reportRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// Get returns one report owned by userID. Foreign reports are not found.
func (s *ReportService) Get(ctx context.Context, userID, reportID uint) (*models.CrackReport, error) {
	report, err := s.reportRepo.GetByIDAndUserID(ctx, reportID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// Delete removes a report owned by userID and, when no other report still
// references it, the stored image.
func (s *ReportService) Delete(ctx context.Context, userID, reportID uint) error {
	report, err := s.Get(ctx, userID, reportID)
	if err != nil {
		return err
	}

	deleted, err := s.reportRepo.DeleteByIDAndUserID(ctx, reportID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if !deleted {
		return ErrReportNotFound
	}

	s.removeImage(ctx, report.ImagePath)
	return nil
}

func (s *ReportService) removeImage(ctx context.Context, imagePath string) {
	entry := s.logger.WithField("image_path", imagePath)

	refs, err := s.reportRepo.CountByImagePath(ctx, imagePath)
	if err != nil {
		entry.WithError(err).Warn("Failed to count image references")
		return
	}
	if refs > 0 {
		return
	}

	if err := s.store.Delete(ctx, imagePath); err != nil {
		entry.WithError(err).Warn("Failed to delete image")
	}
}
