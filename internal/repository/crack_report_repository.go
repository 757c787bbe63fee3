package repository

import (
	"context"
	"time"

	"crack-go/internal/models"

	"gorm.io/gorm"
)

// CrackReportRepository persists crack reports. Every read and delete that
// takes a user id is scoped to that owner.
type CrackReportRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCrackReportRepository creates a CrackReportRepository.
func NewCrackReportRepository(db *gorm.DB) *CrackReportRepository {
	return &CrackReportRepository{db: db, now: time.Now}
}

// Create inserts the report with a server-assigned id and upload date,
// then reloads it so the caller sees exactly what was stored.
func (r *CrackReportRepository) Create(ctx context.Context, report *models.CrackReport) (*models.CrackReport, error) {
	report.ID = 0
	report.UploadDate = r.now().UTC()

	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}

	return r.GetByID(ctx, report.ID)
}

// GetByID returns the report regardless of owner.
func (r *CrackReportRepository) GetByID(ctx context.Context, id uint) (*models.CrackReport, error) {
	var report models.CrackReport
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

// GetByIDAndUserID returns the report only if userID owns it.
func (r *CrackReportRepository) GetByIDAndUserID(ctx context.Context, id uint, userID uint) (*models.CrackReport, error) {
	var report models.CrackReport
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&report).Error
	if err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

// ListByUserID returns the owner's reports, newest upload first.
func (r *CrackReportRepository) ListByUserID(ctx context.Context, userID uint) ([]models.CrackReport, error) {
	reports := make([]models.CrackReport, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("upload_date DESC").
		Order("id DESC").
		Find(&reports).Error
	return reports, err
}

// DeleteByIDAndUserID deletes the report if userID owns it. A missing or
// foreign report yields false and no error.
func (r *CrackReportRepository) DeleteByIDAndUserID(ctx context.Context, id uint, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CrackReport{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountByImagePath reports how many reports reference path.
func (r *CrackReportRepository) CountByImagePath(ctx context.Context, path string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CrackReport{}).Where("image_path = ?", path).Count(&count).Error
	return count, err
}
