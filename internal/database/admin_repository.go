package database

import (
	"context"

	"crucible/internal/models"

	"github.com/google/uuid"
)

type AdminRepository struct {
	db *GormDB
}

func NewAdminRepository(db *GormDB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) AddAdmin(ctx context.Context, contestID, adminID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&models.ContestAdmin{
		ContestID: contestID,
		AdminID:   adminID,
	}).Error
}

// RemoveAdmin reports whether a membership was actually removed.
func (r *AdminRepository) RemoveAdmin(ctx context.Context, contestID, adminID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.ContestAdmin{}, "contest_id = ? AND admin_id = ?", contestID, adminID)
	return result.RowsAffected > 0, result.Error
}

func (r *AdminRepository) IsContestAdmin(ctx context.Context, contestID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ContestAdmin{}).
		Where("contest_id = ? AND admin_id = ?", contestID, userID).
		Count(&count).Error

	return count > 0, err
}

func (r *AdminRepository) GetAdminsByContest(ctx context.Context, contestID uuid.UUID) ([]models.ContestAdmin, error) {
	var admins []models.ContestAdmin
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Preload("Admin").
		Order("created_at ASC").
		Find(&admins).Error

	if err != nil {
		return nil, err
	}

	return admins, nil
}
