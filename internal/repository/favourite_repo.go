package repository

import (
	"vendora/internal/models"

	"gorm.io/gorm"
)

type FavouriteRepository struct {
	db *gorm.DB
}

func NewFavouriteRepository(db *gorm.DB) *FavouriteRepository {
	return &FavouriteRepository{db: db}
}

func (r *FavouriteRepository) Add(userID, fileID uint) error {
	return r.db.Create(&models.Favourite{UserID: userID, FileID: fileID}).Error
}

func (r *FavouriteRepository) Exists(userID, fileID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Favourite{}).
		Where("user_id = ? AND file_id = ?", userID, fileID).Count(&count).Error
	return count > 0, err
}

func (r *FavouriteRepository) Remove(userID, fileID uint) (bool, error) {
	res := r.db.Where("user_id = ? AND file_id = ?", userID, fileID).Delete(&models.Favourite{})
	return res.RowsAffected > 0, res.Error
}

// ListByUser returns the user's favourites whose files are still available.
func (r *FavouriteRepository) ListByUser(userID uint, limit, offset int) ([]models.Favourite, int64, error) {
	q := r.db.Model(&models.Favourite{}).
		Joins("JOIN files ON files.id = favourites.file_id AND files.is_available = ? AND files.deleted_at IS NULL", true).
		Where("favourites.user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Favourite
	err := q.Preload("File").Preload("File.Creator").
		Order("favourites.created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}
