package repository

import (
	"vendora/internal/domain"
	"vendora/internal/models"

	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(f *models.File) error {
	return r.db.Create(f).Error
}

func (r *FileRepository) GetByID(id uint) (*models.File, error) {
	var f models.File
	if err := r.db.Preload("Creator").First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FileRepository) GetBySlug(slug string) (*models.File, error) {
	var f models.File
	err := r.db.Preload("Creator").Preload("Category").Where("slug = ?", slug).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FileRepository) GetBySlugForCreator(slug string, creatorID uint) (*models.File, error) {
	var f models.File
	err := r.db.Preload("Category").Where("slug = ? AND creator_id = ?", slug, creatorID).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FileRepository) Update(f *models.File) error {
	return r.db.Save(f).Error
}

func (r *FileRepository) Delete(f *models.File) error {
	return r.db.Delete(f).Error
}

// IncrementSales bumps the sales counter by one. Called only by the
// settlement side that won the pending transition, which is what keeps the
// counter at exactly one increment per successful payment.
func (r *FileRepository) IncrementSales(id uint) error {
	return r.db.Model(&models.File{}).Where("id = ?", id).
		UpdateColumn("sales", gorm.Expr("sales + ?", 1)).Error
}

// IncrementViews bumps the view counter; used by the public detail endpoint.
func (r *FileRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.File{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// ListFilter narrows the public catalogue listing.
type ListFilter struct {
	Search     string
	CreatorID  uint
	CategoryID uint
	Sort       string // one of domain.Sort*
	Limit      int
	Offset     int
}

// ListPublished returns available, published files for the buyer-facing
// catalogue. Sort keys map onto an explicit column allow-list.
func (r *FileRepository) ListPublished(f ListFilter) ([]models.File, int64, error) {
	q := r.db.Model(&models.File{}).
		Where("is_available = ? AND status = ?", true, domain.FileStatusPublished)
	if f.Search != "" {
		q = q.Where("title LIKE ?", "%"+f.Search+"%")
	}
	if f.CreatorID != 0 {
		q = q.Where("creator_id = ?", f.CreatorID)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	switch f.Sort {
	case domain.SortPriceAsc:
		q = q.Order("price_cents ASC")
	case domain.SortPriceDesc:
		q = q.Order("price_cents DESC")
	case domain.SortPopular:
		q = q.Order("views DESC")
	default:
		q = q.Order("created_at DESC")
	}
	var out []models.File
	err := q.Preload("Creator").Preload("Category").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	return out, total, err
}

// Columns a creator may sort their own listing by. Anything else falls back
// to created_at; sort input is never interpolated directly.
var creatorSortColumns = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"price":     "price_cents",
	"views":     "views",
	"sales":     "sales",
}

func (r *FileRepository) ListByCreator(creatorID uint, search, sort, order string, limit, offset int) ([]models.File, int64, error) {
	q := r.db.Model(&models.File{}).Where("creator_id = ?", creatorID)
	if search != "" {
		q = q.Where("title LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	col, ok := creatorSortColumns[sort]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if order == "asc" {
		dir = "ASC"
	}
	var out []models.File
	err := q.Preload("Category").Order(col + " " + dir).Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

// ListRelated returns up to limit other files by the same creator.
func (r *FileRepository) ListRelated(creatorID, excludeID uint, limit int) ([]models.File, error) {
	var out []models.File
	err := r.db.Where("creator_id = ? AND id <> ? AND is_available = ? AND status = ?",
		creatorID, excludeID, true, domain.FileStatusPublished).
		Limit(limit).Find(&out).Error
	return out, err
}

// ListByStatus supports admin moderation queues.
func (r *FileRepository) ListByStatus(status string, limit, offset int) ([]models.File, int64, error) {
	q := r.db.Model(&models.File{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.File
	err := q.Preload("Creator").Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}
