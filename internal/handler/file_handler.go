package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vendora/internal/domain"
	"vendora/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FileHandler serves the buyer-facing catalogue and the gated download.
type FileHandler struct {
	files      *repository.FileRepository
	categories *repository.CategoryRepository
}

func NewFileHandler(files *repository.FileRepository, categories *repository.CategoryRepository) *FileHandler {
	return &FileHandler{files: files, categories: categories}
}

// List returns available published files with search, filters, and
// allow-listed sorting.
// GET /api/v1/files?search=&category=&author=&sort=&page=&limit=
func (h *FileHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	var creatorID, categoryID uint64
	if v := c.Query("author"); v != "" {
		creatorID, _ = strconv.ParseUint(v, 10, 64)
	}
	if v := c.Query("category"); v != "" {
		categoryID, _ = strconv.ParseUint(v, 10, 64)
	}
	sort := c.Query("sort")
	switch sort {
	case domain.SortNewest, domain.SortPriceAsc, domain.SortPriceDesc, domain.SortPopular, "":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported sort key"})
		return
	}
	files, total, err := h.files.ListPublished(repository.ListFilter{
		Search:     c.Query("search"),
		CreatorID:  uint(creatorID),
		CategoryID: uint(categoryID),
		Sort:       sort,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
		"files":       files,
	})
}

// Categories lists all categories for catalogue filtering.
// GET /api/v1/files/categories
func (h *FileHandler) Categories(c *gin.Context) {
	cats, err := h.categories.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, cats)
}

// Details returns one file by slug, bumps its view counter, and attaches up
// to five related files by the same creator.
// GET /api/v1/files/:slug
func (h *FileHandler) Details(c *gin.Context) {
	slug := c.Param("slug")
	f, err := h.files.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	_ = h.files.IncrementViews(f.ID)
	f.Views++
	related, _ := h.files.ListRelated(f.CreatorID, f.ID, 5)
	c.JSON(http.StatusOK, gin.H{"file": f, "related_files": related})
}

// Download redirects an entitled buyer to the stored content location. The
// entitlement middleware has already verified a successful payment.
// GET /api/v1/files/download/:fileId
func (h *FileHandler) Download(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 64)
	if err != nil || fileID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	f, err := h.files.GetByID(uint(fileID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.Redirect(http.StatusFound, f.URL)
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
