package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler covers category CRUD, user listing, and file moderation.
type AdminHandler struct {
	users      *repository.UserRepository
	files      *repository.FileRepository
	categories *repository.CategoryRepository
}

func NewAdminHandler(users *repository.UserRepository, files *repository.FileRepository, categories *repository.CategoryRepository) *AdminHandler {
	return &AdminHandler{users: users, files: files, categories: categories}
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=128"`
	Description string `json:"description"`
}

// POST /api/v1/admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat := &models.Category{Name: req.Name, Description: req.Description}
	if err := h.categories.Create(cat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// PUT /api/v1/admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}
	cat, err := h.categories.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat.Name = req.Name
	cat.Description = req.Description
	if err := h.categories.Update(cat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "category name already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, cat)
}

// DELETE /api/v1/admin/categories/:id
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}
	if err := h.categories.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := pagination(c)
	users, total, err := h.users.List(limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
		"users":       users,
	})
}

// GET /api/v1/admin/files?status=pending
func (h *AdminHandler) ListFiles(c *gin.Context) {
	page, limit := pagination(c)
	status := c.Query("status")
	switch status {
	case "", domain.FileStatusPending, domain.FileStatusPublished, domain.FileStatusRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported status"})
		return
	}
	files, total, err := h.files.ListByStatus(status, limit, (page-1)*limit)
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

type ModerateFileRequest struct {
	Status string `json:"status" binding:"required,oneof=published rejected"`
}

// PATCH /api/v1/admin/files/:id/status
func (h *AdminHandler) ModerateFile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	var req ModerateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := h.files.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	f.Status = req.Status
	if err := h.files.Update(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file " + req.Status, "file": f})
}
