package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"vendora/internal/domain"
	"vendora/internal/middleware"
	"vendora/internal/models"
	"vendora/internal/repository"
	"vendora/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreatorHandler covers upload, management, and sales reporting for a
// creator's own files.
type CreatorHandler struct {
	files      *repository.FileRepository
	categories *repository.CategoryRepository
	payments   *repository.PaymentRepository
	cloud      cloudinary.Client
}

func NewCreatorHandler(files *repository.FileRepository, categories *repository.CategoryRepository, payments *repository.PaymentRepository, cloud cloudinary.Client) *CreatorHandler {
	return &CreatorHandler{files: files, categories: categories, payments: payments, cloud: cloud}
}

// Upload stores the main file (any type) plus an optional preview image on
// Cloudinary and creates the listing.
// POST /api/v1/creator/files (multipart: file, previewImage, title, description, price_cents, category_id)
func (h *CreatorHandler) Upload(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	title := c.PostForm("title")
	description := c.PostForm("description")
	priceCents, _ := strconv.ParseInt(c.PostForm("price_cents"), 10, 64)
	categoryID, _ := strconv.ParseUint(c.PostForm("category_id"), 10, 64)
	if title == "" || priceCents <= 0 || categoryID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, price_cents and category_id are required"})
		return
	}
	if _, err := h.categories.GetByID(uint(categoryID)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "main file is required"})
		return
	}
	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer src.Close()
	content, err := h.cloud.UploadContent(c.Request.Context(), src, fh.Filename)
	if err != nil {
		log.Printf("[creator] content upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "file upload failed"})
		return
	}

	file := &models.File{
		Title:        title,
		Description:  description,
		PriceCents:   priceCents,
		URL:          content.URL,
		CloudinaryID: content.PublicID,
		Status:       domain.FileStatusPublished,
		IsAvailable:  true,
		CreatorID:    creatorID,
		CategoryID:   uint(categoryID),
	}

	if ph, err := c.FormFile("previewImage"); err == nil {
		if psrc, err := ph.Open(); err == nil {
			defer psrc.Close()
			if preview, err := h.cloud.UploadPreview(c.Request.Context(), psrc, ""); err == nil {
				file.PreviewImage = preview.URL
				file.PreviewImageID = preview.PublicID
			} else {
				log.Printf("[creator] preview upload failed: %v", err)
			}
		}
	}

	if err := h.files.Create(file); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "a file with this title already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save file"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "file uploaded", "file": file})
}

// MyFiles lists the creator's files with search and column-allow-listed
// sorting.
// GET /api/v1/creator/files?search=&sort=&order=&page=&limit=
func (h *CreatorHandler) MyFiles(c *gin.Context) {
	page, limit := pagination(c)
	files, total, err := h.files.ListByCreator(
		middleware.GetUserID(c),
		c.Query("search"),
		c.DefaultQuery("sort", "createdAt"),
		c.DefaultQuery("order", "desc"),
		limit, (page-1)*limit,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
		"data":        files,
	})
}

// GetFile returns one of the creator's own files by slug.
// GET /api/v1/creator/files/:slug
func (h *CreatorHandler) GetFile(c *gin.Context) {
	f, err := h.files.GetBySlugForCreator(c.Param("slug"), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found or access denied"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": f})
}

type UpdateFileRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  *int64 `json:"price_cents"`
	CategoryID  *uint  `json:"category_id"`
	IsAvailable *bool  `json:"is_available"`
}

// UpdateFile edits listing metadata. Price changes affect only future
// purchases; settled payments keep the amount captured at initiation.
// PATCH /api/v1/creator/files/:slug
func (h *CreatorHandler) UpdateFile(c *gin.Context) {
	f, err := h.files.GetBySlugForCreator(c.Param("slug"), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found or access denied"})
		return
	}
	var req UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title != "" {
		f.Title = req.Title
	}
	if req.Description != "" {
		f.Description = req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
			return
		}
		f.PriceCents = *req.PriceCents
	}
	if req.CategoryID != nil {
		if _, err := h.categories.GetByID(*req.CategoryID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		f.CategoryID = *req.CategoryID
	}
	if req.IsAvailable != nil {
		f.IsAvailable = *req.IsAvailable
	}
	if err := h.files.Update(f); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "a file with this title already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file updated", "file": f})
}

// DeleteFile removes the listing and its stored content. Existing buyers
// keep their entitlement records; only new purchases stop.
// DELETE /api/v1/creator/files/:slug
func (h *CreatorHandler) DeleteFile(c *gin.Context) {
	f, err := h.files.GetBySlugForCreator(c.Param("slug"), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found or access denied"})
		return
	}
	if err := h.files.Delete(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if f.CloudinaryID != "" {
		if err := h.cloud.Delete(c.Request.Context(), f.CloudinaryID, ""); err != nil {
			log.Printf("[creator] cloudinary delete %s: %v", f.CloudinaryID, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}

// Dashboard summarizes the creator's sales.
// GET /api/v1/creator/dashboard
func (h *CreatorHandler) Dashboard(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	count, revenue, err := h.payments.CreatorSalesStats(creatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_sales":         count,
		"total_revenue_cents": revenue,
	})
}
