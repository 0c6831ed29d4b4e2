package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vendora/internal/domain"
	"vendora/internal/middleware"
	"vendora/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler covers profile, purchase history, and favourites.
type UserHandler struct {
	users      *repository.UserRepository
	files      *repository.FileRepository
	payments   *repository.PaymentRepository
	favourites *repository.FavouriteRepository
}

func NewUserHandler(users *repository.UserRepository, files *repository.FileRepository, payments *repository.PaymentRepository, favourites *repository.FavouriteRepository) *UserHandler {
	return &UserHandler{users: users, files: files, payments: payments, favourites: favourites}
}

// GetProfile returns the logged-in user.
// GET /api/v1/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=128"`
	Email string `json:"email"` // rejected when it differs; email is immutable
}

// UpdateProfile changes the display name; email cannot be changed.
// PUT /api/v1/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if req.Email != "" && req.Email != u.Email {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email cannot be changed"})
		return
	}
	u.Name = req.Name
	if err := h.users.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "user": u})
}

// Purchases lists the user's payments; ?status=success narrows to settled
// purchases.
// GET /api/v1/me/purchases?status=&page=&limit=
func (h *UserHandler) Purchases(c *gin.Context) {
	page, limit := pagination(c)
	status := c.Query("status")
	switch status {
	case "", domain.PaymentPending, domain.PaymentSuccess, domain.PaymentFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported status"})
		return
	}
	payments, total, err := h.payments.ListByBuyer(middleware.GetUserID(c), status, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
		"purchases":   payments,
	})
}

// AddFavourite bookmarks a file.
// POST /api/v1/me/favourites/:fileId
func (h *UserHandler) AddFavourite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 64)
	if err != nil || fileID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	if _, err := h.files.GetByID(uint(fileID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	exists, err := h.favourites.Exists(userID, uint(fileID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file already in favourites"})
		return
	}
	if err := h.favourites.Add(userID, uint(fileID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add favourite"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "file added to favourites"})
}

// ListFavourites returns the user's favourites, hiding unavailable files.
// GET /api/v1/me/favourites
func (h *UserHandler) ListFavourites(c *gin.Context) {
	page, limit := pagination(c)
	favs, total, err := h.favourites.ListByUser(middleware.GetUserID(c), limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
		"favourites":  favs,
	})
}

// RemoveFavourite deletes a bookmark.
// DELETE /api/v1/me/favourites/:fileId
func (h *UserHandler) RemoveFavourite(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 64)
	if err != nil || fileID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	removed, err := h.favourites.Remove(middleware.GetUserID(c), uint(fileID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove failed"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "favourite not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file removed from favourites"})
}
