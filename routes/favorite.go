package routes

import (
	"errors"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type addFavoriteInput struct {
	ApartmentID string `json:"apartment_id" validate:"required"` // apartment UUID
}

// AddFavorite bookmarks a listing for the caller. One favorite per
// (user, apartment); the duplicate answer is 409.
func AddFavorite(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var input addFavoriteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var apartment models.Apartment
	if err := storage.DB.Where("uuid = ?", input.ApartmentID).First(&apartment).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found")
		return
	}

	var existing models.Favorite
	err := storage.DB.Where("user_id = ? AND apartment_id = ?", user.ID, apartment.ID).First(&existing).Error
	if err == nil {
		utils.JSONError(ctx, iris.StatusConflict, "Apartment is already in favorites")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CreateInternalServerError(ctx)
		return
	}

	favorite := models.Favorite{UserID: user.ID, ApartmentID: apartment.ID}
	if err := storage.DB.Create(&favorite).Error; err != nil {
		// The unique index catches the concurrent duplicate that slipped
		// past the check above.
		utils.JSONError(ctx, iris.StatusConflict, "Apartment is already in favorites")
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"message": "Apartment added to favorites successfully"})
}

// RemoveFavorite deletes exactly one favorite row.
func RemoveFavorite(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found")
		return
	}

	var favorite models.Favorite
	if err := storage.DB.Where("user_id = ? AND apartment_id = ?", user.ID, apartment.ID).First(&favorite).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found in favorites")
		return
	}

	if err := storage.DB.Delete(&favorite).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"message": "Apartment removed from favorites successfully"})
}

// GetFavorites lists compact summaries of the caller's saved listings.
func GetFavorites(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var favorites []models.Favorite
	storage.DB.Preload("Apartment").Where("user_id = ?", user.ID).Find(&favorites)

	apartments := make([]iris.Map, 0, len(favorites))
	for _, favorite := range favorites {
		if favorite.Apartment == nil {
			continue
		}
		apartments = append(apartments, iris.Map{
			"id":      favorite.Apartment.UUID,
			"title":   favorite.Apartment.Title,
			"price":   favorite.Apartment.Price,
			"address": favorite.Apartment.Address,
			"rooms":   favorite.Apartment.Rooms,
		})
	}
	ctx.JSON(iris.Map{"apartments": apartments})
}
