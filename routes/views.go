package routes

import (
	"time"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/kataras/iris/v12"
)

// viewDedupWindow is the rolling window inside which repeat visits by
// the same viewer do not count again.
const viewDedupWindow = 6 * time.Minute

// TrackApartmentView records one view of a listing. Authenticated
// viewers dedupe on (apartment, user); anonymous viewers dedupe on
// (apartment, ip). Inside the window the call is a 200 no-op, a fresh
// view answers 201.
func TrackApartmentView(ctx iris.Context) {
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found")
		return
	}

	user := utils.OptionalUser(ctx)
	ip := utils.ClientIP(ctx)
	cutoff := time.Now().Add(-viewDedupWindow)

	query := storage.DB.Model(&models.ApartmentView{}).
		Where("apartment_id = ? AND created_at > ?", apartment.ID, cutoff)
	if user != nil {
		query = query.Where("user_id = ?", user.ID)
	} else {
		query = query.Where("user_id IS NULL AND ip_address = ?", ip)
	}

	var recent int64
	if err := query.Count(&recent).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if recent > 0 {
		ctx.JSON(iris.Map{"message": "View already counted"})
		return
	}

	view := models.ApartmentView{ApartmentID: apartment.ID, IPAddress: ip}
	if user != nil {
		view.UserID = &user.ID
	}
	if err := storage.DB.Create(&view).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"message": "View tracked"})
}

// GetOwnerViewDetails breaks down view counts per listing for the
// calling owner.
func GetOwnerViewDetails(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var apartments []models.Apartment
	storage.DB.Where("owner_id = ?", user.ID).Find(&apartments)

	details := make([]iris.Map, 0, len(apartments))
	var total int64
	for _, apartment := range apartments {
		var count int64
		storage.DB.Model(&models.ApartmentView{}).Where("apartment_id = ?", apartment.ID).Count(&count)
		total += count
		details = append(details, iris.Map{
			"uuid":  apartment.UUID,
			"title": apartment.Title,
			"views": count,
		})
	}
	ctx.JSON(iris.Map{"total_views": total, "apartments": details})
}
