package routes

import (
	"errors"
	"unicode/utf8"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateReviewInput struct {
	ApartmentID string `json:"apartment_id" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Comment     string `json:"comment" validate:"max=1000"`
}

type UpdateReviewInput struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// CreateReview posts the caller's review of a listing. One review per
// (user, apartment).
func CreateReview(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var input CreateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var apartment models.Apartment
	if err := storage.DB.Where("uuid = ?", input.ApartmentID).First(&apartment).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found")
		return
	}

	var existing models.Review
	err := storage.DB.Where("user_id = ? AND apartment_id = ?", user.ID, apartment.ID).First(&existing).Error
	if err == nil {
		utils.JSONError(ctx, iris.StatusConflict, "You have already reviewed this apartment")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CreateInternalServerError(ctx)
		return
	}

	review := models.Review{
		UserID:      user.ID,
		ApartmentID: apartment.ID,
		Rating:      input.Rating,
		Comment:     input.Comment,
	}
	if err := storage.DB.Create(&review).Error; err != nil {
		utils.JSONError(ctx, iris.StatusConflict, "You have already reviewed this apartment")
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"message": "Review added successfully", "review_id": review.ID})
}

// GetApartmentReviews lists a listing's reviews with author name and
// the aggregate rating.
func GetApartmentReviews(ctx iris.Context) {
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found")
		return
	}

	var reviews []models.Review
	storage.DB.Preload("User").Where("apartment_id = ?", apartment.ID).Order("created_at DESC").Find(&reviews)

	total := 0
	list := make([]iris.Map, 0, len(reviews))
	for _, review := range reviews {
		total += review.Rating
		entry := iris.Map{
			"id":         review.ID,
			"rating":     review.Rating,
			"comment":    review.Comment,
			"created_at": review.CreatedAt,
		}
		if review.User != nil {
			entry["author"] = review.User.FullName
			entry["author_initial"] = nameInitial(review.User.FullName)
		}
		list = append(list, entry)
	}

	var average float64
	if len(reviews) > 0 {
		average = float64(total) / float64(len(reviews))
	}
	ctx.JSON(iris.Map{
		"reviews":        list,
		"average_rating": average,
		"review_count":   len(reviews),
	})
}

// GetMyReviews lists the caller's reviews across all listings.
func GetMyReviews(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var reviews []models.Review
	storage.DB.Preload("Apartment").Where("user_id = ?", user.ID).Order("created_at DESC").Find(&reviews)

	list := make([]iris.Map, 0, len(reviews))
	for _, review := range reviews {
		entry := iris.Map{
			"id":         review.ID,
			"rating":     review.Rating,
			"comment":    review.Comment,
			"created_at": review.CreatedAt,
		}
		if review.Apartment != nil {
			entry["apartment"] = iris.Map{
				"uuid":  review.Apartment.UUID,
				"title": review.Apartment.Title,
			}
		}
		list = append(list, entry)
	}
	ctx.JSON(iris.Map{"reviews": list})
}

// UpdateReview edits the caller's own review.
func UpdateReview(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var review models.Review
	if err := storage.DB.First(&review, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Review not found")
		return
	}
	if review.UserID != user.ID {
		utils.CreateForbidden(ctx)
		return
	}

	var input UpdateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}
	if err := storage.DB.Save(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"message": "Review updated successfully"})
}

// DeleteReview removes the caller's own review.
func DeleteReview(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var review models.Review
	if err := storage.DB.First(&review, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Review not found")
		return
	}
	if review.UserID != user.ID {
		utils.CreateForbidden(ctx)
		return
	}
	if err := storage.DB.Delete(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"message": "Review deleted successfully"})
}

func nameInitial(name string) string {
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(r)
}
