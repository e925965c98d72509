package routes

import (
	"strconv"
	"strings"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminLoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateAdminInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

// AdminLogin issues a panel token. The admin realm is separate from the
// user realm: its own secret, header-only transport, shorter expiry.
func AdminLogin(ctx iris.Context) {
	var input AdminLoginInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var admin models.Admin
	err := storage.DB.Where("username = ?", input.Username).First(&admin).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(input.Password)) != nil {
		utils.JSONError(ctx, iris.StatusUnauthorized, "Invalid username or password.")
		return
	}

	token, err := utils.CreateAdminToken(admin.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{
		"access_token": token,
		"admin": iris.Map{
			"id":       admin.ID,
			"username": admin.Username,
			"email":    admin.Email,
		},
	})
}

// GetAdminProfile returns the authenticated panel account.
func GetAdminProfile(ctx iris.Context) {
	admin := utils.AdminFromContext(ctx)
	ctx.JSON(iris.Map{
		"id":         admin.ID,
		"username":   admin.Username,
		"email":      admin.Email,
		"created_at": admin.CreatedAt,
	})
}

// GetAdmins lists panel accounts.
func GetAdmins(ctx iris.Context) {
	var admins []models.Admin
	storage.DB.Order("created_at ASC").Find(&admins)

	list := make([]iris.Map, 0, len(admins))
	for _, admin := range admins {
		list = append(list, iris.Map{
			"id":         admin.ID,
			"username":   admin.Username,
			"email":      admin.Email,
			"created_at": admin.CreatedAt,
		})
	}
	ctx.JSON(iris.Map{"admins": list})
}

// CreateAdmin registers a new panel account.
func CreateAdmin(ctx iris.Context) {
	var input CreateAdminInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	admin := models.Admin{
		Username: strings.ToLower(input.Username),
		Email:    strings.ToLower(input.Email),
		Password: string(hashed),
	}
	if err := storage.DB.Create(&admin).Error; err != nil {
		utils.JSONError(ctx, iris.StatusConflict, "Username or email already in use")
		return
	}

	utils.Audit(ctx, "create", "admin", 0, nil, iris.Map{"id": admin.ID, "username": admin.Username})
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"id": admin.ID, "username": admin.Username})
}

// DeleteAdmin removes a panel account. An admin cannot delete itself,
// and the last account always survives.
func DeleteAdmin(ctx iris.Context) {
	caller := utils.AdminFromContext(ctx)
	id := ctx.Params().Get("id")

	if id == caller.ID {
		utils.JSONError(ctx, iris.StatusBadRequest, "Cannot delete your own account")
		return
	}

	var admin models.Admin
	if err := storage.DB.First(&admin, "id = ?", id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Admin not found")
		return
	}

	var total int64
	storage.DB.Model(&models.Admin{}).Count(&total)
	if total <= 1 {
		utils.JSONError(ctx, iris.StatusBadRequest, "Cannot delete the last admin account")
		return
	}

	if err := storage.DB.Delete(&admin).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "delete", "admin", 0, iris.Map{"id": admin.ID, "username": admin.Username}, nil)
	ctx.JSON(iris.Map{"message": "Admin deleted successfully"})
}

// AdminGetUsers lists marketplace accounts with role and text filters.
func AdminGetUsers(ctx iris.Context) {
	page, perPage := pageParams(ctx)

	query := storage.DB.Model(&models.User{})
	if role := ctx.URLParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if q := ctx.URLParam("q"); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	query.Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&users)

	list := make([]iris.Map, 0, len(users))
	for _, user := range users {
		list = append(list, iris.Map{
			"uuid":       user.UUID,
			"full_name":  user.FullName,
			"email":      user.Email,
			"role":       user.Role,
			"created_at": user.CreatedAt,
		})
	}
	utils.JSONPage(ctx, list, page, perPage, total)
}

// AdminDeleteUser removes an account and everything hanging off it:
// favorites, reviews, views, conversations, and for owners each listing
// through the same cascade the owner-facing delete uses.
func AdminDeleteUser(ctx iris.Context) {
	userUUID := ctx.Params().Get("uuid")

	var user models.User
	if err := storage.DB.Where("uuid = ?", userUUID).First(&user).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "User not found")
		return
	}

	var apartments []models.Apartment
	storage.DB.Preload("Images").Where("owner_id = ?", user.ID).Find(&apartments)
	for i := range apartments {
		if err := deleteApartmentCascade(&apartments[i]); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ApartmentView{}).Where("user_id = ?", user.ID).Update("user_id", nil).Error; err != nil {
			return err
		}
		var conversations []models.Conversation
		if err := tx.Where("student_id = ? OR owner_id = ?", user.ID, user.ID).Find(&conversations).Error; err != nil {
			return err
		}
		for _, conversation := range conversations {
			if err := tx.Where("conversation_id = ?", conversation.ID).Delete(&models.ChatMessage{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&conversation).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "delete", "user", user.ID, iris.Map{"uuid": user.UUID, "email": user.Email, "role": user.Role}, nil)
	ctx.JSON(iris.Map{"message": "User deleted successfully"})
}

// AdminGetApartments lists every listing, verified or not.
func AdminGetApartments(ctx iris.Context) {
	page, perPage := pageParams(ctx)

	query := storage.DB.Model(&models.Apartment{})
	if v := ctx.URLParam("verified"); v != "" {
		query = query.Where("is_verified = ?", v == "true")
	}

	var total int64
	query.Count(&total)

	var apartments []models.Apartment
	query.Preload("Owner").Preload("Neighborhood").
		Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&apartments)

	list := make([]iris.Map, 0, len(apartments))
	for _, apartment := range apartments {
		entry := iris.Map{
			"uuid":        apartment.UUID,
			"title":       apartment.Title,
			"price":       apartment.Price,
			"is_verified": apartment.IsVerified,
			"created_at":  apartment.CreatedAt,
		}
		if apartment.Owner != nil {
			entry["owner"] = iris.Map{"uuid": apartment.Owner.UUID, "full_name": apartment.Owner.FullName}
		}
		if apartment.Neighborhood != nil {
			entry["neighborhood"] = apartment.Neighborhood.Name
		}
		list = append(list, entry)
	}
	utils.JSONPage(ctx, list, page, perPage, total)
}

type VerifyApartmentInput struct {
	IsVerified bool `json:"is_verified"`
}

// AdminVerifyApartment flips the moderation flag that gates the public
// verified listing feed.
func AdminVerifyApartment(ctx iris.Context) {
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found")
		return
	}

	var input VerifyApartmentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := iris.Map{"is_verified": apartment.IsVerified}
	apartment.IsVerified = input.IsVerified
	if err := storage.DB.Save(&apartment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "verify", "apartment", apartment.ID, before, iris.Map{"is_verified": apartment.IsVerified})
	ctx.JSON(iris.Map{"message": "Apartment verification updated", "is_verified": apartment.IsVerified})
}

// AdminDeleteApartment removes any listing, regardless of owner.
func AdminDeleteApartment(ctx iris.Context) {
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Preload("Images").Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found")
		return
	}

	if err := deleteApartmentCascade(&apartment); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "delete", "apartment", apartment.ID, iris.Map{"uuid": apartment.UUID, "title": apartment.Title}, nil)
	ctx.JSON(iris.Map{"message": "Apartment deleted successfully"})
}

// AdminGetReviews lists reviews across the whole site for moderation.
func AdminGetReviews(ctx iris.Context) {
	page, perPage := pageParams(ctx)

	var total int64
	storage.DB.Model(&models.Review{}).Count(&total)

	var reviews []models.Review
	storage.DB.Preload("User").Preload("Apartment").
		Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&reviews)

	list := make([]iris.Map, 0, len(reviews))
	for _, review := range reviews {
		entry := iris.Map{
			"id":         review.ID,
			"rating":     review.Rating,
			"comment":    review.Comment,
			"created_at": review.CreatedAt,
		}
		if review.User != nil {
			entry["author"] = review.User.FullName
		}
		if review.Apartment != nil {
			entry["apartment"] = iris.Map{"uuid": review.Apartment.UUID, "title": review.Apartment.Title}
		}
		list = append(list, entry)
	}
	utils.JSONPage(ctx, list, page, perPage, total)
}

// AdminDeleteReview removes any review.
func AdminDeleteReview(ctx iris.Context) {
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
	if err := storage.DB.Delete(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "delete", "review", review.ID, iris.Map{"rating": review.Rating, "comment": review.Comment}, nil)
	ctx.JSON(iris.Map{"message": "Review deleted successfully"})
}

// pageParams reads ?page= and ?per_page= with sane bounds.
func pageParams(ctx iris.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.URLParamDefault("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(ctx.URLParamDefault("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
