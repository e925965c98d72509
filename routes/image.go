package routes

import (
	"errors"
	"io"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/kataras/iris/v12"
)

var errUnsupportedImage = errors.New("unsupported image type")

// UploadApartmentImages attaches more photos to a listing the caller owns.
func UploadApartmentImages(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found")
		return
	}
	if apartment.OwnerID != user.ID {
		utils.CreateForbidden(ctx)
		return
	}

	if err := ctx.Request().ParseMultipartForm(32 << 20); err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := ctx.Request().MultipartForm.File["images"]
	if len(files) == 0 {
		utils.JSONError(ctx, iris.StatusBadRequest, "No images provided")
		return
	}

	urls := make([]string, 0, len(files))
	for _, header := range files {
		header := header
		stored, err := storeImageFile(header.Filename, func() (io.ReadCloser, error) {
			return header.Open()
		})
		if err != nil {
			if errors.Is(err, errUnsupportedImage) {
				utils.JSONError(ctx, iris.StatusBadRequest, "Unsupported image type: " + header.Filename)
				return
			}
			utils.CreateInternalServerError(ctx)
			return
		}
		image := models.Image{URL: stored, ApartmentID: apartment.ID}
		if err := storage.DB.Create(&image).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		urls = append(urls, imageFullURL(ctx, stored))
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"message": "Images uploaded successfully", "images": urls})
}

// GetApartmentImages lists the photo URLs of a listing.
func GetApartmentImages(ctx iris.Context) {
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Preload("Images").Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Apartment not found")
		return
	}

	urls := make([]string, 0, len(apartment.Images))
	for _, image := range apartment.Images {
		urls = append(urls, imageFullURL(ctx, image.URL))
	}
	ctx.JSON(iris.Map{"images": urls})
}
