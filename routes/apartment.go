package routes

import (
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// CreateApartment reads a multipart form: listing fields plus zero or more
// "images" files. New listings start unverified.
func CreateApartment(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	if err := ctx.Request().ParseMultipartForm(32 << 20); err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Expected a multipart form.", ctx)
		return
	}

	title := ctx.FormValue("title")
	address := ctx.FormValue("address")
	residenceType := ctx.FormValue("residence_type")
	if title == "" || address == "" || residenceType == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "title, address and residence_type are required.", ctx)
		return
	}

	price, priceErr := strconv.ParseFloat(ctx.FormValue("price"), 64)
	neighborhoodID, neighborhoodErr := strconv.Atoi(ctx.FormValue("neighborhood_id"))
	if priceErr != nil || neighborhoodErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "price and neighborhood_id must be numeric.", ctx)
		return
	}

	var neighborhood models.Neighborhood
	if err := storage.DB.First(&neighborhood, neighborhoodID).Error; err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown neighborhood.", ctx)
		return
	}

	apartment := models.Apartment{
		Title:               title,
		Description:         ctx.FormValue("description"),
		Address:             address,
		Price:               price,
		Rooms:               formInt(ctx, "rooms", 1),
		Bathrooms:           formInt(ctx, "bathrooms", 1),
		Kitchens:            formInt(ctx, "kitchens", 1),
		TotalBeds:           formInt(ctx, "total_beds", 0),
		AvailableBeds:       formInt(ctx, "available_beds", 0),
		ResidenceType:       residenceType,
		PreferredTenantType: ctx.FormValue("preferred_tenant_type"),
		WhatsappNumber:      ctx.FormValue("whatsapp_number"),
		HasElevator:         formBool(ctx, "has_elevator"),
		HasWifi:             formBool(ctx, "has_wifi"),
		HasAC:               formBool(ctx, "has_ac"),
		HasBalcony:          formBool(ctx, "has_balcony"),
		HasWashingMachine:   formBool(ctx, "has_washing_machine"),
		HasOven:             formBool(ctx, "has_oven"),
		HasGas:              formBool(ctx, "has_gas"),
		NearTransport:       formBool(ctx, "near_transport"),
		IsVerified:          false,
		OwnerID:             user.ID,
		NeighborhoodID:      neighborhood.ID,
	}

	if v := ctx.FormValue("area"); v != "" {
		if area, err := strconv.ParseFloat(v, 64); err == nil {
			apartment.Area = &area
		}
	}
	if v := ctx.FormValue("floor_number"); v != "" {
		if floor, err := strconv.Atoi(v); err == nil {
			apartment.FloorNumber = &floor
		}
	}

	if err := storage.DB.Create(&apartment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Image files are stored after the row exists; a failed file is skipped,
	// not a failed listing.
	if form := ctx.Request().MultipartForm; form != nil {
		for _, fileHeader := range form.File["images"] {
			url, err := storeImageFile(fileHeader.Filename, func() (io.ReadCloser, error) { return fileHeader.Open() })
			if err != nil {
				log.Println("skipping image:", err)
				continue
			}
			storage.DB.Create(&models.Image{URL: url, ApartmentID: apartment.ID})
		}
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"message":      "Apartment created successfully",
		"apartment_id": apartment.ID,
		"uuid":         apartment.UUID,
	})
}

// GetAllApartments is public; with a valid token the payload marks the
// caller's favorites.
func GetAllApartments(ctx iris.Context) {
	favoriteIDs := map[uint]bool{}
	if user := utils.OptionalUser(ctx); user != nil {
		var favorites []models.Favorite
		storage.DB.Where("user_id = ?", user.ID).Find(&favorites)
		for _, favorite := range favorites {
			favoriteIDs[favorite.ApartmentID] = true
		}
	}

	var apartments []models.Apartment
	storage.DB.Preload("Images").Preload("Reviews").Preload("Owner").Preload("Neighborhood").
		Find(&apartments)

	response := make([]iris.Map, 0, len(apartments))
	for i := range apartments {
		response = append(response, apartmentResponse(ctx, &apartments[i], favoriteIDs, true))
	}
	ctx.JSON(response)
}

// GetFeaturedApartments returns the three newest listings.
func GetFeaturedApartments(ctx iris.Context) {
	var apartments []models.Apartment
	storage.DB.Preload("Images").Preload("Reviews").Preload("Owner").Preload("Neighborhood").
		Order("id DESC").Limit(3).Find(&apartments)

	response := make([]iris.Map, 0, len(apartments))
	for i := range apartments {
		data := apartmentResponse(ctx, &apartments[i], nil, true)
		if images, ok := data["images"].([]string); ok && len(images) > 0 {
			data["image"] = images[0]
		} else {
			data["image"] = nil
		}
		response = append(response, data)
	}
	ctx.JSON(response)
}

func GetVerifiedApartments(ctx iris.Context) {
	var apartments []models.Apartment
	storage.DB.Preload("Images").Preload("Reviews").Preload("Owner").Preload("Neighborhood").
		Where("is_verified = ?", true).Find(&apartments)

	response := make([]iris.Map, 0, len(apartments))
	for i := range apartments {
		response = append(response, apartmentResponse(ctx, &apartments[i], nil, false))
	}
	ctx.JSON(response)
}

// FilterApartments narrows verified listings by neighborhood, price range
// and room count.
func FilterApartments(ctx iris.Context) {
	query := storage.DB.Preload("Images").Preload("Reviews").Preload("Owner").Preload("Neighborhood").
		Where("is_verified = ?", true)

	if v := ctx.URLParam("neighborhood_id"); v != "" {
		query = query.Where("neighborhood_id = ?", v)
	}
	if v := ctx.URLParam("min_price"); v != "" {
		if minPrice, err := strconv.ParseFloat(v, 64); err == nil {
			query = query.Where("price >= ?", minPrice)
		}
	}
	if v := ctx.URLParam("max_price"); v != "" {
		if maxPrice, err := strconv.ParseFloat(v, 64); err == nil {
			query = query.Where("price <= ?", maxPrice)
		}
	}
	if v := ctx.URLParam("rooms"); v != "" {
		if rooms, err := strconv.Atoi(v); err == nil && rooms > 0 {
			query = query.Where("rooms = ?", rooms)
		}
	}

	var apartments []models.Apartment
	query.Find(&apartments)

	response := make([]iris.Map, 0, len(apartments))
	for i := range apartments {
		response = append(response, apartmentResponse(ctx, &apartments[i], nil, false))
	}
	ctx.JSON(response)
}

// SearchApartments does a case-insensitive substring match on titles.
func SearchApartments(ctx iris.Context) {
	term := strings.TrimSpace(ctx.URLParamDefault("query", ""))
	if term == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Please enter a search term.", ctx)
		return
	}

	var apartments []models.Apartment
	storage.DB.Preload("Images").Preload("Reviews").Preload("Owner").Preload("Neighborhood").
		Where("lower(title) LIKE lower(?)", "%"+term+"%").Find(&apartments)

	response := make([]iris.Map, 0, len(apartments))
	for i := range apartments {
		response = append(response, apartmentResponse(ctx, &apartments[i], nil, false))
	}
	ctx.JSON(response)
}

// GetMyApartments is the owner's dashboard list: main image and view counts.
func GetMyApartments(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var apartments []models.Apartment
	storage.DB.Preload("Images").Preload("Neighborhood").
		Where("owner_id = ?", user.ID).Find(&apartments)

	response := make([]iris.Map, 0, len(apartments))
	for i := range apartments {
		apartment := &apartments[i]

		var viewCount int64
		storage.DB.Model(&models.ApartmentView{}).Where("apartment_id = ?", apartment.ID).Count(&viewCount)

		var mainImage interface{}
		if len(apartment.Images) > 0 {
			mainImage = imageFullURL(ctx, apartment.Images[0].URL)
		}

		var neighborhoodName interface{}
		if apartment.Neighborhood != nil {
			neighborhoodName = apartment.Neighborhood.Name
		}

		response = append(response, iris.Map{
			"id":           apartment.ID,
			"uuid":         apartment.UUID,
			"title":        apartment.Title,
			"price":        apartment.Price,
			"neighborhood": neighborhoodName,
			"main_image":   mainImage,
			"views":        viewCount,
		})
	}
	ctx.JSON(response)
}

// GetOwnerApartments returns the owner's raw listings with image URLs.
func GetOwnerApartments(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var apartments []models.Apartment
	storage.DB.Preload("Images").Where("owner_id = ?", user.ID).Find(&apartments)

	response := make([]iris.Map, 0, len(apartments))
	for i := range apartments {
		apartment := &apartments[i]
		images := make([]string, 0, len(apartment.Images))
		for _, image := range apartment.Images {
			images = append(images, imageFullURL(ctx, image.URL))
		}
		response = append(response, iris.Map{
			"id":              apartment.ID,
			"uuid":            apartment.UUID,
			"title":           apartment.Title,
			"description":     apartment.Description,
			"address":         apartment.Address,
			"price":           apartment.Price,
			"rooms":           apartment.Rooms,
			"bathrooms":       apartment.Bathrooms,
			"kitchens":        apartment.Kitchens,
			"total_beds":      apartment.TotalBeds,
			"available_beds":  apartment.AvailableBeds,
			"residence_type":  apartment.ResidenceType,
			"whatsapp_number": apartment.WhatsappNumber,
			"is_verified":     apartment.IsVerified,
			"owner_id":        apartment.OwnerID,
			"neighborhood_id": apartment.NeighborhoodID,
			"images":          images,
		})
	}
	ctx.JSON(iris.Map{"apartments": response})
}

func GetApartmentByID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid apartment id.", ctx)
		return
	}

	var apartment models.Apartment
	if err := storage.DB.Preload("Images").Preload("Reviews").Preload("Owner").Preload("Neighborhood").
		First(&apartment, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(apartmentResponse(ctx, &apartment, nil, false))
}

// GetApartmentDetails is the full detail page payload, including the owner
// contact block.
func GetApartmentDetails(ctx iris.Context) {
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Preload("Images").Preload("Reviews").Preload("Owner").Preload("Neighborhood").
		Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	favoriteIDs := map[uint]bool{}
	if user := utils.OptionalUser(ctx); user != nil {
		var favorite models.Favorite
		if err := storage.DB.Where("user_id = ? AND apartment_id = ?", user.ID, apartment.ID).First(&favorite).Error; err == nil {
			favoriteIDs[apartment.ID] = true
		}
	}

	data := apartmentResponse(ctx, &apartment, favoriteIDs, true)
	if apartment.Owner != nil {
		initial := ""
		if apartment.Owner.FullName != "" {
			initial = string([]rune(apartment.Owner.FullName)[0])
		}
		data["owner"] = iris.Map{
			"id":       apartment.Owner.ID,
			"fullName": apartment.Owner.FullName,
			"phone":    apartment.Owner.Phone,
			"initial":  initial,
		}
	} else {
		data["owner"] = nil
	}
	ctx.JSON(data)
}

func UpdateApartment(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if apartment.OwnerID != user.ID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You are not authorized to update this apartment.", ctx)
		return
	}

	var input UpdateApartmentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != nil {
		apartment.Title = *input.Title
	}
	if input.Description != nil {
		apartment.Description = *input.Description
	}
	if input.Address != nil {
		apartment.Address = *input.Address
	}
	if input.Price != nil {
		apartment.Price = *input.Price
	}
	if input.Rooms != nil {
		apartment.Rooms = *input.Rooms
	}
	if input.AvailableBeds != nil {
		apartment.AvailableBeds = *input.AvailableBeds
	}
	if input.NeighborhoodID != nil {
		var neighborhood models.Neighborhood
		if err := storage.DB.First(&neighborhood, *input.NeighborhoodID).Error; err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown neighborhood.", ctx)
			return
		}
		apartment.NeighborhoodID = neighborhood.ID
	}

	if err := storage.DB.Save(&apartment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"message": "Apartment updated successfully"})
}

// DeleteApartment removes the listing and everything hanging off it:
// favorites, views, reviews, image rows and their backing files.
func DeleteApartment(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	apartmentUUID := ctx.Params().Get("uuid")

	var apartment models.Apartment
	if err := storage.DB.Preload("Images").Where("uuid = ?", apartmentUUID).First(&apartment).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if apartment.OwnerID != user.ID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You are not authorized to delete this apartment.", ctx)
		return
	}

	if err := deleteApartmentCascade(&apartment); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"message": "Apartment deleted successfully"})
}

// deleteApartmentCascade removes dependent rows in one transaction, then the
// backing files best effort. Shared with the admin surface.
func deleteApartmentCascade(apartment *models.Apartment) error {
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("apartment_id = ?", apartment.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("apartment_id = ?", apartment.ID).Delete(&models.ApartmentView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("apartment_id = ?", apartment.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("apartment_id = ?", apartment.ID).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		return tx.Delete(apartment).Error
	})
	if err != nil {
		return err
	}

	for _, image := range apartment.Images {
		if strings.HasPrefix(image.URL, "http") {
			if err := storage.DeleteImageFromCloudinary(image.URL); err != nil {
				log.Println("error deleting image:", err)
			}
		} else if err := storage.DeleteUploadedImage(image.URL); err != nil {
			log.Println("error deleting image:", err)
		}
	}
	return nil
}

// apartmentResponse is the shared listing payload. favoriteIDs may be nil.
func apartmentResponse(ctx iris.Context, apartment *models.Apartment, favoriteIDs map[uint]bool, includeAllImages bool) iris.Map {
	var totalRating int
	for _, review := range apartment.Reviews {
		totalRating += review.Rating
	}
	rating := 0.0
	if len(apartment.Reviews) > 0 {
		rating = float64(totalRating) / float64(len(apartment.Reviews))
	}

	ownerName := "Unknown owner"
	if apartment.Owner != nil {
		ownerName = apartment.Owner.FullName
	}
	neighborhoodName := ""
	if apartment.Neighborhood != nil {
		neighborhoodName = apartment.Neighborhood.Name
	}

	data := iris.Map{
		"id":                  apartment.ID,
		"uuid":                apartment.UUID,
		"title":               apartment.Title,
		"description":         apartment.Description,
		"address":             apartment.Address,
		"price":               apartment.Price,
		"bedrooms":            apartment.Rooms,
		"bathrooms":           apartment.Bathrooms,
		"kitchens":            apartment.Kitchens,
		"totalBeds":           apartment.TotalBeds,
		"availableBeds":       apartment.AvailableBeds,
		"residenceType":       apartment.ResidenceType,
		"preferredTenantType": apartment.PreferredTenantType,
		"whatsappNumber":      apartment.WhatsappNumber,
		"isVerified":          apartment.IsVerified,
		"ownerName":           ownerName,
		"neighborhood":        neighborhoodName,
		"area":                apartment.Area,
		"floorNumber":         apartment.FloorNumber,
		"features":            apartment.FeatureKeys(),
		"createdAt":           apartment.CreatedAt,
		"rating":              rating,
		"reviewCount":         len(apartment.Reviews),
		"isFavorite":          favoriteIDs[apartment.ID],
	}

	if includeAllImages {
		images := make([]string, 0, len(apartment.Images))
		for _, image := range apartment.Images {
			images = append(images, imageFullURL(ctx, image.URL))
		}
		data["images"] = images
	} else if len(apartment.Images) > 0 {
		data["main_image"] = imageFullURL(ctx, apartment.Images[0].URL)
	} else {
		data["main_image"] = nil
	}
	return data
}

// imageFullURL leaves Cloudinary URLs alone and prefixes local filenames
// with the uploads route.
func imageFullURL(ctx iris.Context, stored string) string {
	if strings.HasPrefix(stored, "http") {
		return stored
	}
	scheme := "http"
	if ctx.Request().TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + ctx.Request().Host + "/uploads/" + stored
}

func storeImageFile(filename string, open func() (io.ReadCloser, error)) (string, error) {
	if !storage.AllowedImageFile(filename) {
		return "", errUnsupportedImage
	}
	file, err := open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	if storage.CloudinaryConfigured() {
		return storage.UploadImageToCloudinary(data, uuid.NewString())
	}
	return storage.SaveUploadedImage(data, filename)
}

func formInt(ctx iris.Context, key string, fallback int) int {
	if v := ctx.FormValue(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// formBool accepts the checkbox spellings the frontend sends.
func formBool(ctx iris.Context, key string) bool {
	switch strings.ToLower(ctx.FormValue(key)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

type UpdateApartmentInput struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Address        *string  `json:"address"`
	Price          *float64 `json:"price"`
	Rooms          *int     `json:"rooms"`
	AvailableBeds  *int     `json:"availableBeds"`
	NeighborhoodID *uint    `json:"neighborhoodID"`
}
