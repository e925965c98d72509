package routes

import (
	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/kataras/iris/v12"
)

type CreateNeighborhoodInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// GetNeighborhoods is the public lookup the listing forms and filters use.
func GetNeighborhoods(ctx iris.Context) {
	var neighborhoods []models.Neighborhood
	storage.DB.Order("name ASC").Find(&neighborhoods)

	list := make([]iris.Map, 0, len(neighborhoods))
	for _, neighborhood := range neighborhoods {
		list = append(list, iris.Map{"id": neighborhood.ID, "name": neighborhood.Name})
	}
	ctx.JSON(iris.Map{"neighborhoods": list})
}

// CreateNeighborhood adds a new area name. Admin-role users only.
func CreateNeighborhood(ctx iris.Context) {
	var input CreateNeighborhoodInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	neighborhood := models.Neighborhood{Name: input.Name}
	if err := storage.DB.Create(&neighborhood).Error; err != nil {
		utils.JSONError(ctx, iris.StatusConflict, "Neighborhood already exists")
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"id": neighborhood.ID, "name": neighborhood.Name})
}

// DeleteNeighborhood removes an area that no listing references.
func DeleteNeighborhood(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var neighborhood models.Neighborhood
	if err := storage.DB.First(&neighborhood, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Neighborhood not found")
		return
	}

	var inUse int64
	storage.DB.Model(&models.Apartment{}).Where("neighborhood_id = ?", neighborhood.ID).Count(&inUse)
	if inUse > 0 {
		utils.JSONError(ctx, iris.StatusConflict, "Neighborhood is referenced by apartments")
		return
	}

	if err := storage.DB.Delete(&neighborhood).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"message": "Neighborhood deleted successfully"})
}
