package routes

import (
	"errors"
	"strings"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	role := userInput.UserType
	if role != "owner" {
		role = "student"
	}

	newUser = models.User{
		FullName:     userInput.FullName,
		Email:        strings.ToLower(userInput.Email),
		Password:     hashedPassword,
		BirthDate:    userInput.BirthDate,
		Gender:       userInput.Gender,
		Role:         role,
		AcademicYear: userInput.AcademicYear,
		College:      userInput.Faculty,
		University:   userInput.University,
	}
	if userInput.Phone != "" {
		phone := userInput.Phone
		newUser.Phone = &phone
	}

	if err := storage.DB.Create(&newUser).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	returnUser(&newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid email or password."

	var existingUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(&existingUser, ctx)
}

func Logout(ctx iris.Context) {
	var input utils.RefreshTokenInput
	if err := ctx.ReadJSON(&input); err == nil {
		utils.RevokeRefreshToken(input.RefreshToken)
	}
	utils.RemoveAccessTokenCookie(ctx)
	ctx.JSON(iris.Map{"message": "Logged out."})
}

// Profile returns the authenticated user's full record.
func Profile(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	storage.DB.Preload("Favorites").Preload("Reviews").Preload("Apartments").
		First(user, user.ID)
	ctx.JSON(profileResponse(user))
}

// CheckAuth is the cheap "is my cookie still good" probe for the frontend.
func CheckAuth(ctx iris.Context) {
	ctx.JSON(iris.Map{"message": "Authenticated"})
}

func UpdateProfile(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var input UpdateProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Allow-listed fields only; email and role are immutable here.
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.University != nil {
		user.University = *input.University
	}
	if input.College != nil {
		user.College = *input.College
	}
	if input.AcademicYear != nil {
		user.AcademicYear = *input.AcademicYear
	}

	if err := storage.DB.Save(user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(profileResponse(user))
}

func UpdatePassword(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var input UpdatePasswordInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)) != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Old password is incorrect.", ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(input.NewPassword)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	user.Password = hashedPassword
	if err := storage.DB.Save(user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"message": "Password updated."})
}

// GetUser exposes the public contact card of a user, self only.
func GetUser(ctx iris.Context) {
	current := utils.UserFromContext(ctx)
	if current.UUID != ctx.Params().Get("uuid") {
		utils.CreateForbidden(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"uuid":     current.UUID,
		"fullName": current.FullName,
		"phone":    current.Phone,
	})
}

func getAndHandleUserExists(user *models.User, email string) (bool, error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(user)
	if userExistsQuery.Error != nil {
		if errors.Is(userExistsQuery.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, userExistsQuery.Error
	}
	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// returnUser issues the token pair, sets the identity cookie and serializes
// the user. Shared by register and login.
func returnUser(user *models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.SetAccessTokenCookie(ctx, string(tokenPair.AccessToken))

	ctx.JSON(iris.Map{
		"user":         profileResponse(user),
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

func profileResponse(user *models.User) iris.Map {
	return iris.Map{
		"id":              user.ID,
		"uuid":            user.UUID,
		"fullName":        user.FullName,
		"email":           user.Email,
		"phone":           user.Phone,
		"birthDate":       user.BirthDate,
		"gender":          user.Gender,
		"role":            user.Role,
		"academicYear":    user.AcademicYear,
		"college":         user.College,
		"university":      user.University,
		"joinDate":        user.CreatedAt.Format("2006-01-02"),
		"favoritesCount":  len(user.Favorites),
		"reviewsCount":    len(user.Reviews),
		"apartmentsCount": len(user.Apartments),
		"isAdmin":         user.IsAdmin(),
	}
}

type RegisterUserInput struct {
	FullName     string `json:"fullName" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=256"`
	Phone        string `json:"phone"`
	BirthDate    string `json:"birthDate"`
	Gender       string `json:"gender"`
	UserType     string `json:"userType"`
	AcademicYear string `json:"academicYear"`
	Faculty      string `json:"faculty"`
	University   string `json:"university"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	FullName     *string `json:"fullName"`
	Phone        *string `json:"phone"`
	University   *string `json:"university"`
	College      *string `json:"college"`
	AcademicYear *string `json:"academicYear"`
}

type UpdatePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=256"`
}
