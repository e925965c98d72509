package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

var bgContext = context.Background()

// AccessTokenCookie carries the signed user identity between the browser and
// the API. HTTP-only, secure, cross-site enabled for the separate frontend.
const AccessTokenCookie = "access_token_cookie"

// AccessToken is the user-realm claim set. Identity is the user UUID.
type AccessToken struct {
	UUID string `json:"uuid"`
	Role string `json:"role"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func CreateTokenPair(user *models.User) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 24*time.Hour)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), 90*24*time.Hour)

	accessToken, err := accessTokenSigner.Sign(AccessToken{UUID: user.UUID, Role: user.Role})
	if err != nil {
		return nil, err
	}

	refreshToken, err := refreshTokenSigner.Sign(jwt.Claims{Subject: user.UUID})
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	// Refresh tokens are single use; the allow-list entry is consumed on rotation.
	if storage.Redis != nil {
		storage.Redis.Set(bgContext, string(refreshToken), "true", 90*24*time.Hour+5*time.Minute)
	}

	return &tokenPair, nil
}

// RefreshToken rotates a verified refresh token into a fresh pair.
func RefreshToken(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	// Single-use check against the redis allow-list. Without redis the
	// signature verification alone gates the rotation.
	if storage.Redis != nil {
		validToken, tokenErr := storage.Redis.Get(bgContext, tokenStr).Result()
		if tokenErr != nil {
			CreateNotFound(ctx)
			return
		}
		if validToken != "true" {
			ctx.StatusCode(iris.StatusForbidden)
			return
		}
		storage.Redis.Del(bgContext, tokenStr)
	}

	var user models.User
	if err := storage.DB.Where("uuid = ?", token.StandardClaims.Subject).First(&user).Error; err != nil {
		CreateNotFound(ctx)
		return
	}

	tokenPair, tokenPairErr := CreateTokenPair(&user)
	if tokenPairErr != nil {
		CreateInternalServerError(ctx)
		return
	}

	SetAccessTokenCookie(ctx, string(tokenPair.AccessToken))
	ctx.JSON(iris.Map{
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

// ParseAccessToken verifies a raw user-realm token outside the middleware,
// for endpoints where authentication is optional.
func ParseAccessToken(tokenStr string) (*AccessToken, error) {
	parsed, err := jwtv4.Parse(tokenStr, func(t *jwtv4.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv4.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("ACCESS_TOKEN_SECRET")), nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid access token")
	}
	claims, ok := parsed.Claims.(jwtv4.MapClaims)
	if !ok {
		return nil, errors.New("invalid access token claims")
	}
	uuid, _ := claims["uuid"].(string)
	role, _ := claims["role"].(string)
	if uuid == "" {
		return nil, errors.New("access token missing identity")
	}
	return &AccessToken{UUID: uuid, Role: role}, nil
}

// CreateAdminToken signs a 12h admin-realm token with its own secret.
func CreateAdminToken(adminID string) (string, error) {
	claims := jwtv4.MapClaims{
		"admin_id": adminID,
		"exp":      time.Now().Add(12 * time.Hour).Unix(),
	}
	token := jwtv4.NewWithClaims(jwtv4.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("ADMIN_TOKEN_SECRET")))
}

// VerifyAdminToken returns the admin id carried by a valid admin token.
func VerifyAdminToken(tokenStr string) (string, error) {
	parsed, err := jwtv4.Parse(tokenStr, func(t *jwtv4.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv4.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("ADMIN_TOKEN_SECRET")), nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid admin token")
	}
	claims, ok := parsed.Claims.(jwtv4.MapClaims)
	if !ok {
		return "", errors.New("invalid admin token claims")
	}
	adminID, _ := claims["admin_id"].(string)
	if adminID == "" {
		return "", errors.New("admin token missing identity")
	}
	return adminID, nil
}

func SetAccessTokenCookie(ctx iris.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
}

func RemoveAccessTokenCookie(ctx iris.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})
}

// RevokeRefreshToken drops a refresh token from the allow-list on logout.
func RevokeRefreshToken(refreshToken string) {
	if storage.Redis != nil && refreshToken != "" {
		storage.Redis.Del(bgContext, refreshToken)
	}
}
