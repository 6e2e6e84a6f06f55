package middleware

import (
	"net/http"
	"strings"

	"checkout-api/internal/usecase"
	auth "checkout-api/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const CtxUserIDKey = "user_id" // uuid.UUID

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Bearer形式か確認してtokenを抜く
			authz := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return unauthorized(c)
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return unauthorized(c)
			}

			userID, err := auth.ParseAccessToken(rawToken, secret)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(CtxUserIDKey, userID)
			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Code: usecase.CodeUnauthorized})
}
