package middleware

import "github.com/gin-gonic/gin"

// UserAuth accepts any authenticated session regardless of role.
func UserAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret)
}
