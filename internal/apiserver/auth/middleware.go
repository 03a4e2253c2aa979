package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"hiring-portal/internal/apiserver/respond"
	"hiring-portal/internal/shared/model"
	"hiring-portal/pkg/logging"
)

// UserLookup 中间件解析操作者所需的最小存储能力
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// 免认证路由白名单（前缀匹配）
var publicPrefixes = []string{
	"/api/v1/auth/register",
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
	"/api/v1/auth/email/verify",
	"/health",
	"/metrics",
}

// 免认证路由精确匹配
var publicExact = map[string]bool{
	"GET /api/v1/jobs": true,
}

func isPublicRoute(method, path string) bool {
	if publicExact[method+" "+path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Middleware 创建 JWT 认证中间件
//
// 受保护路由要求有效的 access token，且 subject 对应的用户仍然存在；
// Actor 的角色、组织、验证状态取自存储中的用户记录。
func Middleware(cfg Config, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicRoute(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// 提取 Bearer Token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respond.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				respond.Error(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := ParseToken(cfg, parts[1])
			if err != nil {
				log.Printf("[auth] token parse error: %v", err)
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if claims.Type != tokenTypeAccess {
				respond.Error(w, http.StatusUnauthorized, "invalid token type")
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				log.Printf("[auth] resolve user %s failed: %v", claims.Subject, err)
				respond.Error(w, http.StatusInternalServerError, "internal error")
				return
			}
			if user == nil {
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithActor(r.Context(), ActorFromUser(user))
			ctx = logging.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
