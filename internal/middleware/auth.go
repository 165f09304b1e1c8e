package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// PrincipalContextKey 是存储在 context 中的调用方标识的键。
type PrincipalContextKey struct{}

// AuthOptions 配置鉴权方式，API Key 与 JWT 可以同时启用。
type AuthOptions struct {
	APIKeys   []string
	JWTSecret string // HS256 等 HMAC 算法的共享密钥
	JWKSURL   string // RS256 / ES256 公钥地址
	Logger    zerolog.Logger
}

// Authenticator 校验 Authorization 请求头。
// 支持两种格式：ApiKey <token> 与 Bearer <jwt>。
type Authenticator struct {
	keys      map[string]struct{}
	jwtSecret []byte
	jwks      *keyfunc.JWKS
	logger    zerolog.Logger
}

// NewAuthenticator 创建鉴权器。JWKS 初始化失败时仅记录警告，Bearer 令牌退回 HMAC 校验。
func NewAuthenticator(opts AuthOptions) *Authenticator {
	a := &Authenticator{
		keys:      make(map[string]struct{}, len(opts.APIKeys)),
		jwtSecret: []byte(opts.JWTSecret),
		logger:    opts.Logger,
	}
	for _, key := range opts.APIKeys {
		trimmed := strings.TrimSpace(key)
		if trimmed != "" {
			a.keys[trimmed] = struct{}{}
		}
	}

	if opts.JWKSURL != "" {
		jwks, err := keyfunc.Get(opts.JWKSURL, keyfunc.Options{
			RefreshInterval: time.Hour,
			RefreshErrorHandler: func(err error) {
				opts.Logger.Error().Err(err).Msg("jwks refresh failed")
			},
		})
		if err != nil {
			opts.Logger.Warn().Err(err).Str("jwks_url", opts.JWKSURL).Msg("jwks init failed")
		} else {
			a.jwks = jwks
		}
	}
	return a
}

// Close 停止 JWKS 后台刷新。
func (a *Authenticator) Close() {
	if a != nil && a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// Middleware 返回鉴权中间件，成功后把调用方标识存入 context。
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		scheme, credential, _ := strings.Cut(authHeader, " ")
		credential = strings.TrimSpace(credential)
		if credential == "" {
			writeAuthError(w, http.StatusUnauthorized, "empty credential")
			return
		}

		var principal string
		switch scheme {
		case "ApiKey":
			if _, valid := a.keys[credential]; !valid {
				writeAuthError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			principal = "apikey:" + keyFingerprint(credential)
		case "Bearer":
			sub, err := a.verifyToken(credential)
			if err != nil {
				a.logger.Debug().Err(err).Msg("token verification failed")
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			principal = sub
		default:
			writeAuthError(w, http.StatusUnauthorized, "invalid Authorization format, expected: ApiKey <token> or Bearer <token>")
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalContextKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) verifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			if len(a.jwtSecret) == 0 {
				return nil, errors.New("hmac token but no secret configured")
			}
			return a.jwtSecret, nil
		}
		if a.jwks != nil {
			return a.jwks.Keyfunc(token)
		}
		return nil, fmt.Errorf("no verification key for alg %v", token.Header["alg"])
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// GetPrincipal 从 context 中获取经过鉴权的调用方标识。
func GetPrincipal(ctx context.Context) string {
	if v, ok := ctx.Value(PrincipalContextKey{}).(string); ok {
		return v
	}
	return ""
}

// keyFingerprint 只保留 key 的末尾几位，避免完整 key 出现在日志里。
func keyFingerprint(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `ApiKey realm="ossbridge", Bearer realm="ossbridge"`)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
