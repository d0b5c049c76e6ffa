package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const staffContextKey = "staff"

// Staff 已登入的員工
type Staff struct {
	ID      string
	SalonID string
	Role    string
}

// StaffClaims 員工 JWT 內容
type StaffClaims struct {
	SalonID string `json:"salon_id"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator 驗證員工 JWT（HS256）並檢查角色權限
type Authenticator struct {
	secret   []byte
	issuer   string
	enforcer *casbin.SyncedEnforcer
	log      *zap.Logger
}

// NewAuthenticator 建立驗證器
func NewAuthenticator(secret, issuer string, enforcer *casbin.SyncedEnforcer, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{
		secret:   []byte(secret),
		issuer:   issuer,
		enforcer: enforcer,
		log:      log.Named("auth"),
	}
}

// Sign 簽發員工 JWT
func (a *Authenticator) Sign(staff Staff, now time.Time, ttl time.Duration) (string, error) {
	claims := StaffClaims{
		SalonID: staff.SalonID,
		Role:    staff.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse 驗證 JWT 並取出員工身分
//
// 沒有 role 的憑證視為一般員工。
func (a *Authenticator) Parse(raw string) (Staff, error) {
	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Staff{}, err
	}
	if !token.Valid {
		return Staff{}, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" || claims.SalonID == "" {
		return Staff{}, errors.New("token missing sub or salon_id")
	}

	role := claims.Role
	if role == "" {
		role = RoleStaff
	}
	return Staff{ID: claims.Subject, SalonID: claims.SalonID, Role: role}, nil
}

// Require 要求有效 JWT，且角色可對 object 執行 action
func (a *Authenticator) Require(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithAuthError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header missing or malformed")
			return
		}

		staff, err := a.Parse(raw)
		if err != nil {
			abortWithAuthError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		allowed, err := a.enforcer.Enforce(subject(staff.Role), object, action)
		if err != nil {
			a.log.Error("policy evaluation failed", zap.String("role", staff.Role), zap.Error(err))
			abortWithAuthError(c, http.StatusInternalServerError, "UNEXPECTED_ERROR", "Failed to verify permissions")
			return
		}
		if !allowed {
			abortWithAuthError(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
			return
		}

		c.Set(staffContextKey, staff)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortWithAuthError(c *gin.Context, status int, code, message string) {
	c.Set("error_code", code)
	c.AbortWithStatusJSON(status, errorBody{Success: false, Error: code, Message: message})
}

// staffFrom 取出 Require 放入的員工身分
func staffFrom(c *gin.Context) Staff {
	if v, ok := c.Get(staffContextKey); ok {
		if staff, ok := v.(Staff); ok {
			return staff
		}
	}
	return Staff{}
}
