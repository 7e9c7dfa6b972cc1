package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/madrasahub/core"
)

const (
	adminSubject     = "admin"
	contextTokenKey  = "adminToken"
	adminAudience    = "Admin"
	minPasscodeBytes = 4
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	IsAdmin bool `json:"is_admin,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func GetAdminClaims(conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   adminSubject,
			Audience:  adminAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		IsAdmin: true,
	}
}

// GenerateToken generates a signed JWT token string representing the admin Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	jwtConf := newJWTConfig(conf)
	method := jwt.GetSigningMethod(jwtConf.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(jwtConf.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

// authenticate checks the terminal passcode against the configured bcrypt hash.
func authenticate(conf *core.Config, passcode string) (*Claims, error) {
	if conf.AdminPasscodeHash == "" {
		return nil, errAdminDisabled
	}
	if len(passcode) < minPasscodeBytes {
		return nil, errAuthenticationFailed
	}
	err := bcrypt.CompareHashAndPassword([]byte(conf.AdminPasscodeHash), []byte(passcode))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "comparing passcode")
	}
	return GetAdminClaims(conf), nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
