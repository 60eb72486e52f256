package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/campushub/internal/actorctx"
	"github.com/geocoder89/campushub/internal/auth"
	"github.com/gin-gonic/gin"
)

const DeviceCookieName = "device_token"

// DeviceTokens issues and verifies the signed device cookie.
type DeviceTokens interface {
	NewDeviceID() string
	GenerateDeviceToken(deviceID string) (string, time.Time, error)
	VerifyDeviceToken(token string) (*auth.Claims, error)
}

type CookieOptions struct {
	Path     string
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Device identifies the browser behind a request. Each device owns one
// session store. A missing or invalid cookie gets a fresh device id.
func Device(tokens DeviceTokens, opts CookieOptions) gin.HandlerFunc {
	opts = opts.normalize()

	return func(c *gin.Context) {
		var deviceID string

		if raw, err := c.Cookie(DeviceCookieName); err == nil && raw != "" {
			if claims, err := tokens.VerifyDeviceToken(raw); err == nil {
				deviceID = claims.DeviceID
			}
		}

		if deviceID == "" {
			deviceID = tokens.NewDeviceID()

			token, expiresAt, err := tokens.GenerateDeviceToken(deviceID)
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "issue device token failed", "err", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"code":      "internal_error",
						"message":   "Could not identify device",
						"requestId": RequestIDFromContext(c),
					},
				})
				return
			}

			http.SetCookie(c.Writer, &http.Cookie{
				Name:     DeviceCookieName,
				Value:    token,
				Path:     opts.Path,
				Domain:   opts.Domain,
				Expires:  expiresAt,
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: opts.SameSite,
			})
		}

		c.Set(CtxDeviceID, deviceID)
		c.Request = c.Request.WithContext(actorctx.WithDeviceID(c.Request.Context(), deviceID))

		c.Next()
	}
}
