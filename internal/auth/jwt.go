package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const deviceTokenType = "device"

// Claims identify the browser (device) a session store belongs to.
// They carry no user identity.
type Claims struct {
	DeviceID  string `json:"sub"`
	TokenType string `json:"typ"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret    []byte
	deviceTTL time.Duration
	now       func() time.Time
}

func NewManager(secret string, deviceTTL time.Duration) *Manager {
	if deviceTTL <= 0 {
		deviceTTL = 30 * 24 * time.Hour
	}
	return &Manager{
		secret:    []byte(secret),
		deviceTTL: deviceTTL,
		now:       time.Now,
	}
}

func (m *Manager) DeviceTTL() time.Duration {
	return m.deviceTTL
}

// NewDeviceID mints a random device id.
func (m *Manager) NewDeviceID() string {
	return uuid.NewString()
}

func (m *Manager) GenerateDeviceToken(deviceID string) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.deviceTTL)

	claims := Claims{
		DeviceID:  deviceID,
		TokenType: deviceTokenType,
		JTI:       uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   deviceID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, expiresAt, nil
}

func (m *Manager) ParseAndValidate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (m *Manager) VerifyDeviceToken(tokenStr string) (*Claims, error) {
	claims, err := m.ParseAndValidate(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != deviceTokenType {
		return nil, errors.New("invalid token type")
	}
	if claims.DeviceID == "" {
		return nil, errors.New("missing device id")
	}
	return claims, nil
}
