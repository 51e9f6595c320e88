package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/energycompany/energy-registry/internal/web"
)

const (
	flashCookieName = "flash"
	flashCookieTTL  = 30 * time.Second
	flashSeparator  = "."
)

// Flasher stores one-shot messages in an HMAC-signed cookie.
// Cookie value: base64(json) + "." + base64(hmac-sha256(json)).
type Flasher struct {
	secret []byte
	secure bool
}

func NewFlasher(secret string, secure bool) *Flasher {
	return &Flasher{secret: []byte(secret), secure: secure}
}

// Set writes the flash cookie for the next request.
func (f *Flasher) Set(c echo.Context, kind, message string) {
	data, err := json.Marshal(web.Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	value := base64.RawURLEncoding.EncodeToString(data) + flashSeparator +
		base64.RawURLEncoding.EncodeToString(f.sign(data))
	c.SetCookie(f.cookie(value, int(flashCookieTTL.Seconds())))
}

// Pop reads, verifies and deletes the flash cookie. Missing or tampered
// cookies yield nil.
func (f *Flasher) Pop(c echo.Context) *web.Flash {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	c.SetCookie(f.cookie("", -1))

	parts := strings.SplitN(cookie.Value, flashSeparator, 2)
	if len(parts) != 2 {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || !hmac.Equal(sig, f.sign(data)) {
		return nil
	}

	var flash web.Flash
	if err := json.Unmarshal(data, &flash); err != nil {
		return nil
	}
	return &flash
}

func (f *Flasher) sign(data []byte) []byte {
	mac := hmac.New(sha256.New, f.secret)
	mac.Write(data)
	return mac.Sum(nil)
}

func (f *Flasher) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
