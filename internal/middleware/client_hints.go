package middleware

import (
	"github.com/gin-gonic/gin"

	"expensely/internal/theme"
)

const (
	// ColorSchemeHeader is the client hint carrying the OS color scheme.
	ColorSchemeHeader = "Sec-CH-Prefers-Color-Scheme"

	// SystemDarkKey holds the parsed hint (bool) when the client sent one.
	SystemDarkKey = "systemDark"
)

// ClientHints asks browsers for the color-scheme hint and records it on the
// context for handlers that feed the theme signal.
func ClientHints() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Accept-CH", ColorSchemeHeader)
		c.Writer.Header().Add("Vary", ColorSchemeHeader)
		if dark, ok := theme.ParseClientHint(c.GetHeader(ColorSchemeHeader)); ok {
			c.Set(SystemDarkKey, dark)
		}
		c.Next()
	}
}

// SystemDark returns the hint recorded by ClientHints.
func SystemDark(c *gin.Context) (dark bool, ok bool) {
	v, exists := c.Get(SystemDarkKey)
	if !exists {
		return false, false
	}
	dark, ok = v.(bool)
	return dark, ok
}
