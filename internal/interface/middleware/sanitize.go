package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// markupReplacer strips the characters that open markup from string values.
var markupReplacer = strings.NewReplacer("<", "", ">", "")

// SanitizeBody rewrites JSON request bodies before any binding or validation
// sees them: keys beginning with the query-operator marker "$" are renamed to
// a neutral "_" prefix, recursively, and markup-significant characters are
// stripped from string values. A crafted operator payload is therefore plain
// data by the time shape validation accepts or rejects it.
func SanitizeBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			c.Next()
			return
		}
		ct := c.ContentType()
		if ct != "" && ct != "application/json" {
			c.Next()
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}

		var payload any
		if err := json.Unmarshal(raw, &payload); err != nil {
			// leave malformed bodies for the binder to reject
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			c.Next()
			return
		}

		cleaned, _ := json.Marshal(sanitizeValue(payload))
		c.Request.Body = io.NopCloser(bytes.NewReader(cleaned))
		c.Request.ContentLength = int64(len(cleaned))
		c.Next()
	}
}

func sanitizeValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			if strings.HasPrefix(k, "$") {
				k = "_" + strings.TrimLeft(k, "$")
			}
			out[k] = sanitizeValue(val)
		}
		return out
	case []any:
		for i := range x {
			x[i] = sanitizeValue(x[i])
		}
		return x
	case string:
		return markupReplacer.Replace(x)
	default:
		return v
	}
}
