package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	signatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="

	// Upper bound on a buffered webhook delivery.
	maxWebhookBody = 1 << 20
)

// VerifyWhatsAppSignature only lets through webhook deliveries signed with
// appSecret. The body is buffered so later handlers can read it again.
func VerifyWhatsAppSignature(appSecret string) gin.HandlerFunc {
	key := []byte(appSecret)

	return func(c *gin.Context) {
		header := c.GetHeader(signatureHeader)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing signature"})
			return
		}
		mac, ok := parseSignature(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Malformed signature"})
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !hmac.Equal(mac, bodyMAC(body, key)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}

		c.Next()
	}
}

// parseSignature decodes a "sha256=<hex>" header into the raw MAC.
func parseSignature(header string) ([]byte, bool) {
	digest, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return nil, false
	}
	mac, err := hex.DecodeString(digest)
	if err != nil || len(mac) != sha256.Size {
		return nil, false
	}
	return mac, true
}

func bodyMAC(body, key []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(body)
	return h.Sum(nil)
}

// signatureHeaderFor renders the header value Meta sends for body.
func signatureHeaderFor(body []byte, secret string) string {
	return signaturePrefix + hex.EncodeToString(bodyMAC(body, []byte(secret)))
}
