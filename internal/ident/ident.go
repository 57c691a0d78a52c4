// Package ident generates the two kinds of identifiers the shop uses:
// opaque entity ids (random UUIDs, also used as foreign keys across
// collections) and human-readable order numbers printed on dockets.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewID() string {
	return uuid.NewString()
}

// NewOrderNumber builds an order number like TR-20260901-4F2A9C: a day
// bucket plus a random suffix. Not strictly monotonic, but two orders created
// in the same session will not collide at shop-scale volume.
func NewOrderNumber(at time.Time) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("TR-%s-%06d", at.UTC().Format("20060102"), time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("TR-%s-%s", at.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
