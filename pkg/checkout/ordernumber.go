package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber returns a human-presentable, globally unique order
// number: ORD-<UTC timestamp>-<random suffix>. The suffix carries 48 bits
// of randomness; a unique index on orders.order_number backstops it.
// The number is generated once and displayed verbatim everywhere.
func NewOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:13])
	suffix = strings.ReplaceAll(suffix, "-", "")
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102150405"), suffix)
}
