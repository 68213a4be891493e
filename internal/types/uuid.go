package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex pay_01HZX4T3QK8V6W2Y7N0B5C9D1E
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	UUID_PREFIX_CUSTOMER     = "cust"
	UUID_PREFIX_PAYMENT      = "pay"
	UUID_PREFIX_USER         = "user"
	UUID_PREFIX_NOTIFICATION = "ntf"
	UUID_PREFIX_SYNC_LOG     = "sync"
	UUID_PREFIX_TOKEN        = "tok"
)
