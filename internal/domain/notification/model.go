package notification

import (
	"time"

	"github.com/feesync/feesync/internal/types"
)

// Notification is an entry in the admin activity log
type Notification struct {
	ID        string                 `bson:"id" json:"id"`
	Type      types.NotificationType `bson:"type" json:"type"`
	Message   string                 `bson:"message" json:"message"`
	Read      bool                   `bson:"read" json:"read"`
	Actor     string                 `bson:"actor" json:"actor"`
	Metadata  map[string]string      `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}
