package types

// Source records where a mirrored document came from.
type Source string

const (
	SourceZoho   Source = "zoho"
	SourceManual Source = "manual"
)

// Role is the kind of principal carried by a JWT
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// TokenState is the lifecycle state of the provider OAuth token
type TokenState string

const (
	TokenStateUninitialized TokenState = "uninitialized"
	TokenStateAuthorized    TokenState = "authorized"
	TokenStateRefreshing    TokenState = "refreshing"
	TokenStateFailed        TokenState = "failed"
)

// NotificationType classifies entries in the admin notification log
type NotificationType string

const (
	NotificationTypeSync     NotificationType = "sync"
	NotificationTypeReminder NotificationType = "reminder"
	NotificationTypePayment  NotificationType = "payment"
	NotificationTypeCustomer NotificationType = "customer"
	NotificationTypeAuth     NotificationType = "auth"
)

// ReminderChannel selects how a fee reminder is delivered
type ReminderChannel string

const (
	ReminderChannelEmail    ReminderChannel = "email"
	ReminderChannelWhatsApp ReminderChannel = "whatsapp"
	ReminderChannelBoth     ReminderChannel = "both"
)

// Includes reports whether c delivers over target.
func (c ReminderChannel) Includes(target ReminderChannel) bool {
	return c == target || c == ReminderChannelBoth
}
