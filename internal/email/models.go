package email

// SendEmailRequest represents a request to send an email
type SendEmailRequest struct {
	ToName    string `json:"to_name"`
	ToAddress string `json:"to_address" validate:"required,email"`
	Subject   string `json:"subject" validate:"required"`
	Text      string `json:"text"`
	HTML      string `json:"html"`
}

// SendEmailResponse represents the response from sending an email
type SendEmailResponse struct {
	MessageID string
	Success   bool
	Error     string
}

// Template is a message with {{placeholder}} fields
type Template struct {
	Name    string
	Subject string
	Text    string
	HTML    string
}
