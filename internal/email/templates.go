package email

import (
	"fmt"
	"strings"
)

var (
	// TemplateFeeReminder expects student_name, month, outstanding, institute_name and portal_url
	TemplateFeeReminder = Template{
		Name:    "fee_reminder",
		Subject: "Fee reminder for {{month}}",
		Text: `Dear {{student_name}},

This is a reminder that we have not received your fee payment for {{month}}.
Your outstanding balance is {{outstanding}}.

You can review your invoices and payments at {{portal_url}}.

Regards,
{{institute_name}}`,
		HTML: `<p>Dear {{student_name}},</p>
<p>This is a reminder that we have not received your fee payment for <strong>{{month}}</strong>.</p>
<p>Your outstanding balance is <strong>{{outstanding}}</strong>.</p>
<p>You can review your invoices and payments <a href="{{portal_url}}">in the student portal</a>.</p>
<p>Regards,<br>{{institute_name}}</p>`,
	}

	// TemplateOTP expects name, otp and minutes
	TemplateOTP = Template{
		Name:    "otp",
		Subject: "Your verification code",
		Text: `Hello {{name}},

Your verification code is {{otp}}. It expires in {{minutes}} minutes.

If you did not request this code you can ignore this email.`,
		HTML: `<p>Hello {{name}},</p>
<p>Your verification code is <strong style="font-size:20px">{{otp}}</strong>.</p>
<p>It expires in {{minutes}} minutes. If you did not request this code you can ignore this email.</p>`,
	}

	// TemplatePasswordReset expects name, link and minutes
	TemplatePasswordReset = Template{
		Name:    "password_reset",
		Subject: "Reset your password",
		Text: `Hello {{name}},

Use the link below to choose a new password. It expires in {{minutes}} minutes.

{{link}}

If you did not ask for a reset you can ignore this email.`,
		HTML: `<p>Hello {{name}},</p>
<p><a href="{{link}}">Choose a new password</a>. The link expires in {{minutes}} minutes.</p>
<p>If you did not ask for a reset you can ignore this email.</p>`,
	}
)

// Render fills the template placeholders
func (t Template) Render(data map[string]interface{}) (subject, text, html string) {
	return replacePlaceholders(t.Subject, data),
		replacePlaceholders(t.Text, data),
		replacePlaceholders(t.HTML, data)
}

// replacePlaceholders replaces placeholders in the template with actual data
func replacePlaceholders(template string, data map[string]interface{}) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, fmt.Sprintf("%v", value))
	}
	return result
}

// ExtractNameFromEmail extracts the name part from an email address
// e.g., "john.doe@example.com" -> "john.doe"
func ExtractNameFromEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "there"
}
