package mail

import (
	"fmt"
	"net/url"
)

// Link builds an absolute link for an email call-to-action.
func Link(baseURL, endpoint string, query url.Values) string {
	u := baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func emailTemplate(content string) string {
	return fmt.Sprintf(`
  <body style="font-family: Arial, sans-serif; text-align: center;">
    %s
  </body>
`, content)
}

// VerificationEmail is the HTML body of the email-verification message.
func VerificationEmail(verificationLink string) string {
	return emailTemplate(fmt.Sprintf(`
  <h1>Welcome to MyLibrary!</h1>
  <p>Please click the button below to verify your email address</p>
  <a href="%s" style="background-color: #007bff; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none;">
    Verify Email
  </a>
`, verificationLink))
}

// PasswordResetEmail is the HTML body of the password-reset message.
func PasswordResetEmail(resetLink string) string {
	return emailTemplate(fmt.Sprintf(`
  <h1>Password Reset Request</h1>
  <p>Click the link below to reset your password. The link expires shortly.</p>
  <a href="%s" style="background-color: #007bff; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none;">
    Reset Password
  </a>
`, resetLink))
}
