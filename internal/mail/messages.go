package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	otpSubject     = "Your Sari-Sari Events Verification Code"
	welcomeSubject = "Welcome to Sari-Sari Events! Your Account is Ready"
)

var (
	otpHTML = template.Must(template.New("otp").Parse(
		`<p>Your verification code is <strong>{{.Code}}</strong>.</p><p>It expires in {{.Minutes}} minutes.</p>`))
	welcomeHTML = template.Must(template.New("welcome").Parse(
		`<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p><p>Your account for {{.Email}} is ready.</p>`))
)

// OTPMessage builds the verification code email.
func OTPMessage(to, code string, minutes int) (Message, error) {
	var buf bytes.Buffer
	if err := otpHTML.Execute(&buf, struct {
		Code    string
		Minutes int
	}{code, minutes}); err != nil {
		return Message{}, fmt.Errorf("render otp email: %w", err)
	}
	return Message{
		To:      to,
		Subject: otpSubject,
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes),
	}, nil
}

// WelcomeMessage builds the account confirmation email greeting the user by name.
func WelcomeMessage(to, name string) (Message, error) {
	var buf bytes.Buffer
	if err := welcomeHTML.Execute(&buf, struct {
		Name  string
		Email string
	}{name, to}); err != nil {
		return Message{}, fmt.Errorf("render welcome email: %w", err)
	}
	if name == "" {
		name = "there"
	}
	return Message{
		To:      to,
		Subject: welcomeSubject,
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Hi %s, your account for %s is ready.", name, to),
	}, nil
}
