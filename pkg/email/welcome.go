package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var welcomeTemplate = template.Must(template.ParseFS(templateFS, "templates/welcome.html"))

// WelcomeData describes a newly provisioned store.
type WelcomeData struct {
	StoreName         string
	Subdomain         string
	OwnerEmail        string
	VerificationToken string
}

// WelcomeNotifier renders and sends the welcome message to a store owner.
type WelcomeNotifier struct {
	sender  EmailSender
	baseURL string
}

// NewWelcomeNotifier creates a notifier. baseURL is a format string with one
// %s for the subdomain, such as "https://%s.platform.example".
func NewWelcomeNotifier(sender EmailSender, baseURL string) *WelcomeNotifier {
	if !strings.Contains(baseURL, "%s") {
		baseURL = "https://%s." + strings.TrimPrefix(baseURL, ".")
	}
	return &WelcomeNotifier{sender: sender, baseURL: baseURL}
}

// SendWelcome renders the welcome template and hands it to the sender.
func (n *WelcomeNotifier) SendWelcome(ctx context.Context, d WelcomeData) error {
	body, err := n.Render(d)
	if err != nil {
		return err
	}
	return n.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   d.OwnerEmail,
		Subject:  fmt.Sprintf("Welcome to %s", d.StoreName),
		BodyHTML: body,
		Tag:      "welcome",
	})
}

// Render returns the HTML body of the welcome message.
func (n *WelcomeNotifier) Render(d WelcomeData) (string, error) {
	storeURL := fmt.Sprintf(n.baseURL, d.Subdomain)
	verifyURL := storeURL + "/verify-email?token=" + url.QueryEscape(d.VerificationToken)

	var buf bytes.Buffer
	err := welcomeTemplate.Execute(&buf, struct {
		WelcomeData
		StoreURL  string
		VerifyURL string
	}{d, storeURL, verifyURL})
	if err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}
