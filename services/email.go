package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"partypass-api/utils"
)

type EmailService struct {
	apiKey      string
	fromEmail   string
	frontendURL string
}

func NewEmailService(apiKey, fromEmail, frontendURL string) *EmailService {
	return &EmailService{
		apiKey:      apiKey,
		fromEmail:   fromEmail,
		frontendURL: frontendURL,
	}
}

// SendGuestInvitation emails an RSVP link to an invited guest. Sending is a
// best-effort side operation on the invite path; callers log failures and
// keep the guest.
func (s *EmailService) SendGuestInvitation(ctx context.Context, to, guestName, hostName, eventTitle, rsvpToken string) error {
	if s.apiKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	rsvpURL := fmt.Sprintf("%s/rsvp?token=%s", s.frontendURL, rsvpToken)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 30px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; }
        .button { display: inline-block; background: #667eea; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🎉 You're invited!</h1>
        </div>
        <div class="content">
            <p>Hi %s,</p>
            <p><strong>%s</strong> invites you to <strong>"%s"</strong>.</p>
            <a href="%s" class="button">Respond to the invitation</a>
        </div>
    </div>
</body>
</html>
	`, guestName, hostName, eventTitle, rsvpURL)

	payload := map[string]interface{}{
		"from":    fmt.Sprintf("PartyPass <%s>", s.fromEmail),
		"to":      []string{to},
		"subject": fmt.Sprintf("%s invited you to %s", hostName, eventTitle),
		"html":    htmlBody,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// The mail provider is flaky enough to justify a couple of retries here.
	return utils.RetryWithBackoff(ctx, 3, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, "POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
		if err != nil {
			return err
		}

		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
		}

		return nil
	})
}
