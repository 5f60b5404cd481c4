// Package mail is the notification sink: SMTP delivery plus the HTML bodies
// the services send through it. Delivery is best-effort; callers decide
// whether a failure matters, and for this system it never does.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Mailer struct {
	client *gomail.Client
	from   string
}

func New(host string, port int, username, password, from string) (*Mailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
	}

	if username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(username),
			gomail.WithPassword(password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}

	return &Mailer{client: client, from: from}, nil
}

func (m *Mailer) Notify(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}

	return nil
}

var usdPrinter = message.NewPrinter(language.English)

// FormatUSD renders an amount in cents as a dollar string for display.
func FormatUSD(cents int64) string {
	return usdPrinter.Sprint(currency.Symbol(currency.USD.Amount(float64(cents) / 100)))
}

// ReceiptBody is the donation receipt mail.
func ReceiptBody(username, campaignTitle string, amountCents int64) string {
	return fmt.Sprintf(`<h1>Thank You!</h1>
<p>Dear %s,</p>
<p>You donated %s to "%s".</p>`, username, FormatUSD(amountCents), campaignTitle)
}
