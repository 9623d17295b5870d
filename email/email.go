package email

import (
	"context"
	"fmt"

	"github.com/inbucket/html2text"
	"github.com/wneessen/go-mail"
)

// Sender is the fire-and-forget notification contract consumed by the
// core. Failures are the caller's to log; they never escalate.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Client sends multipart text+HTML mail over SMTP.
type Client struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewClient(host string, port int, username, password, from string) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)

	// Plain-text alternative auto-derived from the HTML body.
	if text, err := html2text.FromString(html, html2text.Options{TextOnly: true}); err == nil {
		msg.SetBodyString(mail.TypeTextPlain, text)
		msg.AddAlternativeString(mail.TypeTextHTML, html)
	} else {
		msg.SetBodyString(mail.TypeTextHTML, html)
	}

	opts := []mail.Option{mail.WithPort(c.port)}
	if c.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.username),
			mail.WithPassword(c.password),
		)
	}
	client, err := mail.NewClient(c.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
