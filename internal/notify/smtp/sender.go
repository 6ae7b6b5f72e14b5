package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	mail "github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hdnguyen/secondhand-scout/internal/config"
	"github.com/hdnguyen/secondhand-scout/internal/notify"
)

// Notifier delivers alerts as HTML email. The body is composed as markdown
// and rendered with goldmark so the same content reads fine in plain-text
// clients too.
type Notifier struct {
	cfg config.SMTPEnvConfig
	md  goldmark.Markdown
}

// TLSMode determines how the SMTP client negotiates TLS.
type TLSMode string

const (
	// TLSModeAuto uses port-based defaults (implicit TLS on 465, STARTTLS otherwise).
	TLSModeAuto TLSMode = "auto"
	// TLSModeDisabled forces cleartext SMTP.
	TLSModeDisabled TLSMode = "disabled"
	// TLSModeStartTLS requires STARTTLS on the SMTP connection.
	TLSModeStartTLS TLSMode = "starttls"
	// TLSModeImplicit uses implicit TLS (SMTPS), typically on port 465.
	TLSModeImplicit TLSMode = "implicit"
)

func New(cfg config.SMTPEnvConfig) (*Notifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("smtp port must be positive")
	}
	if cfg.To == "" {
		return nil, fmt.Errorf("smtp recipient is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender is required")
	}
	if _, err := parseTLSMode(cfg.TLSMode); err != nil {
		return nil, err
	}
	return &Notifier{
		cfg: cfg,
		md:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

func (n *Notifier) Notify(ctx context.Context, alert notify.Alert) error {
	body, err := n.renderBody(alert)
	if err != nil {
		return fmt.Errorf("smtp: render alert body: %w", err)
	}

	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return fmt.Errorf("smtp: invalid from address %q: %w", n.cfg.From, err)
	}
	if err := m.ToFromString(n.cfg.To); err != nil {
		return fmt.Errorf("smtp: invalid to address(es) %q: %w", n.cfg.To, err)
	}
	m.Subject("Hàng mới: " + alert.Item.Name)
	m.SetBodyString(mail.TypeTextHTML, body)

	client, err := n.newClient()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp: send alert: %w", err)
	}
	return nil
}

func (n *Notifier) renderBody(alert notify.Alert) (string, error) {
	src := &strings.Builder{}
	src.WriteString("# Hàng mới trên chợ đồ cũ\n\n")
	fmt.Fprintf(src, "**%s**\n\n", alert.Item.Name)
	fmt.Fprintf(src, "- Giá: %s\n", alert.Item.Price)
	if alert.Score.Score > 0 {
		fmt.Fprintf(src, "- Điểm: %d/10 (%s)\n", alert.Score.Score, alert.Score.Rationale)
	}
	fmt.Fprintf(src, "\n[Xem ngay](%s)\n", alert.Item.URL)

	var out bytes.Buffer
	if err := n.md.Convert([]byte(src.String()), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (n *Notifier) newClient() (*mail.Client, error) {
	mode, err := n.resolveTLSMode()
	if err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         n.cfg.Host,
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: n.cfg.InsecureSkipVerify,
		}),
	}
	switch mode {
	case TLSModeDisabled:
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	case TLSModeStartTLS:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case TLSModeImplicit:
		opts = append(opts, mail.WithSSL())
	default:
		return nil, fmt.Errorf("unsupported smtp tls mode %q", mode)
	}
	if n.cfg.User != "" {
		opts = append(opts,
			mail.WithUsername(n.cfg.User),
			mail.WithPassword(n.cfg.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp: create client: %w", err)
	}
	return client, nil
}

func (n *Notifier) resolveTLSMode() (TLSMode, error) {
	mode, err := parseTLSMode(n.cfg.TLSMode)
	if err != nil {
		return "", err
	}
	if mode == TLSModeAuto {
		if n.cfg.Port == 465 {
			return TLSModeImplicit, nil
		}
		return TLSModeStartTLS, nil
	}
	return mode, nil
}

func parseTLSMode(mode string) (TLSMode, error) {
	normalized := strings.TrimSpace(strings.ToLower(mode))
	switch normalized {
	case "", string(TLSModeAuto):
		return TLSModeAuto, nil
	case "disabled", "off", "none":
		return TLSModeDisabled, nil
	case "starttls", "start_tls":
		return TLSModeStartTLS, nil
	case "implicit", "smtptls", "smtp_tls":
		return TLSModeImplicit, nil
	default:
		return "", fmt.Errorf("invalid smtp tls mode %q (expected: auto, disabled, starttls, implicit)", mode)
	}
}
