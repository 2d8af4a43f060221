package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"partnerhub/config"
)

// SMTPNotifier delivers directly over SMTP with a minimal plain-text body.
// Used when no broker is deployed.
type SMTPNotifier struct {
	cfg    config.SMTPConfig
	server string
	auth   smtp.Auth
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	return &SMTPNotifier{
		cfg:    cfg,
		server: cfg.Host + ":" + cfg.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if SMTP delivery is configured.
func (n *SMTPNotifier) IsConfigured() bool {
	return n.cfg.Host != "" && n.cfg.Port != "" && n.cfg.From != ""
}

var subjects = map[Kind]string{
	KindProposalReady:         "Your partnership proposal is ready",
	KindAgreementConfirmed:    "Partnership agreement confirmed",
	KindDashboardAccess:       "Your dashboard is ready",
	KindCoLeaderInvite:        "You have been invited as a co-leader",
	KindCoLeaderSignupInvite:  "You have been invited as a co-leader",
	KindBookDiscoveryReminder: "Reminder: book your discovery call",
	KindCallReminder24h:       "Reminder: your call is tomorrow",
	KindCallMissed:            "We missed you on your scheduled call",
	KindProposalExpiring:      "Your proposal is waiting",
	KindInactiveReminder:      "Checking in on your progress",
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if !n.IsConfigured() {
		return fmt.Errorf("smtp not configured")
	}

	subject, ok := subjects[msg.Kind]
	if !ok {
		return fmt.Errorf("unknown notification kind: %s", msg.Kind)
	}

	params, err := json.Marshal(msg.Params)
	if err != nil {
		return err
	}

	from := n.cfg.From
	if n.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", n.cfg.FromName, n.cfg.From)
	}

	body := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"X-Notification-Kind: %s\r\n"+
			"\r\n"+
			"%s\r\n",
		msg.Recipient, from, subject, msg.Kind, params,
	))

	return smtp.SendMail(n.server, n.auth, n.cfg.From, []string{msg.Recipient}, body)
}
