// Package mailer delivers password reset emails over SMTP.  Delivery is
// best effort: a failure is logged and returned, never retried here, and
// the caller decides whether the request as a whole still succeeds.
package mailer

import (
    "fmt"
    "log"
    "net/smtp"
    "strings"

    "github.com/iliyamo/bus-pass-system/internal/config"
)

// Mailer sends transactional mail through a single SMTP account.  When no
// SMTP host is configured (local development), Send logs the message body
// instead of dialing out so the reset flow stays testable end to end.
type Mailer struct {
    host string
    port string
    user string
    pass string
}

// New returns a Mailer from the SMTP settings in cfg.
func New(cfg config.Config) *Mailer {
    return &Mailer{host: cfg.SMTPHost, port: cfg.SMTPPort, user: cfg.SMTPUser, pass: cfg.SMTPPass}
}

// SendPasswordReset emails the reset code to the rider.  The code expires
// server-side; the text states the window so the rider knows to hurry.
func (m *Mailer) SendPasswordReset(to, name, code string, ttlMinutes int) error {
    if name == "" {
        name = "Rider"
    }
    subject := "Password Reset - Bus Pass System"
    body := fmt.Sprintf(
        "Hello %s,\r\n\r\n"+
            "We received a request to reset your password. Use the code below to reset it. "+
            "This code expires in %d minutes.\r\n\r\n"+
            "    %s\r\n\r\n"+
            "If you did not request a password reset, ignore this email.\r\n",
        name, ttlMinutes, code)

    if m.host == "" {
        log.Printf("mailer: SMTP not configured; reset code for %s: %s", to, code)
        return nil
    }

    msg := strings.Join([]string{
        "From: " + m.user,
        "To: " + to,
        "Subject: " + subject,
        "MIME-Version: 1.0",
        "Content-Type: text/plain; charset=UTF-8",
        "",
        body,
    }, "\r\n")

    addr := m.host + ":" + m.port
    auth := smtp.PlainAuth("", m.user, m.pass, m.host)
    if err := smtp.SendMail(addr, auth, m.user, []string{to}, []byte(msg)); err != nil {
        log.Printf("mailer: send to %s failed: %v", to, err)
        return err
    }
    return nil
}
