package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/gin-gonic/gin"
)

var errMailerNotConfigured = errors.New("SMTP credentials not configured")

type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// Mailer delivers contact form submissions to the site owner.
type Mailer interface {
	Send(ctx context.Context, msg ContactMessage) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpMailer struct {
	host     string
	port     string
	user     string
	pass     string
	to       string
	sendMail sendMailFunc
}

func newSMTPMailer(cfg *Config) *smtpMailer {
	to := cfg.ToEmail
	if to == "" {
		to = cfg.SMTPUser
	}
	return &smtpMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		pass:     cfg.SMTPPass,
		to:       to,
		sendMail: smtp.SendMail,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg ContactMessage) error {
	if m.user == "" || m.pass == "" {
		return errMailerNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	body := composeContactEmail(m.user, m.to, msg)
	if err := m.sendMail(m.host+":"+m.port, auth, m.user, []string{m.to}, body); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

// headerSafe drops line breaks so visitor input cannot add mail headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}

func composeContactEmail(from, to string, msg ContactMessage) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s", headerSafe(msg.Name))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, msg.Name, msg.Email, msg.Message)

	return []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"Reply-To: " + headerSafe(msg.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

type contactRequest struct {
	FullName string `json:"fullName" form:"fullName" binding:"required,notblank,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Message  string `json:"message" form:"message" binding:"required,notblank,max=5000"`
}

// POST /api/contact
func (s *server) submitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	err := s.mailer.Send(c.Request.Context(), ContactMessage{
		Name:    req.FullName,
		Email:   req.Email,
		Message: req.Message,
	})
	switch {
	case errors.Is(err, errMailerNotConfigured):
		recordContact("unavailable")
		s.log.Warn().Msg("contact form used but SMTP is not configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The contact form is not available right now."})
	case err != nil:
		recordContact("failed")
		s.log.Error().Err(err).Str("request_id", requestID(c)).Msg("contact email failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sorry, there was an error sending your message. Please try again later."})
	default:
		recordContact("sent")
		s.log.Info().Str("visitor", s.privacy.Hash(c.ClientIP())).Msg("contact email sent")
		c.JSON(http.StatusOK, gin.H{"message": "Thank you for your message! I'll get back to you soon."})
	}
}
