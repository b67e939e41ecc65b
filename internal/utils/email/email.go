package email

import (
	"fmt"
	"net/smtp"

	"github.com/Dan9191/leads-service/internal/config"
	"github.com/Dan9191/leads-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendLeadConfirmation thanks a prospect for submitting their information
func (s *Sender) SendLeadConfirmation(lead *models.Lead) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{lead.Email}
	e.Subject = "Thank you for your interest"

	body := fmt.Sprintf(
		"Dear %s %s,\n\n"+
			"Thank you for submitting your information. Our team will review your application and get back to you soon.\n"+
			"\nBest regards,\nThe Legal Team\n",
		lead.FirstName, lead.LastName,
	)
	e.Text = []byte(body)

	return s.send(e)
}

// SendLeadAlert notifies the staff address about a new submission and
// attaches the stored resume
func (s *Sender) SendLeadAlert(lead *models.Lead) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.StaffEmail}
	e.Subject = "New Lead Submission"

	body := fmt.Sprintf(
		"A new lead has been submitted:\n\n"+
			"Name: %s %s\n"+
			"Email: %s\n"+
			"\nPlease review the attached resume and reach out to the prospect.\n",
		lead.FirstName, lead.LastName, lead.Email,
	)
	e.Text = []byte(body)

	if _, err := e.AttachFile(lead.ResumePath); err != nil {
		s.logger.Errorf("Failed to attach resume %s: %v", lead.ResumePath, err)
		return fmt.Errorf("failed to attach resume: %w", err)
	}

	return s.send(e)
}

// SendPendingDigest mails the staff address a summary of leads still waiting
// for outreach
func (s *Sender) SendPendingDigest(pending int64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.StaffEmail}
	e.Subject = "Pending Leads Digest"

	body := fmt.Sprintf(
		"There are currently %d lead(s) in PENDING state awaiting outreach.\n"+
			"\nBest regards,\nLeads Service\n",
		pending,
	)
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	if !s.cfg.EmailEnabled {
		s.logger.Infof("Email sending disabled, skipping: %s", e.Subject)
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
