package service

import (
	"bytes"
	"fmt"
	"net/http"
	"net/smtp"
	"os"
	"time"

	"ragtime/config"
	"ragtime/database/model"
	"ragtime/logger"
	"ragtime/util/common"

	"github.com/goccy/go-json"
	"go.uber.org/atomic"
)

var (
	notifySent   = atomic.NewInt64(0)
	notifyFailed = atomic.NewInt64(0)
)

// NotificationService dispatches outbound messages on registration and
// confirmation. Delivery is fire-and-forget: failures are logged and
// swallowed, never propagated to the triggering request.
type NotificationService struct{}

// notification is the webhook payload shape.
type notification struct {
	Event     string    `json:"event"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// SendWelcome greets a freshly registered user.
func (s *NotificationService) SendWelcome(user *model.User) {
	body := fmt.Sprintf("Hello %s,\n\nWelcome to Ragtime!\n", user.Username)
	s.dispatch("user.welcome", user.Email, "Welcome to Ragtime!", body)
}

// SendConfirmation mails the account confirmation link.
func (s *NotificationService) SendConfirmation(user *model.User, token string) {
	link := fmt.Sprintf("%s/auth/confirm/%s", config.GetExternalURL(), token)
	body := fmt.Sprintf("Hello %s,\n\nConfirm your account: %s\n", user.Username, link)
	s.dispatch("user.confirm", user.Email, "Confirm Your Account", body)
}

// NotifyAdminNewUser tells the administrator about a new registration.
func (s *NotificationService) NotifyAdminNewUser(user *model.User) {
	admin := config.GetAdminEmail()
	if admin == "" {
		return
	}
	body := fmt.Sprintf("New user registered: %s <%s>\n", user.Username, user.Email)
	s.dispatch("user.new", admin, "New User", body)
}

// Stats returns the number of sent and failed notifications since start.
func (s *NotificationService) Stats() (sent, failed int64) {
	return notifySent.Load(), notifyFailed.Load()
}

// dispatch delivers asynchronously over every configured transport.
func (s *NotificationService) dispatch(event, recipient, subject, body string) {
	go func() {
		defer common.Recover("notification dispatch")
		ok := true
		if config.GetMailServer() != "" {
			if err := s.sendMail(recipient, subject, body); err != nil {
				logger.Warning("send mail failed:", err)
				ok = false
			}
		}
		if webhook := os.Getenv("RAGTIME_NOTIFY_WEBHOOK"); webhook != "" {
			if err := s.postWebhook(webhook, notification{
				Event:     event,
				Recipient: recipient,
				Subject:   subject,
				Body:      body,
				Timestamp: time.Now(),
			}); err != nil {
				logger.Warning("notify webhook failed:", err)
				ok = false
			}
		}
		if ok {
			notifySent.Inc()
		} else {
			notifyFailed.Inc()
		}
	}()
}

func (s *NotificationService) sendMail(to, subject, body string) error {
	server := config.GetMailServer()
	addr := fmt.Sprintf("%s:%d", server, config.GetMailPort())
	sender := config.GetMailSender()
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s%s\r\n\r\n%s",
		sender, to, config.GetMailSubjectPrefix(), subject, body)

	var auth smtp.Auth
	if username := config.GetMailUsername(); username != "" {
		auth = smtp.PlainAuth("", username, config.GetMailPassword(), server)
	}
	return smtp.SendMail(addr, auth, sender, []string{to}, []byte(msg))
}

func (s *NotificationService) postWebhook(url string, n notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return common.NewErrorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
