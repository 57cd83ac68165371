// internal/support/notify/notify.go

// Package notify escalates unresolved turns to the CRM team over email and,
// for refund cases, SMS. Sends are best effort and never fail the turn.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"support-chat/internal/common/config"
	"support-chat/internal/common/logger"
	"support-chat/internal/common/metrics"
	"support-chat/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Escalation describes one turn that needs human follow-up.
type Escalation struct {
	SessionID string
	Category  models.Category
	UserInput string
	Response  string
	Reason    string
}

// Receipt reports what was actually delivered for an escalation.
type Receipt struct {
	NotificationID string
	EmailSent      bool
	SMSSent        bool
	SentAt         string
}

type Notifier struct {
	config    *config.NotificationConfig
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewNotifier(cfg *config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

// Escalate notifies the CRM team about an unresolved turn. Email goes out for
// every category; SMS only for refund escalations. Partial delivery is still
// a success, and a fully failed send returns ErrNotificationSendFailed.
func (n *Notifier) Escalate(ctx context.Context, esc *Escalation) (*Receipt, error) {
	receipt := &Receipt{
		NotificationID: uuid.New().String(),
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	subject := fmt.Sprintf("[support-chat] Escalation: %s (session %s)", esc.Category, esc.SessionID)
	body := n.buildBody(esc)

	attempts := 0
	if n.config.Email.Enabled && n.sesClient != nil && n.config.Email.CRMEmail != "" {
		attempts++
		if err := n.sendEmail(ctx, n.config.Email.CRMEmail, subject, body); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"error":     err,
				"sessionId": esc.SessionID,
			})
		} else {
			receipt.EmailSent = true
			metrics.EscalationsSent.WithLabelValues("email").Inc()
		}
	}

	if n.config.SMS.Enabled && n.snsClient != nil && n.config.SMS.CRMPhone != "" &&
		esc.Category == models.CategoryRefund {
		attempts++
		if err := n.sendSMS(ctx, n.config.SMS.CRMPhone, subject); err != nil {
			n.logger.Error("SMS send failed", map[string]interface{}{
				"error":     err,
				"sessionId": esc.SessionID,
			})
		} else {
			receipt.SMSSent = true
			metrics.EscalationsSent.WithLabelValues("sms").Inc()
		}
	}

	if attempts > 0 && !receipt.EmailSent && !receipt.SMSSent {
		return receipt, ErrNotificationSendFailed
	}
	return receipt, nil
}

func (n *Notifier) buildBody(esc *Escalation) string {
	return fmt.Sprintf(`A customer query requires human follow-up.

Session:  %s
Category: %s
Reason:   %s

Customer message:
%s

Last automated response:
%s`, esc.SessionID, esc.Category, esc.Reason, esc.UserInput, esc.Response)
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
