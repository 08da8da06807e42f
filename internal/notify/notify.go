// internal/notify/notify.go
// Package notify delivers a finished paper to the user's inbox. Delivery is
// optional and sits outside the generation pipeline: a failed send never
// fails the generation.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	apperrors "paperforge/internal/common/errors"
	"paperforge/internal/common/logger"
	"paperforge/internal/history"
)

// Mailer is the slice of the SES client the notifier needs.
type Mailer interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type Notifier struct {
	mailer Mailer
	sender string
	logger logger.Logger
}

func New(mailer Mailer, sender string, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{
		mailer: mailer,
		sender: sender,
		logger: log.With(map[string]interface{}{"component": "notify"}),
	}
}

// SendPaper emails the generated paper content to the recipient.
func (n *Notifier) SendPaper(ctx context.Context, recipient string, paper *history.Paper) error {
	subject := paper.Title
	if subject == "" {
		subject = "Your generated exam paper"
	}

	input := &ses.SendEmailInput{
		Source: &n.sender,
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: &subject},
			Body: &types.Body{
				Text: &types.Content{Data: &paper.Content},
			},
		},
	}

	if _, err := n.mailer.SendEmail(ctx, input); err != nil {
		n.logger.Error("paper delivery failed", map[string]interface{}{
			"recipient": recipient,
			"error":     err.Error(),
		})
		return apperrors.NewNotificationSendFailedError(fmt.Errorf("ses send: %w", err))
	}

	n.logger.Info("paper delivered", map[string]interface{}{"recipient": recipient})
	return nil
}
