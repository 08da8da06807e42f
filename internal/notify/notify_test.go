// internal/notify/notify_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "paperforge/internal/common/errors"
	"paperforge/internal/history"
)

type fakeMailer struct {
	lastInput *ses.SendEmailInput
	err       error
}

func (f *fakeMailer) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

func TestSendPaper(t *testing.T) {
	mailer := &fakeMailer{}
	n := New(mailer, "noreply@paperforge.dev", nil)

	err := n.SendPaper(context.Background(), "student@example.com", &history.Paper{
		Title:   "Algebra basics",
		Content: "1. What is x?",
	})

	require.NoError(t, err)
	require.NotNil(t, mailer.lastInput)
	assert.Equal(t, "noreply@paperforge.dev", *mailer.lastInput.Source)
	assert.Equal(t, []string{"student@example.com"}, mailer.lastInput.Destination.ToAddresses)
	assert.Equal(t, "Algebra basics", *mailer.lastInput.Message.Subject.Data)
	assert.Equal(t, "1. What is x?", *mailer.lastInput.Message.Body.Text.Data)
}

func TestSendPaper_DefaultSubject(t *testing.T) {
	mailer := &fakeMailer{}
	n := New(mailer, "noreply@paperforge.dev", nil)

	err := n.SendPaper(context.Background(), "student@example.com", &history.Paper{
		Content: "1. What is x?",
	})

	require.NoError(t, err)
	assert.Equal(t, "Your generated exam paper", *mailer.lastInput.Message.Subject.Data)
}

func TestSendPaper_SendFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("rate exceeded")}
	n := New(mailer, "noreply@paperforge.dev", nil)

	err := n.SendPaper(context.Background(), "student@example.com", &history.Paper{Content: "x"})

	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, apperrors.CodeOf(err))
}
