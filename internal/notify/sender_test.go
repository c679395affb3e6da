package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/config"
)

func TestSMTPSender_BuildsMessage(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{
		Host: "smtp.example.com", Port: 587,
		FromName: "Shastra Veg Restaurant", FromAddr: "noreply@shastra.example",
	})

	m, err := s.build(Message{To: "arjun@x.com", Subject: SubjectWelcome, HTML: "<p>hi</p>"})
	require.NoError(t, err)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"arjun@x.com"}, rcpts)

	from := m.GetFromString()
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "Shastra Veg Restaurant")
	assert.Contains(t, from[0], "<noreply@shastra.example>")
}

func TestSMTPSender_RejectsBadRecipient(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "smtp.example.com", Port: 587, FromAddr: "noreply@shastra.example"})
	_, err := s.build(Message{To: "not an address"})
	assert.Error(t, err)
}

func TestNewSender(t *testing.T) {
	log := zap.NewNop()
	_, isSMTP := NewSender(config.MailConfig{Host: "smtp.example.com", FromAddr: "a@b.c"}, log).(*SMTPSender)
	assert.True(t, isSMTP)

	fallback := NewSender(config.MailConfig{Host: "smtp.example.com"}, log)
	_, isLog := fallback.(LogSender)
	assert.True(t, isLog)
	assert.NoError(t, fallback.Send(context.Background(), Message{To: "arjun@x.com"}))
}
