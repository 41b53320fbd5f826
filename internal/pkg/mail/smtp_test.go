package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTP(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{Host: "localhost"})
	assert.ErrorIs(t, err, ErrHostPortRequired)

	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025})
	require.NoError(t, err)
	assert.Equal(t, "localhost:1025", s.addr)
}

func TestSMTPSend(t *testing.T) {
	t.Run("ComposesPlainText", func(t *testing.T) {
		// Arrange
		s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025, From: "no-reply@gomarket.test"})
		require.NoError(t, err)

		var gotTo []string
		var gotRaw string
		s.send = func(_ string, _ smtp.Auth, from string, to []string, msg []byte) error {
			assert.Equal(t, "no-reply@gomarket.test", from)
			gotTo = to
			gotRaw = string(msg)
			return nil
		}

		// Act
		err = s.Send(context.Background(), Message{
			To:       []string{"buyer@example.com"},
			Bcc:      []string{"audit@example.com"},
			Subject:  "Your login code",
			TextBody: "Code: 123456",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"buyer@example.com", "audit@example.com"}, gotTo)
		assert.Contains(t, gotRaw, "Subject: Your login code\r\n")
		assert.Contains(t, gotRaw, "Content-Type: text/plain; charset=UTF-8")
		assert.NotContains(t, gotRaw, "audit@example.com")
		assert.True(t, strings.HasSuffix(gotRaw, "Code: 123456"))
	})

	t.Run("Multipart", func(t *testing.T) {
		_, raw, err := compose("a@x.test", Message{To: []string{"b@x.test"}, TextBody: "t", HTMLBody: "<b>h</b>"})
		require.NoError(t, err)
		assert.Contains(t, string(raw), "multipart/alternative; boundary=gomarket-")
		assert.Contains(t, string(raw), "<b>h</b>")
	})

	t.Run("Errors", func(t *testing.T) {
		s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025})
		require.NoError(t, err)

		assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoRecipients)
		assert.ErrorIs(t, s.Send(context.Background(), Message{To: []string{"b@x.test"}}), ErrNoSender)

		boom := errors.New("dial tcp: refused")
		s.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }
		assert.ErrorIs(t, s.Send(context.Background(), Message{From: "a@x.test", To: []string{"b@x.test"}}), boom)
	})
}

func TestLog(t *testing.T) {
	l := NewLog()
	assert.NoError(t, l.Send(context.Background(), Message{To: []string{"a@x.test"}}))
	assert.ErrorIs(t, l.Send(context.Background(), Message{}), ErrNoRecipients)
	assert.NoError(t, l.Close())
}
