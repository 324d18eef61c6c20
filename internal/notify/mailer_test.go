package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classroom-kit/student-records/internal/config"
)

func TestBuildMessage(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	msg := string(buildMessage("noreply@school.test", "ana@x.com", "Acesso Autorizado", "linha 1\nlinha 2", now))

	assert.True(t, strings.HasPrefix(msg, "From: noreply@school.test\r\nTo: ana@x.com\r\n"))
	assert.Contains(t, msg, "Subject: Acesso Autorizado\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nlinha 1\r\nlinha 2\r\n"))
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	msg := string(buildMessage("a@x", "b@x", "Novo Cadastro de Usuário", "", time.Now()))
	assert.Contains(t, msg, "Subject: =?utf-8?q?")
}

func TestSMTPMailer_Send(t *testing.T) {
	cfg := config.SMTPConfig{Host: "smtp.school.test", Port: 587, Username: "bot", Password: "pw", From: "bot@school.test"}
	m := NewSMTPMailer(cfg, zap.NewNop())

	var gotAddr, gotFrom string
	var gotTo []string
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		assert.NotNil(t, a)
		return nil
	}

	require.NoError(t, m.Send(context.Background(), "ana@x.com", "Hi", "body"))
	assert.Equal(t, "smtp.school.test:587", gotAddr)
	assert.Equal(t, "bot@school.test", gotFrom)
	assert.Equal(t, []string{"ana@x.com"}, gotTo)
}

func TestSMTPMailer_SendFailure(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "h", Port: 25, From: "f@x"}, zap.NewNop())
	boom := errors.New("535 auth failed")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := m.Send(context.Background(), "ana@x.com", "Hi", "body")
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, "ana@x.com", sendErr.To)
	assert.ErrorIs(t, err, boom)
}

func TestSMTPMailer_CanceledContext(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "h", Port: 25, From: "f@x"}, zap.NewNop())
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("must not dial with a canceled context")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, "ana@x.com", "Hi", "body"), context.Canceled)
}

func TestNew_PicksImplementation(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New(config.SMTPConfig{}, zap.NewNop()))
	assert.IsType(t, &SMTPMailer{}, New(config.SMTPConfig{Host: "h", From: "f@x"}, zap.NewNop()))
	assert.NoError(t, NewLogMailer(zap.NewNop()).Send(context.Background(), "a@x", "s", "b"))
}
