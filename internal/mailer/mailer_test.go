package mailer_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/expensehub/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendCredentialsMasksPassword(t *testing.T) {
	var buf bytes.Buffer
	m, err := mailer.NewLogMailer("no-reply@x", 0, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)

	err = m.SendCredentials(context.Background(), mailer.Credentials{
		Name: "Ann", Email: "ann@x", Password: "hunter22", CompanyName: "Acme",
	})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "to=ann@x")
	assert.Contains(t, buf.String(), "h******2")
	assert.NotContains(t, buf.String(), "hunter22")
}

func TestSendCredentialsHonoursCancellation(t *testing.T) {
	m, err := mailer.NewLogMailer("no-reply@x", time.Minute, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = m.SendCredentials(ctx, mailer.Credentials{Email: "ann@x", Password: "pw"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":       "",
		"a":      "*",
		"ab":     "**",
		"abcdef": "a****f",
	}
	for in, want := range cases {
		assert.Equal(t, want, mailer.Mask(in), in)
	}
}
