package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
)

func TestBuildMessage(t *testing.T) {
	from := &mail.Address{Address: "passes@ticpin.in"}
	to := &mail.Address{Address: "a@x.com"}
	raw := buildMessage(from, to, "Your pass", "Renew soon")

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)

	msg := string(decoded)
	assert.Contains(t, msg, "From: <passes@ticpin.in>\r\n")
	assert.Contains(t, msg, "To: <a@x.com>\r\n")
	assert.Contains(t, msg, "Subject: Your pass\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nRenew soon"))
}

func TestGmailNotifierSend(t *testing.T) {
	var path, raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		var body struct {
			Raw string `json:"raw"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		raw = body.Raw
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer server.Close()

	notifier, err := NewGmailNotifierWithOptions(context.Background(), "passes@ticpin.in", logger.NewNopLogger(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	reminder := &entity.PassReminder{PassID: "p1", Email: "a@x.com", Subject: "Pass expiring", Text: "3 days left"}
	require.True(t, notifier.CanNotify(reminder))
	require.NoError(t, notifier.Send(context.Background(), reminder))

	assert.Equal(t, "/gmail/v1/users/me/messages/send", path)
	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "3 days left")
}

func TestGmailNotifierCanNotifyNeedsEmail(t *testing.T) {
	n := &GmailNotifier{}

	assert.False(t, n.CanNotify(&entity.PassReminder{Phone: "9999999999"}))
	assert.Equal(t, entity.ChannelEmail, n.Channel())
}

func TestGmailNotifierRejectsHeaderInjection(t *testing.T) {
	n := &GmailNotifier{}

	for _, email := range []string{
		"a@x.com\r\nBcc: victim@y.com",
		"a@x.com\nBcc: victim@y.com",
		"a@x.com, b@y.com",
		"not-an-address",
	} {
		assert.False(t, n.CanNotify(&entity.PassReminder{Email: email}), email)
		assert.Error(t, n.Send(context.Background(), &entity.PassReminder{Email: email, Text: "hi"}), email)
	}

	assert.True(t, n.CanNotify(&entity.PassReminder{Email: " Asha <a@x.com> "}))
}

func TestBuildMessageEncodesSubjectLineBreaks(t *testing.T) {
	raw := buildMessage(nil, &mail.Address{Address: "a@x.com"}, "Pass\r\nBcc: victim@y.com", "hi")

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.NotContains(t, string(decoded), "\r\nBcc:")
	assert.False(t, strings.HasPrefix(string(decoded), "From:"))
}

func TestNewGmailNotifierRejectsInvalidSender(t *testing.T) {
	_, err := NewGmailNotifierWithOptions(context.Background(), "passes@ticpin.in\r\nBcc: x@y.com", logger.NewNopLogger(),
		option.WithoutAuthentication(),
	)
	assert.Error(t, err)
}
