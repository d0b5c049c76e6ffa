package checkin

import (
	"net/url"
	"testing"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCodeImageURL(t *testing.T) {
	redemption := "https://salon.example.com/checkin?token=abc&services=%5B%22Kesim%22%5D"

	raw := QRCodeImageURL("https://api.qrserver.com/v1/create-qr-code/", 0, redemption)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "250x250", u.Query().Get("size"))
	assert.Equal(t, redemption, u.Query().Get("data"))

	withQuery := QRCodeImageURL("https://qr.example.com/img?format=png", 300, redemption)
	assert.Contains(t, withQuery, "?format=png&size=300x300&data=")
}

func TestUserMessage_AllCodesLocalized(t *testing.T) {
	codes := []checkin.ErrorCode{
		checkin.ErrCodeMissingToken,
		checkin.ErrCodeInvalidToken,
		checkin.ErrCodeTokenExpired,
		checkin.ErrCodeTokenAlreadyUsed,
		checkin.ErrCodeCustomerNotFound,
		checkin.ErrCodeVisitCreationFailed,
		checkin.ErrCodeUnexpected,
	}
	seen := map[string]bool{}
	for _, code := range codes {
		msg := UserMessage(code)
		assert.NotEmpty(t, msg, code)
		assert.False(t, seen[msg], "每個代碼訊息不同: %s", code)
		seen[msg] = true
	}

	assert.Equal(t, UserMessage(checkin.ErrCodeUnexpected), UserMessage("SOMETHING_ELSE"))
}

func TestCanRegenerate_OnlyWhenExpired(t *testing.T) {
	assert.True(t, CanRegenerate(checkin.ErrCodeTokenExpired))
	assert.False(t, CanRegenerate(checkin.ErrCodeTokenAlreadyUsed))
	assert.False(t, CanRegenerate(checkin.ErrCodeInvalidToken))
}
