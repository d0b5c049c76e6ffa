package checkin_test

import (
	"net/url"
	"testing"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServicesParam(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want checkin.ServiceList
	}{
		{"percent-encoded JSON", "%5B%22Kesim%22%2C%22Boya%22%5D", checkin.ServiceList{"Kesim", "Boya"}},
		{"未編碼 JSON", `["Kesim","Boya"]`, checkin.ServiceList{"Kesim", "Boya"}},
		{"非 JSON 退回單元素", "Kesim", checkin.ServiceList{"Kesim"}},
		{"無效的百分比編碼退回原字串", "%zz", checkin.ServiceList{"%zz"}},
		{"JSON 物件不是陣列", "%7B%7D", checkin.ServiceList{"%7B%7D"}},
		{"空字串", "", nil},
		{"空陣列", "%5B%5D", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkin.ParseServicesParam(tt.raw))
		})
	}
}

func TestServiceList_JSON(t *testing.T) {
	data, err := checkin.ServiceList{"Kesim", "Boya"}.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["Kesim","Boya"]`, string(data))

	data, err = checkin.ServiceList(nil).JSON()
	require.NoError(t, err)
	assert.Nil(t, data)

	back, err := checkin.ServiceListFromJSON([]byte(`["Föhn"]`))
	require.NoError(t, err)
	assert.Equal(t, checkin.ServiceList{"Föhn"}, back)

	back, err = checkin.ServiceListFromJSON([]byte("null"))
	require.NoError(t, err)
	assert.Nil(t, back)
}

func TestBuildRedemptionURL(t *testing.T) {
	token := checkin.TokenValueFrom("abc123")

	// Act
	withServices, err := checkin.BuildRedemptionURL("https://salon.example.com", token, checkin.ServiceList{"Saç Kesimi", "Boya"})
	require.NoError(t, err)
	withoutServices, err := checkin.BuildRedemptionURL("https://salon.example.com/", token, nil)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "https://salon.example.com/checkin?token=abc123", withoutServices)

	u, err := url.Parse(withServices)
	require.NoError(t, err)
	assert.Equal(t, "/checkin", u.Path)
	assert.Equal(t, "abc123", u.Query().Get("token"))
	assert.NotContains(t, u.RawQuery, "+", "空白應編碼為 %20")

	// 回傳的 services 參數可由兌換端還原
	rawServices := u.RawQuery[len("token=abc123&services="):]
	assert.Equal(t, checkin.ServiceList{"Saç Kesimi", "Boya"}, checkin.ParseServicesParam(rawServices))
}

func TestBuildRedemptionURL_InvalidBase_ReturnsError(t *testing.T) {
	_, err := checkin.BuildRedemptionURL("://bad", checkin.TokenValueFrom("x"), nil)
	assert.Error(t, err)
}
