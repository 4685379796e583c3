package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPushContent(t *testing.T) {
	content, err := NewPushContent("发货提醒", "您的订单已发货", "https://cdn.example.com/img.png", map[string]string{"order_id": "123"})
	require.NoError(t, err)
	assert.Equal(t, "发货提醒", content.Title())
	assert.Equal(t, "您的订单已发货", content.Body())
	assert.Equal(t, map[string]string{"order_id": "123"}, content.Data())

	// 返回的 data 是拷贝，改动不影响值对象
	content.Data()["order_id"] = "tampered"
	assert.Equal(t, "123", content.Data()["order_id"])
}

func TestNewPushContentValidation(t *testing.T) {
	_, err := NewPushContent("", "body", "", nil)
	assert.ErrorIs(t, err, ErrInvalidPushContent)

	_, err = NewPushContent(strings.Repeat("t", 101), "body", "", nil)
	assert.ErrorIs(t, err, ErrInvalidPushContent)

	_, err = NewPushContent("title", "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidPushContent)

	_, err = NewPushContent("title", strings.Repeat("b", 1001), "", nil)
	assert.ErrorIs(t, err, ErrInvalidPushContent)

	// 长度按字符而非字节计
	_, err = NewPushContent(strings.Repeat("题", 100), "body", "", nil)
	assert.NoError(t, err)

	_, err = NewPushContent("title", "body", "ftp://example.com/a.png", nil)
	assert.ErrorIs(t, err, ErrInvalidPushContent)

	tooMany := make(map[string]string, 21)
	for i := 0; i < 21; i++ {
		tooMany[strings.Repeat("k", i+1)] = "v"
	}
	_, err = NewPushContent("title", "body", "", tooMany)
	assert.ErrorIs(t, err, ErrInvalidPushContent)

	_, err = NewPushContent("title", "body", "", map[string]string{"": "v"})
	assert.ErrorIs(t, err, ErrInvalidPushContent)
}

func TestNewDeviceToken(t *testing.T) {
	token, err := NewDeviceToken("fcm-token-abc")
	require.NoError(t, err)
	assert.Equal(t, "fcm-token-abc", token.String())

	_, err = NewDeviceToken("")
	assert.ErrorIs(t, err, ErrInvalidDeviceToken)

	_, err = NewDeviceToken(strings.Repeat("x", 513))
	assert.ErrorIs(t, err, ErrInvalidDeviceToken)
}

func TestPlatformValid(t *testing.T) {
	assert.True(t, PlatformIOS.Valid())
	assert.True(t, PlatformAndroid.Valid())
	assert.True(t, PlatformWeb.Valid())
	assert.False(t, Platform("WINDOWS").Valid())
}
