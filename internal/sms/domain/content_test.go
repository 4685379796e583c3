package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneNumber(t *testing.T) {
	valid := []string{"+8613812345678", "+14155552671", "+442071838750"}
	for _, v := range valid {
		p, err := NewPhoneNumber(v)
		require.NoError(t, err, v)
		assert.Equal(t, v, p.String())
	}

	invalid := []string{"", "13812345678", "+0123456789", "+123", "+8613812345678901234", "+86 138", "(415) 555-2671"}
	for _, v := range invalid {
		_, err := NewPhoneNumber(v)
		assert.ErrorIs(t, err, ErrInvalidPhoneNumber, v)
	}
}

func TestSmsContentEncodingDetection(t *testing.T) {
	gsm, err := NewSmsContent("Your code is 123456")
	require.NoError(t, err)
	assert.Equal(t, EncodingGSM, gsm.Encoding())

	unicode, err := NewSmsContent("您的验证码是 123456")
	require.NoError(t, err)
	assert.Equal(t, EncodingUnicode, unicode.Encoding())

	// 单个非 GSM 字符即切换整条编码
	mixed, err := NewSmsContent("hello 😀")
	require.NoError(t, err)
	assert.Equal(t, EncodingUnicode, mixed.Encoding())
}

func TestSmsContentGsmSegments(t *testing.T) {
	tests := []struct {
		length   int
		segments int
	}{
		{1, 1},
		{160, 1},
		{161, 2},
		{306, 2},
		{307, 3},
	}

	for _, tt := range tests {
		content, err := NewSmsContent(strings.Repeat("a", tt.length))
		require.NoError(t, err)
		assert.Equal(t, tt.segments, content.Segments(), "length %d", tt.length)
		assert.Equal(t, EncodingGSM, content.Encoding())
	}
}

func TestSmsContentUnicodeSegments(t *testing.T) {
	tests := []struct {
		length   int
		segments int
	}{
		{70, 1},
		{71, 2},
		{134, 2},
		{135, 3},
	}

	for _, tt := range tests {
		content, err := NewSmsContent(strings.Repeat("验", tt.length))
		require.NoError(t, err)
		assert.Equal(t, tt.segments, content.Segments(), "length %d", tt.length)
		assert.Equal(t, EncodingUnicode, content.Encoding())
	}
}

func TestSmsContentGsmExtendedCharsCountDouble(t *testing.T) {
	// 80 个 { 字符 = 160 个编码单元，仍是单段
	content, err := NewSmsContent(strings.Repeat("{", 80))
	require.NoError(t, err)
	assert.Equal(t, EncodingGSM, content.Encoding())
	assert.Equal(t, 1, content.Segments())

	// 81 个则溢出到两段
	content, err = NewSmsContent(strings.Repeat("{", 81))
	require.NoError(t, err)
	assert.Equal(t, 2, content.Segments())
}

func TestSmsContentLengthBounds(t *testing.T) {
	_, err := NewSmsContent("")
	assert.ErrorIs(t, err, ErrInvalidSmsContent)

	_, err = NewSmsContent(strings.Repeat("a", 671))
	assert.ErrorIs(t, err, ErrInvalidSmsContent)

	_, err = NewSmsContent(strings.Repeat("a", 670))
	assert.NoError(t, err)
}
