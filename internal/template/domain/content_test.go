package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateContent(t *testing.T) {
	content, err := NewTemplateContent(
		"您好 {{name}}",
		"<p>订单 {{ order_id }} 已发货</p>",
		"订单 {{order_id}} 已发货",
		[]string{"name", "order_id"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "order_id"}, content.Variables())
	assert.Equal(t, []string{"name", "order_id"}, content.Placeholders())
}

func TestNewTemplateContentValidation(t *testing.T) {
	_, err := NewTemplateContent("", "<p>body</p>", "", nil)
	assert.ErrorIs(t, err, ErrInvalidTemplateContent)

	_, err = NewTemplateContent(strings.Repeat("s", 201), "<p>body</p>", "", nil)
	assert.ErrorIs(t, err, ErrInvalidTemplateContent)

	_, err = NewTemplateContent("subject", "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidTemplateContent)

	vars := make([]string, 51)
	for i := range vars {
		vars[i] = strings.Repeat("v", i+1)
	}
	_, err = NewTemplateContent("subject", "<p>body</p>", "", vars)
	assert.ErrorIs(t, err, ErrInvalidTemplateContent)

	_, err = NewTemplateContent("subject", "<p>body</p>", "", []string{""})
	assert.ErrorIs(t, err, ErrInvalidTemplateContent)
}

func TestNewTemplateContentUndeclaredVariable(t *testing.T) {
	_, err := NewTemplateContent("Hi {{name}}", "<p>{{code}}</p>", "", []string{"name"})
	assert.ErrorIs(t, err, ErrUndeclaredVariable)

	// 占位符可出现在任意一段正文
	_, err = NewTemplateContent("subject", "<p>body</p>", "plain {{secret}}", nil)
	assert.ErrorIs(t, err, ErrUndeclaredVariable)

	// 非法占位符语法不被识别为变量
	_, err = NewTemplateContent("subject", "<p>{{9lives}} {{}}</p>", "", nil)
	assert.NoError(t, err)
}

func TestTemplateContentEqual(t *testing.T) {
	a, err := NewTemplateContent("s", "<p>b</p>", "t", []string{"x"})
	require.NoError(t, err)
	b, err := NewTemplateContent("s", "<p>b</p>", "t", []string{"x"})
	require.NoError(t, err)
	c, err := NewTemplateContent("s", "<p>b2</p>", "t", []string{"x"})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
