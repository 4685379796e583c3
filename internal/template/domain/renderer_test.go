package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererRender(t *testing.T) {
	content, err := NewTemplateContent(
		"Order {{order_id}} shipped",
		"<p>Hi {{ name }}, order {{order_id}} is on the way.</p>",
		"Hi {{name}}",
		[]string{"name", "order_id"},
	)
	require.NoError(t, err)

	rendered, err := NewRenderer().Render(content, map[string]string{
		"name":     "Alice",
		"order_id": "A-42",
	})
	require.NoError(t, err)

	assert.Equal(t, "Order A-42 shipped", rendered.Subject)
	assert.Equal(t, "<p>Hi Alice, order A-42 is on the way.</p>", rendered.HTMLBody)
	assert.Equal(t, "Hi Alice", rendered.TextBody)
}

func TestRendererMissingVariable(t *testing.T) {
	content, err := NewTemplateContent("Hi {{name}}", "<p>{{name}} {{code}}</p>", "", []string{"name", "code"})
	require.NoError(t, err)

	renderer := NewRenderer()
	_, err = renderer.Render(content, map[string]string{"name": "Bob"})
	assert.ErrorIs(t, err, ErrMissingVariable)

	assert.Equal(t, []string{"code"}, renderer.MissingVariables(content, map[string]string{"name": "Bob"}))
	assert.Nil(t, renderer.MissingVariables(content, map[string]string{"name": "Bob", "code": "1"}))
}

func TestRendererPreview(t *testing.T) {
	content, err := NewTemplateContent("Hi {{name}}", "<p>code: {{code}}</p>", "", []string{"name", "code"})
	require.NoError(t, err)

	preview := NewRenderer().Preview(content)
	require.NotNil(t, preview)
	assert.Equal(t, "Hi SAMPLE", preview.Subject)
	assert.Equal(t, "<p>code: SAMPLE</p>", preview.HTMLBody)
}

func TestRendererEmptyValueAllowed(t *testing.T) {
	content, err := NewTemplateContent("Hi {{name}}", "<p>x</p>", "", []string{"name"})
	require.NoError(t, err)

	// 显式空串与缺失不同
	rendered, err := NewRenderer().Render(content, map[string]string{"name": ""})
	require.NoError(t, err)
	assert.Equal(t, "Hi ", rendered.Subject)
}
