package domain

import (
	"fmt"
)

// RenderedEmail 渲染结果
type RenderedEmail struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Renderer 模板渲染服务
// 将 {{var}} 占位符替换为调用方提供的取值，缺值即报错
type Renderer struct{}

// NewRenderer 创建渲染服务
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render 渲染指定修订的内容
func (r *Renderer) Render(content TemplateContent, values map[string]string) (*RenderedEmail, error) {
	for _, name := range content.Placeholders() {
		if _, ok := values[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingVariable, name)
		}
	}

	return &RenderedEmail{
		Subject:  substitute(content.Subject(), values),
		HTMLBody: substitute(content.HTMLBody(), values),
		TextBody: substitute(content.TextBody(), values),
	}, nil
}

// substitute 逐个替换占位符
func substitute(text string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := values[name]; ok {
			return value
		}
		return match
	})
}

// previewValue 占位符的示例取值
const previewValue = "SAMPLE"

// Preview 用示例取值渲染，便于模板编辑时预览
func (r *Renderer) Preview(content TemplateContent) *RenderedEmail {
	values := make(map[string]string)
	for _, name := range content.Placeholders() {
		values[name] = previewValue
	}
	rendered, _ := r.Render(content, values)
	return rendered
}

// MissingVariables 列出取值中缺失的占位符
func (r *Renderer) MissingVariables(content TemplateContent, values map[string]string) []string {
	var missing []string
	for _, name := range content.Placeholders() {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
