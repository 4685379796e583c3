package domain

import (
	"fmt"
	"regexp"
	"sort"
)

// 内容字段长度限制
const (
	maxSubjectLength  = 200
	maxHTMLBodyLength = 100000
	maxNameLength     = 100
	maxVariables      = 50
)

// placeholderPattern 模板变量占位符 {{name}}
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// TemplateContent 模板内容值对象
// 主题 1-200 字符，HTML 正文 1-100000 字符，纯文本正文可选
// 正文中出现的 {{var}} 占位符必须在声明变量列表内
type TemplateContent struct {
	subject   string
	htmlBody  string
	textBody  string
	variables []string
}

// NewTemplateContent 校验并构造模板内容
func NewTemplateContent(subject, htmlBody, textBody string, variables []string) (TemplateContent, error) {
	if subject == "" || len([]rune(subject)) > maxSubjectLength {
		return TemplateContent{}, fmt.Errorf("%w: subject length must be 1-%d", ErrInvalidTemplateContent, maxSubjectLength)
	}
	if htmlBody == "" || len([]rune(htmlBody)) > maxHTMLBodyLength {
		return TemplateContent{}, fmt.Errorf("%w: html body length must be 1-%d", ErrInvalidTemplateContent, maxHTMLBodyLength)
	}
	if len(variables) > maxVariables {
		return TemplateContent{}, fmt.Errorf("%w: at most %d variables", ErrInvalidTemplateContent, maxVariables)
	}

	declared := make(map[string]bool, len(variables))
	for _, v := range variables {
		if v == "" {
			return TemplateContent{}, fmt.Errorf("%w: empty variable name", ErrInvalidTemplateContent)
		}
		declared[v] = true
	}

	for _, name := range extractPlaceholders(subject, htmlBody, textBody) {
		if !declared[name] {
			return TemplateContent{}, fmt.Errorf("%w: %q", ErrUndeclaredVariable, name)
		}
	}

	copied := make([]string, len(variables))
	copy(copied, variables)

	return TemplateContent{
		subject:   subject,
		htmlBody:  htmlBody,
		textBody:  textBody,
		variables: copied,
	}, nil
}

// extractPlaceholders 提取各段正文中出现的占位符名称（去重、有序）
func extractPlaceholders(parts ...string) []string {
	seen := make(map[string]bool)
	for _, part := range parts {
		for _, match := range placeholderPattern.FindAllStringSubmatch(part, -1) {
			seen[match[1]] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subject 主题
func (c TemplateContent) Subject() string { return c.subject }

// HTMLBody HTML 正文
func (c TemplateContent) HTMLBody() string { return c.htmlBody }

// TextBody 纯文本正文
func (c TemplateContent) TextBody() string { return c.textBody }

// Variables 声明的变量列表（拷贝）
func (c TemplateContent) Variables() []string {
	copied := make([]string, len(c.variables))
	copy(copied, c.variables)
	return copied
}

// Placeholders 正文中实际使用的占位符
func (c TemplateContent) Placeholders() []string {
	return extractPlaceholders(c.subject, c.htmlBody, c.textBody)
}

// Equal 内容是否一致
func (c TemplateContent) Equal(other TemplateContent) bool {
	if c.subject != other.subject || c.htmlBody != other.htmlBody || c.textBody != other.textBody {
		return false
	}
	if len(c.variables) != len(other.variables) {
		return false
	}
	for i := range c.variables {
		if c.variables[i] != other.variables[i] {
			return false
		}
	}
	return true
}
