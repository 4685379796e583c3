// Package domain 邮件模板的领域模型
package domain

// TemplateStatus 模板状态
type TemplateStatus string

const (
	StatusDraft     TemplateStatus = "DRAFT"
	StatusPublished TemplateStatus = "PUBLISHED"
	StatusArchived  TemplateStatus = "ARCHIVED"
	StatusDeleted   TemplateStatus = "DELETED"
)

// templateTransitions 状态转换合法性表
// DELETED 为终态，无出边
var templateTransitions = map[TemplateStatus][]TemplateStatus{
	StatusDraft:     {StatusPublished, StatusDeleted},
	StatusPublished: {StatusArchived},
	StatusArchived:  {StatusPublished, StatusDeleted},
	StatusDeleted:   {},
}

// Valid 是否为已知状态
func (s TemplateStatus) Valid() bool {
	_, ok := templateTransitions[s]
	return ok
}

// CanTransitionTo 判断是否允许转换到目标状态
func (s TemplateStatus) CanTransitionTo(next TemplateStatus) bool {
	for _, allowed := range templateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal 是否为终态
func (s TemplateStatus) IsTerminal() bool {
	return len(templateTransitions[s]) == 0 && s.Valid()
}
