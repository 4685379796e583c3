package domain

import "errors"

var (
	// ErrInvalidTemplateContent 非法模板内容
	ErrInvalidTemplateContent = errors.New("invalid template content")
	// ErrInvalidTemplateName 非法模板名称
	ErrInvalidTemplateName = errors.New("invalid template name")
	// ErrUndeclaredVariable 模板正文使用了未声明的变量
	ErrUndeclaredVariable = errors.New("undeclared template variable")
	// ErrMissingVariable 渲染时缺少变量取值
	ErrMissingVariable = errors.New("missing template variable")
	// ErrTemplateNotEditable 模板处于不可编辑状态（已归档或已删除）
	ErrTemplateNotEditable = errors.New("template is not editable")
	// ErrNothingToPublish 没有待发布的草稿内容
	ErrNothingToPublish = errors.New("no draft content to publish")
	// ErrNoPublishedRevision 模板尚无已发布版本
	ErrNoPublishedRevision = errors.New("template has no published revision")
)
