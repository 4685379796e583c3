package domain

import (
	"fmt"
	"net/url"
)

// 内容字段长度限制
const (
	maxTitleLength   = 100
	maxBodyLength    = 1000
	maxDataEntries   = 20
	maxTokenLength   = 512
	maxDataValueSize = 1024
)

// Platform 设备平台
type Platform string

const (
	PlatformIOS     Platform = "IOS"
	PlatformAndroid Platform = "ANDROID"
	PlatformWeb     Platform = "WEB"
)

// Valid 是否为已知平台
func (p Platform) Valid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

// DeviceToken 设备推送令牌值对象
type DeviceToken struct {
	value string
}

// NewDeviceToken 校验并构造设备令牌
func NewDeviceToken(value string) (DeviceToken, error) {
	if value == "" || len(value) > maxTokenLength {
		return DeviceToken{}, fmt.Errorf("%w: token length %d", ErrInvalidDeviceToken, len(value))
	}
	return DeviceToken{value: value}, nil
}

// String 返回原始令牌
func (t DeviceToken) String() string { return t.value }

// PushContent 推送内容值对象
// 标题 1-100 字符，正文 1-1000 字符，附加数据最多 20 项
type PushContent struct {
	title    string
	body     string
	imageURL string
	data     map[string]string
}

// NewPushContent 校验并构造推送内容
func NewPushContent(title, body, imageURL string, data map[string]string) (PushContent, error) {
	if title == "" || len([]rune(title)) > maxTitleLength {
		return PushContent{}, fmt.Errorf("%w: title length must be 1-%d", ErrInvalidPushContent, maxTitleLength)
	}
	if body == "" || len([]rune(body)) > maxBodyLength {
		return PushContent{}, fmt.Errorf("%w: body length must be 1-%d", ErrInvalidPushContent, maxBodyLength)
	}
	if imageURL != "" {
		u, err := url.Parse(imageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return PushContent{}, fmt.Errorf("%w: invalid image url", ErrInvalidPushContent)
		}
	}
	if len(data) > maxDataEntries {
		return PushContent{}, fmt.Errorf("%w: at most %d data entries", ErrInvalidPushContent, maxDataEntries)
	}
	for k, v := range data {
		if k == "" {
			return PushContent{}, fmt.Errorf("%w: empty data key", ErrInvalidPushContent)
		}
		if len(v) > maxDataValueSize {
			return PushContent{}, fmt.Errorf("%w: data value for %q too large", ErrInvalidPushContent, k)
		}
	}

	// data 防御性拷贝，保持值对象不可变
	var copied map[string]string
	if len(data) > 0 {
		copied = make(map[string]string, len(data))
		for k, v := range data {
			copied[k] = v
		}
	}

	return PushContent{
		title:    title,
		body:     body,
		imageURL: imageURL,
		data:     copied,
	}, nil
}

// Title 标题
func (c PushContent) Title() string { return c.title }

// Body 正文
func (c PushContent) Body() string { return c.body }

// ImageURL 图片地址
func (c PushContent) ImageURL() string { return c.imageURL }

// Data 附加数据（拷贝）
func (c PushContent) Data() map[string]string {
	if c.data == nil {
		return nil
	}
	copied := make(map[string]string, len(c.data))
	for k, v := range c.data {
		copied[k] = v
	}
	return copied
}
