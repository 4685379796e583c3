package domain

import (
	"fmt"
	"regexp"
)

// 内容长度限制
const (
	maxSmsBodyLength = 670

	// 单条与多条分段的容量：GSM-7 编码 160/153，Unicode 编码 70/67
	gsmSingleSegment     = 160
	gsmMultiSegment      = 153
	unicodeSingleSegment = 70
	unicodeMultiSegment  = 67
)

// e164Pattern E.164 国际号码格式：+ 开头，首位 1-9，总长 8-15 位数字
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// PhoneNumber 手机号值对象，E.164 格式
type PhoneNumber struct {
	value string
}

// NewPhoneNumber 校验并构造手机号
func NewPhoneNumber(value string) (PhoneNumber, error) {
	if !e164Pattern.MatchString(value) {
		return PhoneNumber{}, fmt.Errorf("%w: %q is not E.164", ErrInvalidPhoneNumber, value)
	}
	return PhoneNumber{value: value}, nil
}

// String 返回 E.164 格式号码
func (p PhoneNumber) String() string { return p.value }

// gsmBasicSet GSM 03.38 基础字符集（不含需要转义的扩展字符）
const gsmBasicSet = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑÜ§¿abcdefghijklmnopqrstuvwxyzäöñüà"

// gsmExtendedSet GSM 03.38 扩展字符，每个占两个编码位
const gsmExtendedSet = "^{}\\[~]|€"

var gsmChars = func() map[rune]bool {
	m := make(map[rune]bool, len(gsmBasicSet))
	for _, r := range gsmBasicSet {
		m[r] = true
	}
	return m
}()

var gsmExtChars = func() map[rune]bool {
	m := make(map[rune]bool, len(gsmExtendedSet))
	for _, r := range gsmExtendedSet {
		m[r] = true
	}
	return m
}()

// SmsContent 短信内容值对象
// 正文 1-670 字符，编码与分段数在构造时确定
type SmsContent struct {
	body     string
	encoding string
	segments int
}

// 短信编码
const (
	EncodingGSM     = "GSM-7"
	EncodingUnicode = "UCS-2"
)

// NewSmsContent 校验并构造短信内容
func NewSmsContent(body string) (SmsContent, error) {
	runes := []rune(body)
	if len(runes) == 0 || len(runes) > maxSmsBodyLength {
		return SmsContent{}, fmt.Errorf("%w: body length must be 1-%d", ErrInvalidSmsContent, maxSmsBodyLength)
	}

	encoding, units := encodeUnits(runes)
	return SmsContent{
		body:     body,
		encoding: encoding,
		segments: segmentCount(encoding, units),
	}, nil
}

// encodeUnits 判定编码并计算编码单元数（GSM 扩展字符占两个单元）
func encodeUnits(runes []rune) (string, int) {
	units := 0
	for _, r := range runes {
		switch {
		case gsmChars[r]:
			units++
		case gsmExtChars[r]:
			units += 2
		default:
			return EncodingUnicode, len(runes)
		}
	}
	return EncodingGSM, units
}

// segmentCount 按编码与单元数计算分段数
func segmentCount(encoding string, units int) int {
	single, multi := unicodeSingleSegment, unicodeMultiSegment
	if encoding == EncodingGSM {
		single, multi = gsmSingleSegment, gsmMultiSegment
	}
	if units <= single {
		return 1
	}
	return (units + multi - 1) / multi
}

// Body 正文
func (c SmsContent) Body() string { return c.body }

// Encoding 编码方式
func (c SmsContent) Encoding() string { return c.encoding }

// Segments 分段数
func (c SmsContent) Segments() int { return c.segments }
