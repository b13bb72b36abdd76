// Package ssml 构造语音合成标记文档：
// <speak>/<voice> 信封和逐段 <phoneme> 注音标记。
package ssml

import (
	"fmt"
	"strconv"
	"strings"
)

// Language 是文档信封使用的固定语言标签。
const Language = "zh-CN"

// xmlEscaper 转义插值进标记的文本，防止破坏标签结构。
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape 转义 XML 特殊字符。
func Escape(s string) string {
	return xmlEscaper.Replace(s)
}

// Document 简单模板：把 body 包进 <speak> 信封。
// body 为已构造好的标记片段，不再转义。
func Document(body string) string {
	return fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s">%s</speak>`,
		Language, body)
}

// VoiceDocument 单语音模板：body 包进指定语音的 <voice> 元素再套 <speak> 信封。
func VoiceDocument(voice, body string) string {
	return Document(fmt.Sprintf(`<voice name="%s">%s</voice>`, Escape(voice), body))
}

// PhonemeSpan 为一段文本构造注音标记。
// 文本本身同时作为 ph 注音内容（附加停顿值）和朗读文本；
// pause 为该段之后的停顿时长（毫秒）。
func PhonemeSpan(text string, pause int) string {
	esc := Escape(text)
	return fmt.Sprintf(`<phoneme alphabet='ipa' ph='%s %s'>%s</phoneme>`,
		esc, strconv.Itoa(pause), esc)
}

// PhonemeBody 把每个输入段落变成一个注音标记，按输入顺序以换行连接。
func PhonemeBody(segments []string, pause int) string {
	spans := make([]string, len(segments))
	for i, s := range segments {
		spans[i] = PhonemeSpan(s, pause)
	}
	return strings.Join(spans, "\n")
}

// PhonemeDocument 多段注音文档：逐段注音标记放进单语音模板。
func PhonemeDocument(voice string, segments []string, pause int) string {
	return VoiceDocument(voice, PhonemeBody(segments, pause))
}
