package ssml

import (
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// PinyinSegments 把中文文本拆成逐字的拼音段落，
// 供 PhonemeDocument 构造逐字注音标记。
// 汉字转换为数字声调拼音（如 "zhong1"），非汉字字符原样
// 成段，空白被跳过。
func PinyinSegments(text string) []string {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone3

	var segments []string
	for _, char := range text {
		switch {
		case unicode.Is(unicode.Han, char):
			res := pinyin.Pinyin(string(char), args)
			if len(res) > 0 && len(res[0]) > 0 {
				segments = append(segments, res[0][0])
			}
		case unicode.IsSpace(char):
			// 空白不朗读
		default:
			segments = append(segments, string(char))
		}
	}
	return segments
}
