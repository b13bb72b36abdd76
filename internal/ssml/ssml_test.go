package ssml

import (
	"encoding/xml"
	"fmt"
	"strings"
	"testing"
)

func TestDocument(t *testing.T) {
	doc := Document("hello")
	if !strings.HasPrefix(doc, "<speak ") || !strings.HasSuffix(doc, "</speak>") {
		t.Fatalf("missing speak envelope: %s", doc)
	}
	if !strings.Contains(doc, `xml:lang="zh-CN"`) {
		t.Errorf("missing language tag: %s", doc)
	}
	if !strings.Contains(doc, ">hello<") {
		t.Errorf("body missing: %s", doc)
	}
}

func TestVoiceDocument_SingleVoiceSingleSpan(t *testing.T) {
	doc := VoiceDocument("Tingting", PhonemeSpan("ni3", 500))

	if got := strings.Count(doc, `<voice name="Tingting">`); got != 1 {
		t.Errorf("expected exactly one voice element, got %d in %s", got, doc)
	}
	if got := strings.Count(doc, "<phoneme "); got != 1 {
		t.Errorf("expected exactly one phoneme element, got %d in %s", got, doc)
	}
	if !strings.Contains(doc, `<phoneme alphabet='ipa' ph='ni3 500'>ni3</phoneme>`) {
		t.Errorf("unexpected phoneme span: %s", doc)
	}
}

func TestPhonemeBody_OrderAndCount(t *testing.T) {
	segments := []string{"zhong1", "guo2", "ren2"}
	body := PhonemeBody(segments, 300)

	lines := strings.Split(body, "\n")
	if len(lines) != len(segments) {
		t.Fatalf("expected %d lines, got %d", len(segments), len(lines))
	}
	for i, seg := range segments {
		want := fmt.Sprintf("<phoneme alphabet='ipa' ph='%s 300'>%s</phoneme>", seg, seg)
		if lines[i] != want {
			t.Errorf("line %d:\n got %s\nwant %s", i, lines[i], want)
		}
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a&b", "a&amp;b"},
		{"<speak>", "&lt;speak&gt;"},
		{`say "hi"`, "say &quot;hi&quot;"},
		{"it's", "it&apos;s"},
	}
	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhonemeSpan_EscapesPayload(t *testing.T) {
	span := PhonemeSpan("a<b&'c'", 100)
	if strings.Contains(span, "<b") || strings.Contains(span, "&'") {
		t.Errorf("unescaped payload leaked into markup: %s", span)
	}
	if !strings.Contains(span, "a&lt;b&amp;&apos;c&apos;") {
		t.Errorf("expected escaped payload: %s", span)
	}
}

// speakDoc 用于把构造出的标记解析回 XML 文档。
type speakDoc struct {
	XMLName xml.Name `xml:"speak"`
	Lang    string   `xml:"lang,attr"`
	Voice   struct {
		Name     string `xml:"name,attr"`
		Phonemes []struct {
			Alphabet string `xml:"alphabet,attr"`
			Ph       string `xml:"ph,attr"`
			Text     string `xml:",chardata"`
		} `xml:"phoneme"`
	} `xml:"voice"`
}

func TestPhonemeDocument_XMLRoundTrip(t *testing.T) {
	segments := []string{"ma1", "ma2", "ma3"}
	doc := PhonemeDocument("Huihui", segments, 250)

	var parsed speakDoc
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("output is not valid XML: %v\n%s", err, doc)
	}

	if parsed.Voice.Name != "Huihui" {
		t.Errorf("voice name: got %q", parsed.Voice.Name)
	}
	if len(parsed.Voice.Phonemes) != len(segments) {
		t.Fatalf("expected %d phonemes, got %d", len(segments), len(parsed.Voice.Phonemes))
	}
	for i, p := range parsed.Voice.Phonemes {
		if p.Alphabet != "ipa" {
			t.Errorf("phoneme %d alphabet: got %q", i, p.Alphabet)
		}
		if want := segments[i] + " 250"; p.Ph != want {
			t.Errorf("phoneme %d ph: got %q, want %q", i, p.Ph, want)
		}
		if p.Text != segments[i] {
			t.Errorf("phoneme %d text: got %q, want %q", i, p.Text, segments[i])
		}
	}
}

func TestPhonemeDocument_EscapedTextRoundTrip(t *testing.T) {
	// 含特殊字符的文本经转义后仍应能解析回原值
	doc := PhonemeDocument("V", []string{"a&b"}, 100)
	var parsed speakDoc
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("output is not valid XML: %v\n%s", err, doc)
	}
	if got := parsed.Voice.Phonemes[0].Ph; got != "a&b 100" {
		t.Errorf("ph: got %q, want %q", got, "a&b 100")
	}
}

func TestPinyinSegments(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"中国", []string{"zhong1", "guo2"}},
		{"你好", []string{"ni3", "hao3"}},
		{"你 好", []string{"ni3", "hao3"}},
		{"abc", []string{"a", "b", "c"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := PinyinSegments(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("PinyinSegments(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("PinyinSegments(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
