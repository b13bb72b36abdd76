package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// sayVoiceLine 匹配 say -v ? 的输出行，如：
// "Tingting            zh_CN    # 你好，我叫婷婷。"
var sayVoiceLine = regexp.MustCompile(`^(.+?)\s{2,}([a-z]{2,3}[_-][A-Za-z0-9_-]+)\s*(?:#\s*(.*))?$`)

// parseSayVoices 解析 macOS say -v ? 的语音列表输出。
func parseSayVoices(out string) []Voice {
	var voices []Voice
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r ")
		if line == "" {
			continue
		}
		m := sayVoiceLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		voices = append(voices, Voice{
			Name:        strings.TrimSpace(m[1]),
			Culture:     m[2],
			Description: strings.TrimSpace(m[3]),
			ID:          strings.TrimSpace(m[1]),
			Enabled:     true,
		})
	}
	return voices
}

// parseEspeakVoices 解析 espeak-ng --voices 的表格输出。
// 列为: Pty Language Age/Gender VoiceName File Other_Languages，
// 其中 VoiceName 可能包含空格，File 是含 "/" 的路径。
func parseEspeakVoices(out string) []Voice {
	var voices []Voice
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if i == 0 || strings.TrimSpace(line) == "" {
			// 跳过表头
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}

		lang := fields[1]
		ageGender := fields[2]

		// 从第 4 列起找 File 列（含 "/" 的字段），其前为语音名称
		fileIdx := -1
		for j := 3; j < len(fields); j++ {
			if strings.Contains(fields[j], "/") {
				fileIdx = j
				break
			}
		}
		if fileIdx < 0 {
			continue
		}
		name := strings.Join(fields[3:fileIdx], " ")

		var age, gender string
		if parts := strings.SplitN(ageGender, "/", 2); len(parts) == 2 {
			if parts[0] != "" && parts[0] != "--" {
				age = parts[0]
			}
			switch parts[1] {
			case "M":
				gender = "Male"
			case "F":
				gender = "Female"
			}
		}

		voices = append(voices, Voice{
			Name:    name,
			Culture: lang,
			Age:     age,
			Gender:  gender,
			ID:      fields[fileIdx],
			Enabled: true,
		})
	}
	return voices
}

// sapiVoice 是 SAPI 枚举脚本输出的 JSON 结构。
type sapiVoice struct {
	Name        string `json:"Name"`
	Culture     string `json:"Culture"`
	Age         string `json:"Age"`
	Gender      string `json:"Gender"`
	Description string `json:"Description"`
	ID          string `json:"Id"`
	Enabled     bool   `json:"Enabled"`
}

// parseSapiVoices 解析 SAPI 枚举脚本的 JSON 输出。
// ConvertTo-Json 对单元素列表会输出对象而非数组，两种都接受。
func parseSapiVoices(data []byte) ([]Voice, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var raw []sapiVoice
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return nil, fmt.Errorf("[engine] 解析 SAPI 语音列表失败: %w", err)
		}
	} else {
		var single sapiVoice
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil, fmt.Errorf("[engine] 解析 SAPI 语音列表失败: %w", err)
		}
		raw = []sapiVoice{single}
	}

	voices := make([]Voice, 0, len(raw))
	for _, v := range raw {
		voices = append(voices, Voice{
			Name:        v.Name,
			Culture:     v.Culture,
			Age:         v.Age,
			Gender:      v.Gender,
			Description: v.Description,
			ID:          v.ID,
			Enabled:     v.Enabled,
		})
	}
	return voices, nil
}
