package engine

import (
	"fmt"
	"strings"
)

// sapiVoicesScript 枚举 System.Speech 已安装语音并输出 JSON。
const sapiVoicesScript = "Add-Type -AssemblyName System.Speech\n" +
	"$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer\n" +
	"$list = $synth.GetInstalledVoices() | ForEach-Object {\n" +
	"    [PSCustomObject]@{\n" +
	"        Name = $_.VoiceInfo.Name\n" +
	"        Culture = $_.VoiceInfo.Culture.Name\n" +
	"        Age = $_.VoiceInfo.Age.ToString()\n" +
	"        Gender = $_.VoiceInfo.Gender.ToString()\n" +
	"        Description = $_.VoiceInfo.Description\n" +
	"        Id = $_.VoiceInfo.Id\n" +
	"        Enabled = $_.Enabled\n" +
	"    }\n" +
	"}\n" +
	"ConvertTo-Json @($list)"

// psQuote 把字符串包进 PowerShell 单引号字面量，内部单引号翻倍转义。
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// buildSapiSpeakScript 生成合成脚本：从 textPath 读文本，
// 结果写入 wavPath，voice 非空时先选择语音。
func buildSapiSpeakScript(textPath, wavPath, voice string, rate int, isSsml bool) string {
	var b strings.Builder
	b.WriteString("Add-Type -AssemblyName System.Speech\n")
	b.WriteString("$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer\n")
	if voice != "" {
		fmt.Fprintf(&b, "$synth.SelectVoice(%s)\n", psQuote(voice))
	}
	if rate != 0 {
		fmt.Fprintf(&b, "$synth.Rate = %d\n", rate)
	}
	fmt.Fprintf(&b, "$synth.SetOutputToWaveFile(%s)\n", psQuote(wavPath))
	fmt.Fprintf(&b, "$text = [System.IO.File]::ReadAllText(%s, [System.Text.Encoding]::UTF8)\n", psQuote(textPath))
	if isSsml {
		b.WriteString("$synth.SpeakSsml($text)\n")
	} else {
		b.WriteString("$synth.Speak($text)\n")
	}
	b.WriteString("$synth.Dispose()")
	return b.String()
}
