package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/whuanle/maomitts/internal/audio"
	"github.com/whuanle/maomitts/internal/logger"
)

// SystemEngine 使用操作系统自带的语音合成能力：
// macOS 的 say、Linux 的 espeak-ng、Windows 的 System.Speech (SAPI)。
// 不依赖网络，适合离线环境。
type SystemEngine struct{}

// NewSystemEngine 创建系统语音引擎。
func NewSystemEngine() *SystemEngine {
	return &SystemEngine{}
}

// Name 返回后端名称。
func (e *SystemEngine) Name() string { return "system" }

// sayBaseWPM 是 macOS say 的默认语速（词/分钟）。
const sayBaseWPM = 175.0

// rateToWPM 把 -10..10 的语速档位换算为词/分钟。
// 每档 5%，10 档为 1.5 倍速，-10 档为 0.5 倍速。
func rateToWPM(rate int) int {
	return int(sayBaseWPM * (1.0 + float64(rate)*0.05))
}

// Voices 枚举系统已安装的语音。
func (e *SystemEngine) Voices(ctx context.Context) ([]Voice, error) {
	switch runtime.GOOS {
	case "darwin":
		out, err := exec.CommandContext(ctx, "say", "-v", "?").Output()
		if err != nil {
			return nil, fmt.Errorf("[engine] say -v ? 执行失败: %w", err)
		}
		return parseSayVoices(string(out)), nil
	case "windows":
		out, err := exec.CommandContext(ctx, "powershell",
			"-NoProfile", "-NonInteractive", "-Command", sapiVoicesScript).Output()
		if err != nil {
			return nil, fmt.Errorf("[engine] 枚举 SAPI 语音失败: %w", err)
		}
		return parseSapiVoices(out)
	default:
		out, err := exec.CommandContext(ctx, "espeak-ng", "--voices").Output()
		if err != nil {
			return nil, fmt.Errorf("[engine] espeak-ng --voices 执行失败: %w", err)
		}
		return parseEspeakVoices(string(out)), nil
	}
}

// Synthesize 调用系统语音命令将文本合成为单声道 float32 样本。
func (e *SystemEngine) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	return e.synthesize(ctx, req, false)
}

// SynthesizeSsml 合成 SSML 标记文本。
// Linux 通过 espeak-ng -m，Windows 通过 SAPI SpeakSsml；macOS say 不支持。
func (e *SystemEngine) SynthesizeSsml(ctx context.Context, ssml string) (*Audio, error) {
	if runtime.GOOS == "darwin" {
		return nil, fmt.Errorf("[engine] macOS say 不支持 SSML 合成")
	}
	return e.synthesize(ctx, Request{Text: ssml}, true)
}

func (e *SystemEngine) synthesize(ctx context.Context, req Request, isSsml bool) (*Audio, error) {
	logger.Debugf("[engine] system: 正在合成 %d 个字符 (voice=%s, rate=%d)",
		len([]rune(req.Text)), req.Voice, req.Rate)

	switch runtime.GOOS {
	case "darwin":
		return e.synthesizeSay(ctx, req)
	case "windows":
		return e.synthesizeSapi(ctx, req, isSsml)
	default:
		return e.synthesizeEspeak(ctx, req, isSsml)
	}
}

// synthesizeSay 使用 macOS say 合成。
// say 只能输出 AIFF，再用 afconvert 转为 16-bit LE 单声道 WAV。
func (e *SystemEngine) synthesizeSay(ctx context.Context, req Request) (*Audio, error) {
	tmpFile, err := os.CreateTemp("", "maomitts-say-*.aiff")
	if err != nil {
		return nil, fmt.Errorf("[engine] 创建临时文件失败: %w", err)
	}
	aiffPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(aiffPath)

	wavPath := aiffPath + ".wav"
	defer os.Remove(wavPath)

	args := []string{"-o", aiffPath}
	if req.Voice != "" {
		args = append(args, "-v", req.Voice)
	}
	if req.Rate != 0 {
		args = append(args, "-r", strconv.Itoa(rateToWPM(req.Rate)))
	}
	args = append(args, req.Text)

	cmd := exec.CommandContext(ctx, "say", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("[engine] say 执行失败: %w, stderr: %s", err, stderr.String())
	}

	convertCmd := exec.CommandContext(ctx, "afconvert",
		"-f", "WAVE",
		"-d", "LEI16@22050",
		"-c", "1",
		aiffPath, wavPath,
	)
	var convertStderr bytes.Buffer
	convertCmd.Stderr = &convertStderr
	if err := convertCmd.Run(); err != nil {
		return nil, fmt.Errorf("[engine] afconvert 执行失败: %w, stderr: %s", err, convertStderr.String())
	}

	samples, sampleRate, err := audio.ReadWavFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("[engine] say: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("[engine] say: 未收到音频数据")
	}
	return &Audio{Samples: samples, SampleRate: sampleRate}, nil
}

// synthesizeEspeak 使用 espeak-ng 合成，WAV 直接从 stdout 读取。
func (e *SystemEngine) synthesizeEspeak(ctx context.Context, req Request, isSsml bool) (*Audio, error) {
	args := []string{"--stdout"}
	if isSsml {
		args = append(args, "-m")
	}
	if req.Voice != "" {
		args = append(args, "-v", req.Voice)
	} else if req.Language != "" {
		args = append(args, "-v", strings.ToLower(req.Language))
	}
	if req.Rate != 0 {
		args = append(args, "-s", strconv.Itoa(rateToWPM(req.Rate)))
	}
	args = append(args, req.Text)

	cmd := exec.CommandContext(ctx, "espeak-ng", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("[engine] espeak-ng 执行失败: %w, stderr: %s", err, stderr.String())
	}

	samples, sampleRate, err := audio.DecodeWav(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("[engine] espeak-ng: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("[engine] espeak-ng: 未收到音频数据")
	}
	return &Audio{Samples: samples, SampleRate: sampleRate}, nil
}

// synthesizeSapi 使用 Windows System.Speech 合成。
// 文本经由临时文件传入，避免 PowerShell 引号转义问题。
func (e *SystemEngine) synthesizeSapi(ctx context.Context, req Request, isSsml bool) (*Audio, error) {
	textFile, err := os.CreateTemp("", "maomitts-sapi-*.txt")
	if err != nil {
		return nil, fmt.Errorf("[engine] 创建临时文件失败: %w", err)
	}
	textPath := textFile.Name()
	if _, err := textFile.WriteString(req.Text); err != nil {
		textFile.Close()
		os.Remove(textPath)
		return nil, fmt.Errorf("[engine] 写入临时文件失败: %w", err)
	}
	textFile.Close()
	defer os.Remove(textPath)

	wavPath := textPath + ".wav"
	defer os.Remove(wavPath)

	script := buildSapiSpeakScript(textPath, wavPath, req.Voice, req.Rate, isSsml)
	cmd := exec.CommandContext(ctx, "powershell",
		"-NoProfile", "-NonInteractive", "-Command", script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("[engine] SAPI 合成失败: %w, stderr: %s", err, stderr.String())
	}

	samples, sampleRate, err := audio.ReadWavFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("[engine] SAPI: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("[engine] SAPI: 未收到音频数据")
	}
	return &Audio{Samples: samples, SampleRate: sampleRate}, nil
}
