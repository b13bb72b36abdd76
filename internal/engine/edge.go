package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/whuanle/maomitts/internal/logger"
)

// EdgeEngine 使用微软 Edge TTS 在线服务实现语音合成，
// 通过 edge-tts-go 获取 MP3 音频，再用 go-mp3 解码为 PCM。
type EdgeEngine struct {
	voice string
}

// NewEdgeEngine 创建 Edge TTS 引擎，voice 为默认语音名称。
func NewEdgeEngine(voice string) *EdgeEngine {
	return &EdgeEngine{voice: voice}
}

// Name 返回后端名称。
func (e *EdgeEngine) Name() string { return "edge" }

// edgeVoices 是 Edge TTS 的常用语音表。
// 在线服务不提供廉价的枚举接口，维护一张内置表。
var edgeVoices = []Voice{
	{Name: "zh-CN-XiaoxiaoNeural", Culture: "zh-CN", Age: "Adult", Gender: "Female", Description: "晓晓 普通话", ID: "zh-CN-XiaoxiaoNeural", Enabled: true},
	{Name: "zh-CN-YunxiNeural", Culture: "zh-CN", Age: "Adult", Gender: "Male", Description: "云希 普通话", ID: "zh-CN-YunxiNeural", Enabled: true},
	{Name: "zh-CN-YunyangNeural", Culture: "zh-CN", Age: "Adult", Gender: "Male", Description: "云扬 普通话", ID: "zh-CN-YunyangNeural", Enabled: true},
	{Name: "zh-CN-XiaoyiNeural", Culture: "zh-CN", Age: "Adult", Gender: "Female", Description: "晓伊 普通话", ID: "zh-CN-XiaoyiNeural", Enabled: true},
	{Name: "zh-TW-HsiaoChenNeural", Culture: "zh-TW", Age: "Adult", Gender: "Female", Description: "曉臻 臺灣國語", ID: "zh-TW-HsiaoChenNeural", Enabled: true},
	{Name: "en-US-AriaNeural", Culture: "en-US", Age: "Adult", Gender: "Female", Description: "Aria English (US)", ID: "en-US-AriaNeural", Enabled: true},
	{Name: "en-US-GuyNeural", Culture: "en-US", Age: "Adult", Gender: "Male", Description: "Guy English (US)", ID: "en-US-GuyNeural", Enabled: true},
	{Name: "en-GB-SoniaNeural", Culture: "en-GB", Age: "Adult", Gender: "Female", Description: "Sonia English (UK)", ID: "en-GB-SoniaNeural", Enabled: true},
	{Name: "ja-JP-NanamiNeural", Culture: "ja-JP", Age: "Adult", Gender: "Female", Description: "七海 日本語", ID: "ja-JP-NanamiNeural", Enabled: true},
}

// Voices 返回内置的 Edge TTS 语音表。
func (e *EdgeEngine) Voices(ctx context.Context) ([]Voice, error) {
	out := make([]Voice, len(edgeVoices))
	copy(out, edgeVoices)
	return out, nil
}

// Synthesize 将文本合成为单声道 float32 音频样本。
// 语速档位由服务端语音本身决定，Rate 参数在此后端不生效。
func (e *EdgeEngine) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	voice := req.Voice
	if voice == "" {
		voice = e.voice
	}
	logger.Debugf("[engine] edge: 正在合成 %d 个字符，语音=%s", len([]rune(req.Text)), voice)

	comm, err := edge.NewCommunicate(req.Text, edge.WithVoice(voice))
	if err != nil {
		return nil, fmt.Errorf("[engine] edge-tts 创建实例失败: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, fmt.Errorf("[engine] edge-tts 开始流式合成失败: %w", err)
	}

	// 从 channel 收集所有音频数据
	var mp3Buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		// Stream() 返回的 map 中，type=="audio" 的条目包含音频数据
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				mp3Buf.Write(data)
			}
		}
	}

	if mp3Buf.Len() == 0 {
		return nil, fmt.Errorf("[engine] edge-tts: 未收到音频数据")
	}

	samples, sampleRate, err := decodeMp3Mono(mp3Buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("[engine] edge-tts: %w", err)
	}
	return &Audio{Samples: samples, SampleRate: sampleRate}, nil
}

// decodeMp3Mono 解码 MP3 为单声道 float32 样本。
// go-mp3 的输出固定为立体声 signed 16-bit LE，左右声道取平均混合。
func decodeMp3Mono(data []byte) ([]float32, int, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("MP3 解码失败: %w", err)
	}
	sampleRate := decoder.SampleRate()

	pcmData, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, fmt.Errorf("读取 PCM 数据失败: %w", err)
	}

	// 每个立体声帧 4 字节：左声道 2 字节 + 右声道 2 字节
	const bytesPerFrame = 4
	if len(pcmData)%bytesPerFrame != 0 {
		// 截掉不完整的尾部帧
		pcmData = pcmData[:len(pcmData)/bytesPerFrame*bytesPerFrame]
	}

	numFrames := len(pcmData) / bytesPerFrame
	samples := make([]float32, numFrames)
	for i := 0; i < numFrames; i++ {
		offset := i * bytesPerFrame
		left := int16(binary.LittleEndian.Uint16(pcmData[offset : offset+2]))
		right := int16(binary.LittleEndian.Uint16(pcmData[offset+2 : offset+4]))
		samples[i] = (float32(left) + float32(right)) / 2.0 / 32768.0
	}

	return samples, sampleRate, nil
}
