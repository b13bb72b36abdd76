package engine

import (
	"context"
	"fmt"

	"github.com/whuanle/maomitts/internal/config"
)

// Voice 描述平台上一个已安装的合成语音。
type Voice struct {
	Name        string
	Culture     string
	Age         string
	Gender      string
	Description string
	ID          string
	Enabled     bool
}

// Request 一次文本合成请求。
// Rate 为 -10 到 10 的语速档位，0 表示正常语速；
// 语速和语言不做校验，由底层引擎自行解释或报错。
type Request struct {
	Text     string
	Voice    string
	Rate     int
	Language string
}

// Audio 合成结果：单声道 float32 样本及其采样率。
type Audio struct {
	Samples    []float32
	SampleRate int
}

// Engine 定义语音合成后端接口。
type Engine interface {
	// Name 返回后端名称。
	Name() string
	// Voices 枚举当前可用的语音列表。
	Voices(ctx context.Context) ([]Voice, error)
	// Synthesize 将纯文本合成为音频。
	Synthesize(ctx context.Context, req Request) (*Audio, error)
}

// SsmlSynthesizer 由支持 SSML 标记合成的后端额外实现。
type SsmlSynthesizer interface {
	SynthesizeSsml(ctx context.Context, ssml string) (*Audio, error)
}

// New 根据配置创建语音合成引擎。
func New(cfg *config.Config) (Engine, error) {
	switch cfg.Engine.Backend {
	case "", "system":
		return NewSystemEngine(), nil
	case "edge":
		return NewEdgeEngine(cfg.Engine.Edge.Voice), nil
	case "tencent":
		return NewTencentEngine(TencentConfig{
			SecretID:  cfg.Engine.Tencent.SecretID,
			SecretKey: cfg.Engine.Tencent.SecretKey,
			VoiceType: cfg.Engine.Tencent.VoiceType,
			Region:    cfg.Engine.Tencent.Region,
			Speed:     cfg.Engine.Tencent.Speed,
		})
	default:
		return nil, fmt.Errorf("[engine] 未知的引擎后端: %s", cfg.Engine.Backend)
	}
}
