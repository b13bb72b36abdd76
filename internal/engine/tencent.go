package engine

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tencenttts "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tts/v20190823"

	"github.com/whuanle/maomitts/internal/logger"
)

// TencentEngine 使用腾讯云 TTS 实现语音合成。
// 适用于中国大陆网络环境，支持多种中文音色。
type TencentEngine struct {
	client    *tencenttts.Client
	voiceType int64
	speed     float64
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string
	SecretKey string
	VoiceType int64
	Region    string
	Speed     float64
}

// tencentVoices 是腾讯云 TTS 的常用音色表，ID 为音色编号。
var tencentVoices = []Voice{
	{Name: "智瑜", Culture: "zh-CN", Age: "Adult", Gender: "Female", Description: "情感女声", ID: "1001", Enabled: true},
	{Name: "智聆", Culture: "zh-CN", Age: "Adult", Gender: "Female", Description: "通用女声", ID: "1002", Enabled: true},
	{Name: "智美", Culture: "zh-CN", Age: "Adult", Gender: "Female", Description: "客服女声", ID: "1003", Enabled: true},
	{Name: "智云", Culture: "zh-CN", Age: "Adult", Gender: "Male", Description: "通用男声", ID: "1004", Enabled: true},
	{Name: "智华", Culture: "zh-CN", Age: "Adult", Gender: "Male", Description: "聊天男声", ID: "1017", Enabled: true},
	{Name: "WeJack", Culture: "en-US", Age: "Adult", Gender: "Male", Description: "英文男声", ID: "1050", Enabled: true},
	{Name: "WeRose", Culture: "en-US", Age: "Adult", Gender: "Female", Description: "英文女声", ID: "1051", Enabled: true},
}

// NewTencentEngine 创建腾讯云 TTS 引擎。
func NewTencentEngine(cfg TencentConfig) (*TencentEngine, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("[engine] 腾讯云 TTS 需要 SecretID 和 SecretKey")
	}

	if cfg.VoiceType == 0 {
		cfg.VoiceType = 1001 // 默认音色：智瑜（女声）
	}
	if cfg.Region == "" {
		cfg.Region = "ap-guangzhou"
	}

	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tts.tencentcloudapi.com"

	client, err := tencenttts.NewClient(credential, cfg.Region, cpf)
	if err != nil {
		return nil, fmt.Errorf("[engine] 创建腾讯云 TTS 客户端失败: %w", err)
	}

	logger.Infof("[engine] 腾讯云 TTS 引擎已初始化 (voice=%d, region=%s)", cfg.VoiceType, cfg.Region)

	return &TencentEngine{
		client:    client,
		voiceType: cfg.VoiceType,
		speed:     cfg.Speed,
	}, nil
}

// Name 返回后端名称。
func (e *TencentEngine) Name() string { return "tencent" }

// Voices 返回内置的腾讯云音色表。
func (e *TencentEngine) Voices(ctx context.Context) ([]Voice, error) {
	out := make([]Voice, len(tencentVoices))
	copy(out, tencentVoices)
	return out, nil
}

// rateToTencentSpeed 把 -10..10 的语速档位换算为腾讯云 Speed 参数（-2 到 6）。
func rateToTencentSpeed(rate int) float64 {
	speed := float64(rate) / 2.0
	if speed < -2 {
		speed = -2
	} else if speed > 6 {
		speed = 6
	}
	return speed
}

// Synthesize 将文本合成为单声道 float32 音频样本。
// 腾讯云 TTS 返回 MP3 格式，解码路径与 Edge 后端共用。
func (e *TencentEngine) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	voiceType := e.voiceType
	if req.Voice != "" {
		// 允许用音色名称覆盖配置里的音色编号
		found := false
		for _, v := range tencentVoices {
			if v.Name == req.Voice || v.ID == req.Voice {
				fmt.Sscanf(v.ID, "%d", &voiceType)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("[engine] 腾讯云 TTS 不存在音色: %s", req.Voice)
		}
	}

	logger.Debugf("[engine] 腾讯云 TTS: 正在合成 %d 个字符，音色=%d", len([]rune(req.Text)), voiceType)

	speed := e.speed
	if req.Rate != 0 {
		speed = rateToTencentSpeed(req.Rate)
	}

	request := tencenttts.NewTextToVoiceRequest()
	request.Text = common.StringPtr(req.Text)
	request.VoiceType = common.Int64Ptr(voiceType)
	request.Codec = common.StringPtr("mp3")
	request.Speed = common.Float64Ptr(speed)
	request.Volume = common.Float64Ptr(5.0)

	response, err := e.client.TextToVoice(request)
	if err != nil {
		return nil, fmt.Errorf("[engine] 腾讯云 TTS 合成失败: %w", err)
	}

	if response.Response == nil || response.Response.Audio == nil {
		return nil, fmt.Errorf("[engine] 腾讯云 TTS: 未返回音频数据")
	}

	mp3Data, err := base64.StdEncoding.DecodeString(*response.Response.Audio)
	if err != nil {
		return nil, fmt.Errorf("[engine] Base64 解码失败: %w", err)
	}

	samples, sampleRate, err := decodeMp3Mono(mp3Data)
	if err != nil {
		return nil, fmt.Errorf("[engine] 腾讯云 TTS: %w", err)
	}
	return &Audio{Samples: samples, SampleRate: sampleRate}, nil
}
