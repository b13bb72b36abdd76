// Package speech 是语音合成门面：把引擎合成、音量处理、
// 设备播放和 WAV 输出组合成同步、异步和标记朗读操作。
package speech

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/whuanle/maomitts/internal/audio"
	"github.com/whuanle/maomitts/internal/cache"
	"github.com/whuanle/maomitts/internal/engine"
	"github.com/whuanle/maomitts/internal/logger"
	"github.com/whuanle/maomitts/internal/ssml"
)

// Sink 是播放输出设备。audio.Player 实现了该接口。
type Sink interface {
	Play(ctx context.Context, samples []float32, sampleRate int) error
}

// Options 单次朗读的可选参数。
// Rate 为 0、Volume 不大于 0、Language 为空时回落到 Speaker 的默认值。
type Options struct {
	Rate     int
	Volume   int
	Language string
}

// Config Speaker 的默认参数。
type Config struct {
	Voice       string
	Language    string
	Rate        int
	Volume      int
	WaitTimeout time.Duration // Wait 的超时时限，0 表示不限时
	Cache       *cache.Cache  // 合成缓存，nil 表示不缓存
}

// Speaker 持有一个合成引擎和一个输出设备。
// 任何新的朗读操作都会先取消当前在播的内容；
// 当前语音和在播取消函数是仅有的共享可变状态，由互斥锁保护。
type Speaker struct {
	eng         engine.Engine
	sink        Sink
	cache       *cache.Cache
	waitTimeout time.Duration

	mu       sync.Mutex
	voice    string
	language string
	rate     int
	volume   int
	current  *Playback
	cancel   context.CancelFunc
}

// New 创建语音门面。
func New(eng engine.Engine, sink Sink, cfg Config) *Speaker {
	volume := cfg.Volume
	if volume <= 0 {
		volume = 100
	}
	return &Speaker{
		eng:         eng,
		sink:        sink,
		cache:       cfg.Cache,
		waitTimeout: cfg.WaitTimeout,
		voice:       cfg.Voice,
		language:    cfg.Language,
		rate:        cfg.Rate,
		volume:      ClampVolume(volume),
	}
}

// ClampVolume 把音量截断到不超过 100。低于 100 的值原样通过。
func ClampVolume(v int) int {
	if v > 100 {
		return 100
	}
	return v
}

// Voices 返回引擎报告的语音列表，不做任何加工。
func (s *Speaker) Voices(ctx context.Context) ([]engine.Voice, error) {
	return s.eng.Voices(ctx)
}

// SelectVoice 按名称精确匹配设置当前语音，无匹配时报错。
func (s *Speaker) SelectVoice(ctx context.Context, name string) error {
	voices, err := s.eng.Voices(ctx)
	if err != nil {
		return fmt.Errorf("[speech] 枚举语音失败: %w", err)
	}
	for _, v := range voices {
		if v.Name == name {
			s.mu.Lock()
			s.voice = name
			s.mu.Unlock()
			logger.Infof("[speech] 已选择语音: %s", name)
			return nil
		}
	}
	return fmt.Errorf("[speech] 未安装名为 %s 的语音", name)
}

// CancelAll 取消当前在播的朗读。
func (s *Speaker) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Speak 朗读文本并阻塞到默认输出设备播放完毕。
func (s *Speaker) Speak(ctx context.Context, text string, opts Options) error {
	return s.SpeakAsync(text, opts).Wait(ctx)
}

// SpeakAsync 启动朗读并立即返回播放句柄。
// 播放在后台进行，不随调用方的 context 取消。
func (s *Speaker) SpeakAsync(text string, opts Options) *Playback {
	req, volume := s.fill(text, opts)
	return s.start(s.textSynth(req), volume)
}

// SpeakSsml 朗读 SSML 标记文档并阻塞到播放完毕。
func (s *Speaker) SpeakSsml(ctx context.Context, doc string) error {
	return s.SpeakSsmlAsync(doc).Wait(ctx)
}

// SpeakSsmlAsync 启动 SSML 标记朗读并立即返回播放句柄。
// 引擎不支持 SSML 时句柄立即以错误完成。
func (s *Speaker) SpeakSsmlAsync(doc string) *Playback {
	syn, ok := s.eng.(engine.SsmlSynthesizer)
	if !ok {
		p := newPlayback(func() {}, s.waitTimeout)
		p.finish(fmt.Errorf("[speech] 引擎 %s 不支持 SSML 合成", s.eng.Name()))
		return p
	}
	volume := s.currentVolume()
	return s.start(func(ctx context.Context) (*engine.Audio, error) {
		return syn.SynthesizeSsml(ctx, doc)
	}, volume)
}

// SpeakAnnotated 为单段文本构造注音标记后朗读。
// 文本同时作为注音内容和朗读文本，pause 为停顿时长（毫秒）。
func (s *Speaker) SpeakAnnotated(ctx context.Context, text string, pause int) error {
	return s.SpeakAnnotatedAsync(text, pause).Wait(ctx)
}

// SpeakAnnotatedAsync 是 SpeakAnnotated 的非阻塞版本。
func (s *Speaker) SpeakAnnotatedAsync(text string, pause int) *Playback {
	return s.SpeakSsmlAsync(ssml.Document(ssml.PhonemeSpan(text, pause)))
}

// SpeakSegments 把有序段落逐段注音后用当前语音朗读，
// 每段之后停顿 pause 毫秒。
func (s *Speaker) SpeakSegments(ctx context.Context, segments []string, pause int) error {
	return s.SpeakSegmentsAsync(segments, pause).Wait(ctx)
}

// SpeakSegmentsAsync 是 SpeakSegments 的非阻塞版本。
func (s *Speaker) SpeakSegmentsAsync(segments []string, pause int) *Playback {
	s.mu.Lock()
	voice := s.voice
	s.mu.Unlock()
	return s.SpeakSsmlAsync(ssml.PhonemeDocument(voice, segments, pause))
}

// SpeakToWav 把文本合成结果写入 WAV 文件而不是播放。
// format 为 nil 时使用默认格式（16kHz、16 位、单声道）。
func (s *Speaker) SpeakToWav(ctx context.Context, text, path string, opts Options, format *audio.Format) error {
	s.CancelAll()

	req, volume := s.fill(text, opts)
	a, err := s.textSynth(req)(ctx)
	if err != nil {
		return err
	}

	f := audio.DefaultFormat()
	if format != nil {
		f = *format
	}

	samples := audio.ApplyGain(a.Samples, volume)
	if err := audio.WriteWavFile(path, samples, a.SampleRate, f); err != nil {
		return fmt.Errorf("[speech] 渲染到 %s 失败: %w", path, err)
	}
	logger.Infof("[speech] 已渲染 %d 个样本到 %s", len(samples), path)
	return nil
}

// fill 用 Speaker 默认值补全单次调用参数，并截断音量。
func (s *Speaker) fill(text string, opts Options) (engine.Request, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rate := opts.Rate
	if rate == 0 {
		rate = s.rate
	}
	volume := opts.Volume
	if volume <= 0 {
		volume = s.volume
	}
	language := opts.Language
	if language == "" {
		language = s.language
	}

	return engine.Request{
		Text:     text,
		Voice:    s.voice,
		Rate:     rate,
		Language: language,
	}, ClampVolume(volume)
}

func (s *Speaker) currentVolume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// textSynth 返回带缓存的文本合成函数。
func (s *Speaker) textSynth(req engine.Request) func(context.Context) (*engine.Audio, error) {
	return func(ctx context.Context) (*engine.Audio, error) {
		var key string
		if s.cache != nil {
			key = s.cache.Key(s.eng.Name(), req.Voice, req.Rate, req.Language, req.Text)
			if samples, rate, ok := s.cache.Lookup(key); ok {
				logger.Debugf("[speech] 缓存命中: %s", key)
				return &engine.Audio{Samples: samples, SampleRate: rate}, nil
			}
		}

		a, err := s.eng.Synthesize(ctx, req)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.Store(key, a.Samples, a.SampleRate); err != nil {
				logger.Warnf("[speech] 写入缓存失败: %v", err)
			}
		}
		return a, nil
	}
}

// start 取消在播内容后启动一次合成播放。
// 同步、异步和标记朗读都经由这一条路径。
func (s *Speaker) start(synth func(context.Context) (*engine.Audio, error), volume int) *Playback {
	runCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	p := newPlayback(cancel, s.waitTimeout)
	s.current = p
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			s.mu.Lock()
			if s.current == p {
				s.current = nil
				s.cancel = nil
			}
			s.mu.Unlock()
		}()

		a, err := synth(runCtx)
		if err != nil {
			p.finish(err)
			return
		}
		samples := audio.ApplyGain(a.Samples, volume)
		p.finish(s.sink.Play(runCtx, samples, a.SampleRate))
	}()

	return p
}
