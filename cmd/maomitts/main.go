// maomitts 朗读文本或把合成结果渲染为 WAV 文件。
//
// 示例:
//
//	maomitts -text "你好，世界"
//	maomitts -text "你好" -out hello.wav
//	maomitts -text "中国人" -annotate -pause 300
//	maomitts -ssml doc.xml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/whuanle/maomitts/internal/audio"
	"github.com/whuanle/maomitts/internal/cache"
	"github.com/whuanle/maomitts/internal/config"
	"github.com/whuanle/maomitts/internal/engine"
	"github.com/whuanle/maomitts/internal/logger"
	"github.com/whuanle/maomitts/internal/speech"
	"github.com/whuanle/maomitts/internal/ssml"
)

func main() {
	configPath := flag.String("config", "configs/maomitts.yaml", "配置文件路径")
	text := flag.String("text", "", "要朗读的文本")
	out := flag.String("out", "", "渲染为 WAV 文件的输出路径，为空则播放到默认输出设备")
	ssmlPath := flag.String("ssml", "", "要朗读的 SSML 文档路径")
	annotate := flag.Bool("annotate", false, "把中文文本逐字转拼音注音后朗读")
	pause := flag.Int("pause", 0, "注音朗读时每段之后的停顿（毫秒）")
	voice := flag.String("voice", "", "语音名称，覆盖配置中的默认语音")
	rate := flag.Int("rate", 0, "语速档位 -10..10")
	volume := flag.Int("volume", 0, "音量 0-100，超过 100 会被截断")
	flag.Parse()

	if *text == "" && *ssmlPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		// 没有配置文件时用默认配置（系统引擎）
		cfg = config.Default()
	}

	if err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，中断时停止朗读
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在停止...", sig)
		cancel()
	}()

	if err := run(ctx, cfg, options{
		text:     *text,
		out:      *out,
		ssmlPath: *ssmlPath,
		annotate: *annotate,
		pause:    *pause,
		voice:    *voice,
		rate:     *rate,
		volume:   *volume,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type options struct {
	text     string
	out      string
	ssmlPath string
	annotate bool
	pause    int
	voice    string
	rate     int
	volume   int
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	var synthCache *cache.Cache
	if cfg.Cache.Enabled {
		synthCache, err = cache.Open(cfg.Cache.Dir)
		if err != nil {
			logger.Warnf("[main] 打开合成缓存失败（禁用缓存）: %v", err)
		} else {
			defer synthCache.Close()
		}
	}

	var sink speech.Sink
	if opts.out == "" {
		player, err := audio.NewPlayer()
		if err != nil {
			return err
		}
		defer player.Close()
		sink = player
	} else {
		// 只渲染文件，不需要播放设备
		sink = nopSink{}
	}

	speaker := speech.New(eng, sink, speech.Config{
		Voice:       cfg.Speech.Voice,
		Language:    cfg.Speech.Language,
		Rate:        cfg.Speech.Rate,
		Volume:      cfg.Speech.Volume,
		WaitTimeout: time.Duration(cfg.Speech.WaitTimeoutSec) * time.Second,
		Cache:       synthCache,
	})
	defer speaker.CancelAll()

	if opts.voice != "" {
		if err := speaker.SelectVoice(ctx, opts.voice); err != nil {
			return err
		}
	}

	callOpts := speech.Options{Rate: opts.rate, Volume: opts.volume}

	switch {
	case opts.ssmlPath != "":
		doc, err := os.ReadFile(opts.ssmlPath)
		if err != nil {
			return fmt.Errorf("读取 SSML 文档失败: %w", err)
		}
		return speaker.SpeakSsml(ctx, string(doc))
	case opts.out != "":
		return speaker.SpeakToWav(ctx, opts.text, opts.out, callOpts, nil)
	case opts.annotate:
		segments := ssml.PinyinSegments(opts.text)
		return speaker.SpeakSegments(ctx, segments, opts.pause)
	default:
		return speaker.Speak(ctx, opts.text, callOpts)
	}
}

// nopSink 在只渲染文件时充当占位输出设备。
type nopSink struct{}

func (nopSink) Play(ctx context.Context, samples []float32, sampleRate int) error { return nil }
