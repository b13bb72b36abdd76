// voices 列出平台当前安装的合成语音。
// 提供任意非空参数即列出；错误红字打印到 stderr 并正常退出。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/whuanle/maomitts/internal/config"
	"github.com/whuanle/maomitts/internal/engine"
)

func main() {
	configPath := flag.String("config", "configs/maomitts.yaml", "配置文件路径")
	flag.Parse()

	if flag.Arg(0) == "" {
		fmt.Println("用法: voices [-config 路径] list")
		return
	}

	if err := run(*configPath); err != nil {
		// 出错只提示，不以失败状态退出
		fmt.Fprintf(os.Stderr, "\033[31m%v\033[0m\n", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		// 没有配置文件时用默认配置（系统引擎）
		cfg = config.Default()
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	voices, err := eng.Voices(context.Background())
	if err != nil {
		return err
	}

	fmt.Print(formatVoices(voices))
	return nil
}

// rule 是语音块之间的分隔线。
var rule = strings.Repeat("-", 40)

// formatVoices 按平台返回的顺序把语音列表排版成文本块。
func formatVoices(voices []engine.Voice) string {
	var b strings.Builder
	for _, v := range voices {
		fmt.Fprintf(&b, "名称:   %s\n", v.Name)
		fmt.Fprintf(&b, "启用:   %v\n", v.Enabled)
		fmt.Fprintf(&b, "文化:   %s\n", v.Culture)
		fmt.Fprintf(&b, "年龄:   %s\n", v.Age)
		fmt.Fprintf(&b, "性别:   %s\n", v.Gender)
		fmt.Fprintf(&b, "描述:   %s\n", v.Description)
		fmt.Fprintf(&b, "ID:     %s\n", v.ID)
		fmt.Fprintln(&b, rule)
	}
	return b.String()
}
