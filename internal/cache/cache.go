// Package cache 提供合成结果的本地缓存：
// 音频以 WAV 文件存放，索引记录在 SQLite 中。
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/whuanle/maomitts/internal/audio"
	"github.com/whuanle/maomitts/internal/logger"
)

// Cache 管理合成音频的文件缓存和 SQLite 索引。
type Cache struct {
	db  *sql.DB
	dir string
}

// Open 打开或创建缓存。
// dir 为缓存目录，为空则使用 ~/.maomitts/cache。
func Open(dir string) (*Cache, error) {
	if dir == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			dir = filepath.Join(home, ".maomitts", "cache")
		} else {
			dir = "./maomitts-cache"
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建缓存目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("打开缓存索引失败: %w", err)
	}

	// WAL 模式下并发读写更稳
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("设置 WAL 模式失败: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		sample_rate INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("创建缓存索引表失败: %w", err)
	}

	logger.Infof("[cache] 合成缓存已打开: %s", dir)
	return &Cache{db: db, dir: dir}, nil
}

// Key 根据引擎、语音、语速、语言和文本计算缓存键。
func (c *Cache) Key(engineName, voice string, rate int, language, text string) string {
	h := sha256.New()
	for _, part := range []string{engineName, voice, strconv.Itoa(rate), language, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) filePath(key string) string {
	return filepath.Join(c.dir, key+".wav")
}

// Lookup 查找缓存，命中时返回样本和采样率。
// 索引存在但文件缺失视为未命中。
func (c *Cache) Lookup(key string) ([]float32, int, bool) {
	var sampleRate int
	err := c.db.QueryRow("SELECT sample_rate FROM entries WHERE key = ?", key).Scan(&sampleRate)
	if err != nil {
		return nil, 0, false
	}

	samples, rate, err := audio.ReadWavFile(c.filePath(key))
	if err != nil {
		logger.Warnf("[cache] 缓存文件读取失败（按未命中处理）: %v", err)
		return nil, 0, false
	}

	if _, err := c.db.Exec("UPDATE entries SET last_used = CURRENT_TIMESTAMP WHERE key = ?", key); err != nil {
		logger.Warnf("[cache] 更新 last_used 失败: %v", err)
	}
	return samples, rate, true
}

// Store 把合成结果写入缓存。
func (c *Cache) Store(key string, samples []float32, sampleRate int) error {
	path := c.filePath(key)
	f := audio.Format{SampleRate: sampleRate, Bits: 16, Channels: 1}
	if err := audio.WriteWavFile(path, samples, sampleRate, f); err != nil {
		return fmt.Errorf("写入缓存文件失败: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("读取缓存文件信息失败: %w", err)
	}

	if _, err := c.db.Exec(
		"INSERT OR REPLACE INTO entries (key, size, sample_rate) VALUES (?, ?, ?)",
		key, info.Size(), sampleRate,
	); err != nil {
		return fmt.Errorf("写入缓存索引失败: %w", err)
	}
	return nil
}

// Close 关闭缓存索引。
func (c *Cache) Close() error {
	return c.db.Close()
}
