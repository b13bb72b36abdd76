package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Format 描述 WAV 输出的音频格式。
type Format struct {
	SampleRate int // 采样率（Hz）
	Bits       int // 位深，支持 8 或 16
	Channels   int // 声道数
}

// DefaultFormat 返回默认输出格式：16kHz、16 位、单声道。
func DefaultFormat() Format {
	return Format{SampleRate: 16000, Bits: 16, Channels: 1}
}

// EncodeWav 将单声道 float32 样本编码为 WAV 文件内容。
// 采样率不一致时先重采样；多声道输出为各声道复制同一路样本。
func EncodeWav(samples []float32, sampleRate int, f Format) ([]byte, error) {
	if f.SampleRate <= 0 || f.Channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("非法音频格式: %+v (输入采样率 %d)", f, sampleRate)
	}
	if f.Bits != 8 && f.Bits != 16 {
		return nil, fmt.Errorf("不支持的位深: %d", f.Bits)
	}

	samples = Resample(samples, sampleRate, f.SampleRate)

	bytesPerSample := f.Bits / 8
	dataLen := len(samples) * f.Channels * bytesPerSample
	buf := make([]byte, 44+dataLen)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(f.SampleRate*f.Channels*bytesPerSample))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(f.Channels*bytesPerSample))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(f.Bits))

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	pos := 44
	for _, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		for c := 0; c < f.Channels; c++ {
			switch f.Bits {
			case 8:
				// 8 位 WAV 使用无符号样本，静音为 128
				buf[pos] = byte(int(s*127) + 128)
				pos++
			case 16:
				v := int16(s * 32767)
				binary.LittleEndian.PutUint16(buf[pos:pos+2], uint16(v))
				pos += 2
			}
		}
	}

	return buf, nil
}

// WriteWavFile 将样本按指定格式写入 WAV 文件。
func WriteWavFile(path string, samples []float32, sampleRate int, f Format) error {
	data, err := EncodeWav(samples, sampleRate, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入 WAV 文件 %s 失败: %w", path, err)
	}
	return nil
}

// DecodeWav 解析 WAV 文件内容，返回单声道 float32 样本和采样率。
// 仅支持 16 位 PCM；多声道取各声道平均值混合为单声道。
// data 块长度字段为 0 或溢出时（流式输出常见）按实际剩余字节处理。
func DecodeWav(data []byte) ([]float32, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("不是有效的 WAV 数据")
	}

	var (
		sampleRate int
		channels   int
		bits       int
		pcm        []byte
	)

	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := data[pos+8:]
		if size < 0 || size > len(body) {
			// 流式写出的长度字段不可信，取剩余全部
			size = len(body)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("fmt 块过短: %d 字节", size)
			}
			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			if audioFormat != 1 {
				return nil, 0, fmt.Errorf("不支持的编码格式: %d（仅支持 PCM）", audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits = int(binary.LittleEndian.Uint16(body[14:16]))
		case "data":
			pcm = body[:size]
		}

		// 块按 2 字节对齐
		pos += 8 + size
		if size%2 == 1 {
			pos++
		}
	}

	if sampleRate == 0 || channels == 0 {
		return nil, 0, fmt.Errorf("WAV 数据缺少 fmt 块")
	}
	if bits != 16 {
		return nil, 0, fmt.Errorf("不支持的位深: %d（仅支持 16 位）", bits)
	}
	if len(pcm) == 0 {
		return nil, 0, fmt.Errorf("WAV 数据缺少 data 块")
	}

	frameSize := channels * 2
	numFrames := len(pcm) / frameSize
	samples := make([]float32, numFrames)
	for i := 0; i < numFrames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			off := i*frameSize + c*2
			sum += float32(int16(binary.LittleEndian.Uint16(pcm[off : off+2])))
		}
		samples[i] = sum / float32(channels) / 32768.0
	}

	return samples, sampleRate, nil
}

// ReadWavFile 读取并解析 WAV 文件。
func ReadWavFile(path string) ([]float32, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("读取 WAV 文件 %s 失败: %w", path, err)
	}
	return DecodeWav(data)
}
