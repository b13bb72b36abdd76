package audio

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"
)

func TestEncodeWav_Header(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1.0}
	data, err := EncodeWav(samples, 16000, DefaultFormat())
	if err != nil {
		t.Fatalf("EncodeWav failed: %v", err)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(len(data)-8) {
		t.Errorf("RIFF size: got %d, want %d", got, len(data)-8)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Errorf("channels: got %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 16000 {
		t.Errorf("sample rate: got %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("bits: got %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data size: got %d, want %d", got, len(samples)*2)
	}
}

func TestEncodeWav_ResamplesToFormat(t *testing.T) {
	// 22050 Hz 输入按默认格式（16000 Hz）输出，样本数应随之缩减
	samples := make([]float32, 22050)
	data, err := EncodeWav(samples, 22050, DefaultFormat())
	if err != nil {
		t.Fatalf("EncodeWav failed: %v", err)
	}
	dataLen := int(binary.LittleEndian.Uint32(data[40:44]))
	if dataLen != 16000*2 {
		t.Errorf("resampled data size: got %d, want %d", dataLen, 16000*2)
	}
}

func TestEncodeWav_Stereo(t *testing.T) {
	samples := []float32{0.5}
	data, err := EncodeWav(samples, 16000, Format{SampleRate: 16000, Bits: 16, Channels: 2})
	if err != nil {
		t.Fatalf("EncodeWav failed: %v", err)
	}
	// 双声道应复制同一路样本
	left := int16(binary.LittleEndian.Uint16(data[44:46]))
	right := int16(binary.LittleEndian.Uint16(data[46:48]))
	if left != right {
		t.Errorf("stereo channels differ: %d vs %d", left, right)
	}
}

func TestEncodeWav_BadFormat(t *testing.T) {
	if _, err := EncodeWav(nil, 16000, Format{SampleRate: 16000, Bits: 24, Channels: 1}); err == nil {
		t.Error("expected error for 24-bit format")
	}
	if _, err := EncodeWav(nil, 16000, Format{SampleRate: 0, Bits: 16, Channels: 1}); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestWavRoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.5, -0.5}
	f := Format{SampleRate: 16000, Bits: 16, Channels: 1}
	data, err := EncodeWav(in, 16000, f)
	if err != nil {
		t.Fatalf("EncodeWav failed: %v", err)
	}

	out, rate, err := DecodeWav(data)
	if err != nil {
		t.Fatalf("DecodeWav failed: %v", err)
	}
	if rate != 16000 {
		t.Errorf("sample rate: got %d, want 16000", rate)
	}
	if len(out) != len(in) {
		t.Fatalf("length: got %d, want %d", len(out), len(in))
	}
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 1e-3 {
			t.Errorf("sample %d: got %f, want %f", i, out[i], in[i])
		}
	}
}

func TestDecodeWav_NotWav(t *testing.T) {
	if _, _, err := DecodeWav([]byte("definitely not a wav file")); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestDecodeWav_StreamedLength(t *testing.T) {
	// 流式写出的 data 块长度字段可能为 0xFFFFFFFF，应按实际字节处理
	in := []float32{0.1, 0.2, 0.3, 0.4}
	data, err := EncodeWav(in, 16000, Format{SampleRate: 16000, Bits: 16, Channels: 1})
	if err != nil {
		t.Fatalf("EncodeWav failed: %v", err)
	}
	binary.LittleEndian.PutUint32(data[40:44], 0xFFFFFFFF)

	out, _, err := DecodeWav(data)
	if err != nil {
		t.Fatalf("DecodeWav failed: %v", err)
	}
	if len(out) != len(in) {
		t.Errorf("length: got %d, want %d", len(out), len(in))
	}
}

func TestWriteAndReadWavFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	in := []float32{0.5, -0.5}
	if err := WriteWavFile(path, in, 16000, DefaultFormat()); err != nil {
		t.Fatalf("WriteWavFile failed: %v", err)
	}

	out, rate, err := ReadWavFile(path)
	if err != nil {
		t.Fatalf("ReadWavFile failed: %v", err)
	}
	if rate != 16000 || len(out) != 2 {
		t.Errorf("got rate=%d len=%d, want rate=16000 len=2", rate, len(out))
	}
}
