// Package codec 实现网关帧的压缩和编解码
// 帧格式：raw DEFLATE 压缩的 JSON {"type": ..., "data": ...}
package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// MaxDecodedSize 单帧解压后的上限
const MaxDecodedSize = 1 << 20

var writerPool = sync.Pool{
	New: func() any {
		w, _ := flate.NewWriter(nil, flate.DefaultCompression)
		return w
	},
}

// Compress raw DEFLATE 压缩，无 zlib/gzip 头
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := writerPool.Get().(*flate.Writer)
	defer writerPool.Put(w)
	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress 解压 raw DEFLATE 数据
// 数据损坏或解压后超过 MaxDecodedSize 返回 ErrMalformedFrame
func Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return readLimited(r)
}

func readLimited(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxDecodedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if len(out) > MaxDecodedSize {
		return nil, fmt.Errorf("%w: decoded size exceeds %d bytes", ErrMalformedFrame, MaxDecodedSize)
	}
	return out, nil
}

// DecodeZlibJSON 解析 zlib 压缩的 JSON 请求体
func DecodeZlibJSON(body io.Reader, v any) error {
	r, err := zlib.NewReader(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	defer r.Close()

	raw, err := readLimited(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
