package compare

import "encoding/binary"

// FrameHeaderSize is the size of the big-endian length prefix of a frame.
const FrameHeaderSize = 4

// Buffer is a caller-owned cursor over encoded bytes. Stream comparators
// read frames at the current position and advance it; the comparator itself
// keeps no position.
//
// A Buffer is not safe for concurrent use. Each sort/merge worker owns its
// buffers.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer creates a buffer positioned at the start of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the whole underlying slice.
func (b *Buffer) Bytes() []byte { return b.data }

// Position returns the cursor offset.
func (b *Buffer) Position() int { return b.pos }

// Remaining returns the number of bytes after the cursor.
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// Skip advances the cursor by n bytes.
func (b *Buffer) Skip(n int) { b.pos += n }

// Seek moves the cursor to an absolute offset.
func (b *Buffer) Seek(pos int) { b.pos = pos }

// Reset points the buffer at new data and rewinds the cursor.
func (b *Buffer) Reset(data []byte) {
	b.data = data
	b.pos = 0
}

// FrameLen decodes the length prefix at off. It does not bounds-check.
func FrameLen(data []byte, off int) int {
	return int(uint32(data[off])<<24 | uint32(data[off+1])<<16 | uint32(data[off+2])<<8 | uint32(data[off+3]))
}

// AppendFrame appends payload to dst as one length-prefixed frame.
func AppendFrame(dst, payload []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...)
}

// AppendString appends s to dst as one length-prefixed frame.
func AppendString(dst []byte, s string) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}

// Frames encodes payloads back to back.
func Frames(payloads ...[]byte) []byte {
	size := 0
	for _, p := range payloads {
		size += FrameHeaderSize + len(p)
	}
	out := make([]byte, 0, size)
	for _, p := range payloads {
		out = AppendFrame(out, p)
	}
	return out
}

// ReadFrame returns the payload of the frame at the cursor and advances past
// it. Like the comparators it trusts the framing.
func (b *Buffer) ReadFrame() []byte {
	n := FrameLen(b.data, b.pos)
	start := b.pos + FrameHeaderSize
	b.pos = start + n
	return b.data[start:b.pos:b.pos]
}
