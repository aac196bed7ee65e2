// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	// DefaultBodyChunkSize is the size of the in-memory pieces a request
	// body is read into.
	DefaultBodyChunkSize = 8 << 10

	// DefaultMaxMemoryBody is how much of a request body is kept in memory
	// before the remainder is spilled to a temporary file.
	DefaultMaxMemoryBody = 1 << 20
)

var chunkPool = sync.Pool{
	New: func() any {
		b := make([]byte, DefaultBodyChunkSize)
		return &b
	},
}

// Segment is one piece of a request body, either held in memory or
// spilled to a temporary file.
type Segment struct {
	// Data holds the bytes of an in-memory segment.
	Data []byte

	// File is the path of a spilled segment, empty for in-memory ones.
	File string

	// Size is the length of the segment in bytes. For a spilled segment
	// it counts what was written to File, not the rest of the body.
	Size int64
}

// InMemory reports whether the segment's bytes are in Data.
func (s Segment) InMemory() bool {
	return s.File == ""
}

// Message is a request body ready to be produced.
type Message struct {
	// Value is the contiguous body.
	Value []byte

	// Borrowed is set when Value aliases a buffer the request still owns,
	// so producing it requires a copy.
	Borrowed bool

	// ContentType is the request's Content-Type, used by the wrp envelope.
	ContentType string
}

// Aggregate joins the in-memory segments of a body into one Message.
//
//   - No segments give an empty Message.
//   - A single in-memory segment is reused without copying.
//   - Several in-memory segments are copied, in order, into one buffer.
//   - Any file segment fails with ErrBodyInFile and no Message.
func Aggregate(segs []Segment) (Message, error) {
	if len(segs) == 0 {
		return Message{}, nil
	}

	var total int
	for i, s := range segs {
		if !s.InMemory() {
			return Message{}, errors.Join(ErrBodyInFile,
				fmt.Errorf("segment %d of %d (%d bytes) is in file %s", i+1, len(segs), s.Size, s.File))
		}
		total += len(s.Data)
	}

	if len(segs) == 1 {
		return Message{Value: segs[0].Data, Borrowed: true}, nil
	}

	buf := make([]byte, 0, total)
	for _, s := range segs {
		buf = append(buf, s.Data...)
	}
	return Message{Value: buf}, nil
}

// body is a request body read into segments. release must be called once
// the segments are no longer needed.
type body struct {
	segs   []Segment
	chunks []*[]byte
}

// readBody reads r into chunks of chunkSize bytes. Once memLimit bytes are
// held in memory at most one more chunk of r goes to a temporary file in
// tempDir and the rest of r is left unread.
func readBody(r io.Reader, chunkSize, memLimit int, tempDir string) (*body, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultBodyChunkSize
	}
	if memLimit <= 0 {
		memLimit = DefaultMaxMemoryBody
	}

	var b body
	var inMemory int
	for inMemory < memLimit {
		chunk := b.chunk(chunkSize)
		want := min(chunkSize, memLimit-inMemory)

		n, err := io.ReadFull(r, (*chunk)[:want])
		if n > 0 {
			b.segs = append(b.segs, Segment{Data: (*chunk)[:n], Size: int64(n)})
			inMemory += n
		}

		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return &b, nil
		case err != nil:
			b.release()
			return nil, err
		}
	}

	if err := b.spill(r, int64(chunkSize), tempDir); err != nil {
		b.release()
		return nil, err
	}
	return &b, nil
}

// chunk takes a buffer of at least size bytes, pooled when size is the default.
func (b *body) chunk(size int) *[]byte {
	var buf *[]byte
	if size == DefaultBodyChunkSize {
		buf = chunkPool.Get().(*[]byte)
	} else {
		s := make([]byte, size)
		buf = &s
	}
	b.chunks = append(b.chunks, buf)
	return buf
}

// spill copies up to limit more bytes of r into a temporary file segment.
// A file segment is never produced, so the segment only marks that the body
// went past memory. Nothing is added when r is already exhausted.
func (b *body) spill(r io.Reader, limit int64, tempDir string) error {
	f, err := os.CreateTemp(tempDir, "httpkafka-body-*")
	if err != nil {
		return fmt.Errorf("creating body spill file: %w", err)
	}

	n, err := io.CopyN(f, r, limit)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil || n == 0 {
		_ = os.Remove(f.Name())
		return err
	}

	b.segs = append(b.segs, Segment{File: f.Name(), Size: n})
	return nil
}

// release returns pooled chunks and removes spill files.
func (b *body) release() {
	for _, s := range b.segs {
		if !s.InMemory() {
			_ = os.Remove(s.File)
		}
	}
	for _, c := range b.chunks {
		if len(*c) == DefaultBodyChunkSize {
			chunkPool.Put(c)
		}
	}
	b.segs, b.chunks = nil, nil
}
