package codec

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sync"

	"github.com/go-logr/logr"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/util"
)

// Encoder writes packet frames for the Minecraft Java edition.
// It is synchronized; WritePacket and the Set* methods may be
// called from different goroutines.
type Encoder struct {
	log logr.Logger

	mu          sync.Mutex // protects following fields
	wr          io.Writer  // the underlying writer successfully encoded frames go to
	compression struct {
		enabled   bool
		threshold int
		writer    *zlib.Writer
	}
}

// NewEncoder returns a new packet frame encoder writing to w.
func NewEncoder(w io.Writer, log logr.Logger) *Encoder {
	e := &Encoder{
		log: log.WithName("encoder"),
		wr:  w,
	}
	e.compression.threshold = -1
	return e
}

// SetWriter swaps the underlying writer.
// Frames written afterwards go to w.
func (e *Encoder) SetWriter(w io.Writer) {
	e.mu.Lock()
	e.wr = w
	e.mu.Unlock()
}

// SetCompressionThreshold enables the compressed frame layout for
// threshold >= 0 and disables it for negative thresholds.
// The zlib level must be valid per compress/zlib.
func (e *Encoder) SetCompressionThreshold(threshold, level int) (err error) {
	e.mu.Lock()
	e.compression.threshold = threshold
	e.compression.enabled = threshold >= 0
	if e.compression.enabled {
		e.compression.writer, err = zlib.NewWriterLevel(nil, level)
	}
	e.mu.Unlock()
	return
}

// CompressionThreshold returns the current compression threshold.
func (e *Encoder) CompressionThreshold() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compression.threshold
}

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// WritePacket serializes p and writes it framed to the underlying writer,
// using the compressed layout if compression is enabled.
func (e *Encoder) WritePacket(p proto.Outbound) (n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	buf := bufPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufPool.Put(buf)
	}()

	_ = util.WriteVarInt(buf, int(p.ID()))
	if err = p.Encode(buf); err != nil {
		return 0, err
	}

	if e.log.Enabled() {
		e.log.Info("encoded packet", "packetID", p.ID(), "type", typeName(p), "bytes", buf.Len())
	}
	return e.writeBuf(buf) // packet id + data
}

// see https://wiki.vg/Protocol#Packet_format for details
func (e *Encoder) writeBuf(payload *bytes.Buffer) (n int, err error) {
	if e.compression.enabled {
		return e.writeCompressed(payload)
	}
	n, err = util.WriteVarIntN(e.wr, payload.Len()) // frame length
	if err != nil {
		return n, err
	}
	m, err := payload.WriteTo(e.wr) // id + body
	return n + int(m), err
}

func (e *Encoder) writeCompressed(payload *bytes.Buffer) (n int, err error) {
	uncompressedSize := payload.Len()
	if uncompressedSize < e.compression.threshold {
		// Under the threshold, sent uncompressed with data length 0.
		n, err = util.WriteVarIntN(e.wr, uncompressedSize+1) // frame length
		if err != nil {
			return n, err
		}
		n2, err := util.WriteVarIntN(e.wr, 0) // indicate not compressed
		if err != nil {
			return n + n2, err
		}
		n3, err := payload.WriteTo(e.wr) // id + body
		return n + n2 + int(n3), err
	}
	// >= threshold, compress packet id + data

	compressed := bufPool.Get().(*bytes.Buffer)
	defer func() {
		compressed.Reset()
		bufPool.Put(compressed)
	}()

	if err = util.WriteVarInt(compressed, uncompressedSize); err != nil { // data length
		return 0, err
	}
	if err = e.compress(payload.Bytes(), compressed); err != nil {
		return 0, err
	}
	n, err = util.WriteVarIntN(e.wr, compressed.Len()) // frame length
	if err != nil {
		return n, err
	}
	m, err := compressed.WriteTo(e.wr) // data length + zlib stream
	return n + int(m), err
}

func (e *Encoder) compress(payload []byte, w io.Writer) error {
	e.compression.writer.Reset(w)
	if _, err := e.compression.writer.Write(payload); err != nil {
		return err
	}
	return e.compression.writer.Close()
}

// Sync locks the encoder while running fn, making sure no
// frame writes interleave with this call (e.g. buffer flushes).
func (e *Encoder) Sync(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn()
}

func typeName(p any) string { return fmt.Sprintf("%T", p) }
