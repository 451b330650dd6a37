package codec

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-logr/logr"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/util"
)

// Frame is one length-prefixed unit read off the wire, decompressed if the
// frame used the compressed layout, with the packet ID already split off.
type Frame struct {
	PacketID proto.PacketID
	// Payload is the packet's body with length and ID stripped.
	Payload []byte
}

const (
	// MaxFrameLen is the maximum accepted declared frame length, 2^(21-1).
	MaxFrameLen = 1048576
	// UncompressedCap is the maximum accepted declared
	// uncompressed size of a compressed frame. (8MiB)
	UncompressedCap = 8 * 1024 * 1024

	maxEmptyFrames = 10
)

// Decoder reads packet frames for the Minecraft Java edition.
//
// A Decoder is driven by a single reader goroutine; the mutex only publishes
// reader and compression updates made from other goroutines, it is not held
// across blocking reads. A swapped reader (EnableEncryption) or threshold is
// guaranteed to be observed at the next frame boundary.
type Decoder struct {
	log logr.Logger

	mu                   sync.Mutex // protects following fields
	rd                   io.Reader
	compression          bool
	compressionThreshold int

	zrd io.ReadCloser // reused zlib reader, reader-goroutine only
}

// NewDecoder returns a new packet frame decoder reading from r.
func NewDecoder(r io.Reader, log logr.Logger) *Decoder {
	return &Decoder{
		rd:                   &fullReader{r}, // frame payloads must always be read fully
		log:                  log.WithName("decoder"),
		compressionThreshold: -1,
	}
}

type fullReader struct{ io.Reader }

func (fr *fullReader) Read(p []byte) (int, error) { return io.ReadFull(fr.Reader, p) }

// SetReader swaps the underlying reader.
// The new reader is used from the next frame boundary on.
func (d *Decoder) SetReader(rd io.Reader) {
	d.mu.Lock()
	d.rd = &fullReader{rd}
	d.mu.Unlock()
}

// SetCompressionThreshold enables the compressed frame layout for
// threshold >= 0 and disables it for negative thresholds.
// It applies to the next frame read.
func (d *Decoder) SetCompressionThreshold(threshold int) {
	d.mu.Lock()
	d.compressionThreshold = threshold
	d.compression = threshold >= 0
	d.mu.Unlock()
}

// CompressionThreshold returns the current compression threshold.
func (d *Decoder) CompressionThreshold() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compressionThreshold
}

// Decode reads the next frame from the underlying reader, blocking until one
// is available. Any returned error means the stream cannot safely be
// resynchronized and the connection must be closed.
func (d *Decoder) Decode() (*Frame, error) {
	var retries int
	for {
		d.mu.Lock()
		rd, compression, threshold := d.rd, d.compression, d.compressionThreshold
		d.mu.Unlock()

		payload, err := readVarIntFrame(rd)
		if err != nil {
			return nil, fmt.Errorf("error reading packet frame: %w", err)
		}
		if len(payload) == 0 {
			// Got an empty frame, skip it.
			if retries++; retries > maxEmptyFrames {
				return nil, errors.New("got too many empty frames")
			}
			continue
		}
		if compression {
			payload, err = d.decompressPayload(payload, threshold)
			if err != nil {
				return nil, err
			}
		}
		frame, err := splitPacketID(payload)
		if err != nil {
			return nil, err
		}
		if d.log.Enabled() {
			d.log.Info("decoded frame", "packetID", frame.PacketID, "bytes", len(frame.Payload))
		}
		return frame, nil
	}
}

func readVarIntFrame(rd io.Reader) (payload []byte, err error) {
	length, _, err := util.ReadVarIntReturnN(rd)
	if err != nil {
		return nil, fmt.Errorf("error reading frame length: %w", err)
	}
	if length == 0 {
		return nil, nil // caller should skip over empty frame
	}
	if length < 0 || length > MaxFrameLen {
		return nil, fmt.Errorf("received invalid frame length %d", length)
	}
	payload = make([]byte, length)
	if _, err = rd.Read(payload); err != nil {
		return nil, fmt.Errorf("error reading frame payload: %w", err)
	}
	return payload, nil
}

// decompressPayload unwraps the compressed frame layout:
// a data-length VarInt followed by either the literal packet bytes
// (data length 0) or a zlib stream inflating to exactly data length bytes.
func (d *Decoder) decompressPayload(payload []byte, threshold int) ([]byte, error) {
	buf := bytes.NewBuffer(payload)
	claimedUncompressedSize, _, err := util.ReadVarIntReturnN(buf)
	if err != nil {
		return nil, fmt.Errorf("error reading claimed uncompressed size varint: %w", err)
	}
	if claimedUncompressedSize == 0 {
		// This frame is not compressed.
		if actualUncompressedSize := buf.Len(); actualUncompressedSize > threshold {
			return nil, fmt.Errorf("actual uncompressed size %d is greater than threshold %d",
				actualUncompressedSize, threshold)
		}
		return buf.Bytes(), nil
	}
	return d.inflate(claimedUncompressedSize, threshold, buf)
}

func (d *Decoder) inflate(claimedUncompressedSize, threshold int, rd io.Reader) (decompressed []byte, err error) {
	if claimedUncompressedSize < threshold {
		return nil, fmt.Errorf("uncompressed size %d is less than set threshold %d",
			claimedUncompressedSize, threshold)
	}
	if claimedUncompressedSize > UncompressedCap {
		return nil, fmt.Errorf("uncompressed size %d exceeds hard cap of %d",
			claimedUncompressedSize, UncompressedCap)
	}

	if d.zrd == nil {
		d.zrd, err = zlib.NewReader(rd)
		if err != nil {
			return nil, err
		}
	} else {
		// Reuse the already allocated zlib reader.
		if err = d.zrd.(zlib.Resetter).Reset(rd, nil); err != nil {
			return nil, fmt.Errorf("error resetting zlib reader: %w", err)
		}
	}

	decompressed = make([]byte, claimedUncompressedSize)
	if _, err = io.ReadFull(d.zrd, decompressed); err != nil {
		return nil, fmt.Errorf("error decompressing payload to %d bytes: %w", claimedUncompressedSize, err)
	}
	// The stream must inflate to exactly the claimed size.
	var extra [1]byte
	if n, _ := d.zrd.Read(extra[:]); n != 0 {
		return nil, fmt.Errorf("inflated payload exceeds claimed uncompressed size %d", claimedUncompressedSize)
	}
	return decompressed, d.zrd.Close()
}

func splitPacketID(payload []byte) (*Frame, error) {
	buf := bytes.NewReader(payload)
	packetID, err := util.ReadVarInt(buf)
	if err != nil {
		return nil, fmt.Errorf("error reading packet id: %w", err)
	}
	return &Frame{
		PacketID: proto.PacketID(packetID),
		Payload:  payload[len(payload)-buf.Len():],
	}, nil
}
