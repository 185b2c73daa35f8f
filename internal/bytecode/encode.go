package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/emberscript/emberc/internal/types"
)

// The .ebc container format: a fixed magic/version header followed by a
// chunk table. Every multi-byte field is little-endian. Call-family
// operands carry FunctionIds by their u32 hash (spec §6), so the encoding
// is stable across runs with no relocation table.
var ebcMagic = [4]byte{'E', 'B', 'C', '1'}

const ebcVersion uint16 = 1

// WriteModule encodes every chunk into the .ebc container format.
func WriteModule(w io.Writer, chunks []*BytecodeChunk) error {
	buf := bufWriter{w: w}

	buf.raw(ebcMagic[:])
	buf.u16(ebcVersion)
	buf.u32(uint32(len(chunks)))
	for _, chunk := range chunks {
		writeChunk(&buf, chunk)
	}
	return buf.err
}

func writeChunk(buf *bufWriter, c *BytecodeChunk) {
	buf.u32(uint32(c.FunctionID))
	buf.str(c.Name)
	buf.u32(uint32(c.LocalCount))

	buf.u32(uint32(len(c.Constants)))
	for _, cst := range c.Constants {
		buf.u8(uint8(cst.Kind))
		switch cst.Kind {
		case ConstString:
			buf.str(cst.Str)
		case ConstInt:
			buf.u64(uint64(cst.Int))
		case ConstFloat:
			buf.u32(math.Float32bits(cst.Float))
		case ConstDouble:
			buf.u64(math.Float64bits(cst.Double))
		}
	}

	buf.u32(uint32(len(c.Code)))
	for _, inst := range c.Code {
		buf.u8(uint8(inst.Op))
		buf.u64(uint64(inst.A))
		buf.u64(uint64(inst.B))
	}

	buf.u32(uint32(len(c.Lines)))
	for _, line := range c.Lines {
		buf.u32(uint32(line))
	}
}

// ReadModule decodes an .ebc container produced by WriteModule.
func ReadModule(r io.Reader) ([]*BytecodeChunk, error) {
	buf := bufReader{r: r}

	var magic [4]byte
	buf.raw(magic[:])
	if buf.err == nil && magic != ebcMagic {
		return nil, fmt.Errorf("not an ebc bundle (bad magic %q)", magic[:])
	}
	if v := buf.u16(); buf.err == nil && v != ebcVersion {
		return nil, fmt.Errorf("unsupported ebc version %d", v)
	}

	count := buf.u32()
	if buf.err != nil {
		return nil, buf.err
	}
	chunks := make([]*BytecodeChunk, 0, count)
	for i := uint32(0); i < count; i++ {
		c := readChunk(&buf)
		if buf.err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, buf.err)
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func readChunk(buf *bufReader) *BytecodeChunk {
	c := &BytecodeChunk{}
	c.FunctionID = types.FunctionId(buf.u32())
	c.Name = buf.str()
	c.LocalCount = int(buf.u32())

	nConst := buf.u32()
	for i := uint32(0); i < nConst && buf.err == nil; i++ {
		cst := Constant{Kind: ConstKind(buf.u8())}
		switch cst.Kind {
		case ConstString:
			cst.Str = buf.str()
		case ConstInt:
			cst.Int = int64(buf.u64())
		case ConstFloat:
			cst.Float = math.Float32frombits(buf.u32())
		case ConstDouble:
			cst.Double = math.Float64frombits(buf.u64())
		default:
			buf.err = fmt.Errorf("unknown constant kind %d", cst.Kind)
		}
		c.Constants = append(c.Constants, cst)
	}

	nCode := buf.u32()
	for i := uint32(0); i < nCode && buf.err == nil; i++ {
		inst := Instruction{Op: OpCode(buf.u8())}
		inst.A = int64(buf.u64())
		inst.B = int64(buf.u64())
		c.Code = append(c.Code, inst)
	}

	nLines := buf.u32()
	for i := uint32(0); i < nLines && buf.err == nil; i++ {
		c.Lines = append(c.Lines, int(buf.u32()))
	}
	return c
}

// bufWriter wraps an io.Writer with sticky-error little-endian helpers so
// the encoding body reads as a flat field list.
type bufWriter struct {
	w   io.Writer
	err error
}

func (b *bufWriter) raw(p []byte) {
	if b.err == nil {
		_, b.err = b.w.Write(p)
	}
}

func (b *bufWriter) u8(v uint8)   { b.raw([]byte{v}) }
func (b *bufWriter) u16(v uint16) { b.fixed(v) }
func (b *bufWriter) u32(v uint32) { b.fixed(v) }
func (b *bufWriter) u64(v uint64) { b.fixed(v) }

func (b *bufWriter) fixed(v any) {
	if b.err == nil {
		b.err = binary.Write(b.w, binary.LittleEndian, v)
	}
}

func (b *bufWriter) str(s string) {
	b.u32(uint32(len(s)))
	b.raw([]byte(s))
}

type bufReader struct {
	r   io.Reader
	err error
}

func (b *bufReader) raw(p []byte) {
	if b.err == nil {
		_, b.err = io.ReadFull(b.r, p)
	}
}

func (b *bufReader) u8() uint8 {
	var p [1]byte
	b.raw(p[:])
	return p[0]
}

func (b *bufReader) u16() uint16 {
	var v uint16
	b.fixed(&v)
	return v
}

func (b *bufReader) u32() uint32 {
	var v uint32
	b.fixed(&v)
	return v
}

func (b *bufReader) u64() uint64 {
	var v uint64
	b.fixed(&v)
	return v
}

func (b *bufReader) fixed(v any) {
	if b.err == nil {
		b.err = binary.Read(b.r, binary.LittleEndian, v)
	}
}

func (b *bufReader) str() string {
	n := b.u32()
	if b.err != nil || n == 0 {
		return ""
	}
	p := make([]byte, n)
	b.raw(p)
	return string(p)
}

// EncodeModule is WriteModule into a fresh byte slice.
func EncodeModule(chunks []*BytecodeChunk) ([]byte, error) {
	var out bytes.Buffer
	if err := WriteModule(&out, chunks); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
