package ipc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// Each message on the wire is a little-endian u32 byte length followed by
// that many payload bytes; the first payload byte is a tag discriminating
// the (currently single-variant) union, mirroring ipc.rs's bincode-derived
// enum encoding closely enough to keep the two message sets symmetric.
const (
	tagRunTest      byte = 0
	tagTestFinished byte = 0
)

func writeFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func putString(buf *bytes.Buffer, s string) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
}

func getString(r *bytes.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	strBuf := make([]byte, n)
	if _, err := io.ReadFull(r, strBuf); err != nil {
		return "", err
	}
	return string(strBuf), nil
}

func putFloat64(buf *bytes.Buffer, f float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
	buf.Write(b[:])
}

func getFloat64(r *bytes.Reader) (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}

// WriteCommand encodes and frames a Command onto w.
func WriteCommand(w io.Writer, cmd Command) error {
	var buf bytes.Buffer
	buf.WriteByte(tagRunTest)
	putString(&buf, cmd.Name)
	putString(&buf, cmd.CrateName)
	putString(&buf, cmd.ModulePath)
	return writeFrame(w, buf.Bytes())
}

// ReadCommand reads and decodes one framed Command from r.
func ReadCommand(r io.Reader) (Command, error) {
	payload, err := readFrame(r)
	if err != nil {
		return Command{}, err
	}
	br := bytes.NewReader(payload)
	tag, err := br.ReadByte()
	if err != nil {
		return Command{}, err
	}
	if tag != tagRunTest {
		return Command{}, fmt.Errorf("ipc: unknown command tag %d", tag)
	}
	name, err := getString(br)
	if err != nil {
		return Command{}, err
	}
	crateName, err := getString(br)
	if err != nil {
		return Command{}, err
	}
	modulePath, err := getString(br)
	if err != nil {
		return Command{}, err
	}
	return Command{Name: name, CrateName: crateName, ModulePath: modulePath}, nil
}

// WriteResponse encodes and frames a Response onto w.
func WriteResponse(w io.Writer, resp Response) error {
	var buf bytes.Buffer
	buf.WriteByte(tagTestFinished)
	buf.WriteByte(byte(resp.Result.Kind))

	var timeBuf [8]byte
	binary.LittleEndian.PutUint64(timeBuf[:], uint64(resp.Result.ExecTime))
	buf.Write(timeBuf[:])

	putString(&buf, resp.Result.PanicMessage)
	putFloat64(&buf, resp.Result.MedianNanos)
	putFloat64(&buf, resp.Result.MedianAbsDev)
	putFloat64(&buf, resp.Result.MinNanos)
	putFloat64(&buf, resp.Result.MaxNanos)
	putFloat64(&buf, resp.Result.MBPerSec)

	return writeFrame(w, buf.Bytes())
}

// ReadResponse reads and decodes one framed Response from r.
func ReadResponse(r io.Reader) (Response, error) {
	payload, err := readFrame(r)
	if err != nil {
		return Response{}, err
	}
	br := bytes.NewReader(payload)
	tag, err := br.ReadByte()
	if err != nil {
		return Response{}, err
	}
	if tag != tagTestFinished {
		return Response{}, fmt.Errorf("ipc: unknown response tag %d", tag)
	}
	kindByte, err := br.ReadByte()
	if err != nil {
		return Response{}, err
	}

	var timeBuf [8]byte
	if _, err := io.ReadFull(br, timeBuf[:]); err != nil {
		return Response{}, err
	}
	execTime := binary.LittleEndian.Uint64(timeBuf[:])

	panicMessage, err := getString(br)
	if err != nil {
		return Response{}, err
	}
	median, err := getFloat64(br)
	if err != nil {
		return Response{}, err
	}
	medianAbsDev, err := getFloat64(br)
	if err != nil {
		return Response{}, err
	}
	min, err := getFloat64(br)
	if err != nil {
		return Response{}, err
	}
	max, err := getFloat64(br)
	if err != nil {
		return Response{}, err
	}
	mbPerSec, err := getFloat64(br)
	if err != nil {
		return Response{}, err
	}

	return Response{Result: SerializableResult{
		Kind:         ResultKind(kindByte),
		ExecTime:     time.Duration(execTime),
		PanicMessage: panicMessage,
		MedianNanos:  median,
		MedianAbsDev: medianAbsDev,
		MinNanos:     min,
		MaxNanos:     max,
		MBPerSec:     mbPerSec,
	}}, nil
}
