// Package cursor implements the bounds-checked sequential reader every
// decode routine goes through.
//
// A Cursor is a read-only view over a borrowed byte slice plus a read
// offset. Reads check the remaining length first and fail with a
// *TruncatedError without moving the offset, so a failed read never leaves
// a cursor half advanced. Sub-cursors share the underlying buffer and keep
// the absolute offset of their first byte, so positions reported by a
// nested decoder still point into the original packet.
package cursor

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"firestige.xyz/dissector/internal/core"
)

// TruncatedError reports a read that would run past the end of a view.
// Offsets are absolute packet offsets.
type TruncatedError struct {
	Offset int // position the read started at
	Need   int // bytes requested
	End    int // end of the view the read was issued against
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("dissector: truncated: need %d bytes at offset %d, view ends at %d",
		e.Need, e.Offset, e.End)
}

// Is makes errors.Is(err, core.ErrTruncated) hold for every TruncatedError.
func (e *TruncatedError) Is(target error) bool {
	return target == core.ErrTruncated
}

// Cursor reads a byte view front to back.
type Cursor struct {
	buf  []byte
	base int
	off  int
}

// New returns a cursor over buf starting at absolute offset 0.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the size of the view.
func (c *Cursor) Len() int { return len(c.buf) }

// Offset returns the read position relative to the start of the view.
func (c *Cursor) Offset() int { return c.off }

// Base returns the absolute offset of the first byte of the view.
func (c *Cursor) Base() int { return c.base }

// Abs returns the absolute read position.
func (c *Cursor) Abs() int { return c.base + c.off }

// End returns the absolute offset one past the last byte of the view.
func (c *Cursor) End() int { return c.base + len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

func (c *Cursor) check(n int) error {
	if n < 0 || n > len(c.buf)-c.off {
		return &TruncatedError{Offset: c.Abs(), Need: n, End: c.End()}
	}
	return nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	if err := c.check(1); err != nil {
		return 0, err
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

// U16 reads a 16-bit unsigned integer in the given byte order.
func (c *Cursor) U16(order binary.ByteOrder) (uint16, error) {
	if err := c.check(2); err != nil {
		return 0, err
	}
	v := order.Uint16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

// U24 reads a 24-bit unsigned integer in the given byte order.
func (c *Cursor) U24(order binary.ByteOrder) (uint32, error) {
	if err := c.check(3); err != nil {
		return 0, err
	}
	b := c.buf[c.off : c.off+3]
	var v uint32
	if order == binary.LittleEndian {
		v = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	} else {
		v = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	c.off += 3
	return v, nil
}

// U32 reads a 32-bit unsigned integer in the given byte order.
func (c *Cursor) U32(order binary.ByteOrder) (uint32, error) {
	if err := c.check(4); err != nil {
		return 0, err
	}
	v := order.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

// U64 reads a 64-bit unsigned integer in the given byte order.
func (c *Cursor) U64(order binary.ByteOrder) (uint64, error) {
	if err := c.check(8); err != nil {
		return 0, err
	}
	v := order.Uint64(c.buf[c.off:])
	c.off += 8
	return v, nil
}

// Uint reads an unsigned integer of width 1, 2, 3, 4 or 8 bytes.
func (c *Cursor) Uint(width int, order binary.ByteOrder) (uint64, error) {
	switch width {
	case 1:
		v, err := c.U8()
		return uint64(v), err
	case 2:
		v, err := c.U16(order)
		return uint64(v), err
	case 3:
		v, err := c.U24(order)
		return uint64(v), err
	case 4:
		v, err := c.U32(order)
		return uint64(v), err
	case 8:
		return c.U64(order)
	}
	return 0, fmt.Errorf("cursor: unsupported integer width %d: %w", width, core.ErrInvalidField)
}

// Bytes returns the next n bytes without copying. The returned slice
// aliases the packet and is capped so appends cannot clobber it.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.check(n); err != nil {
		return nil, err
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

// CString reads a NUL-terminated string of at most maxLen bytes including
// the terminator. If no NUL occurs within maxLen bytes, maxLen bytes are
// consumed and returned as an unterminated string. It fails only when the
// view ends before either a NUL or maxLen bytes are seen.
func (c *Cursor) CString(maxLen int) (string, error) {
	if maxLen < 0 {
		return "", c.check(maxLen)
	}
	window := c.buf[c.off:]
	if len(window) > maxLen {
		window = window[:maxLen]
	}
	if i := bytes.IndexByte(window, 0); i >= 0 {
		s := string(window[:i])
		c.off += i + 1
		return s, nil
	}
	if err := c.check(maxLen); err != nil {
		return "", err
	}
	c.off += maxLen
	return string(window), nil
}

// FixedString reads an n-byte NUL-padded field and returns the text before
// the first NUL.
func (c *Cursor) FixedString(n int) (string, error) {
	b, err := c.Bytes(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.check(n); err != nil {
		return err
	}
	c.off += n
	return nil
}

// Sub returns a new cursor over [offset, offset+n) of this view, where
// offset is relative to the start of the view. The receiver does not move.
func (c *Cursor) Sub(offset, n int) (*Cursor, error) {
	if offset < 0 || n < 0 || offset > len(c.buf) || n > len(c.buf)-offset {
		return nil, &TruncatedError{Offset: c.base + offset, Need: n, End: c.End()}
	}
	return &Cursor{buf: c.buf[offset : offset+n : offset+n], base: c.base + offset}, nil
}

// Take returns a cursor over the next n bytes and advances past them.
func (c *Cursor) Take(n int) (*Cursor, error) {
	sub, err := c.Sub(c.off, n)
	if err != nil {
		return nil, err
	}
	c.off += n
	return sub, nil
}

// Rest returns a cursor over all unread bytes and advances to the end.
func (c *Cursor) Rest() *Cursor {
	sub := &Cursor{buf: c.buf[c.off:len(c.buf):len(c.buf)], base: c.Abs()}
	c.off = len(c.buf)
	return sub
}

// PeekU8 returns the byte at relative offset at without moving the cursor.
func (c *Cursor) PeekU8(at int) (uint8, error) {
	if at < 0 || at >= len(c.buf) {
		return 0, &TruncatedError{Offset: c.base + at, Need: 1, End: c.End()}
	}
	return c.buf[at], nil
}

// PeekU16 returns the 16-bit value at relative offset at without moving
// the cursor.
func (c *Cursor) PeekU16(at int, order binary.ByteOrder) (uint16, error) {
	if at < 0 || at > len(c.buf)-2 {
		return 0, &TruncatedError{Offset: c.base + at, Need: 2, End: c.End()}
	}
	return order.Uint16(c.buf[at:]), nil
}

// PeekBytes returns n bytes at relative offset at without moving the
// cursor and without copying.
func (c *Cursor) PeekBytes(at, n int) ([]byte, error) {
	if at < 0 || n < 0 || at > len(c.buf) || n > len(c.buf)-at {
		return nil, &TruncatedError{Offset: c.base + at, Need: n, End: c.End()}
	}
	return c.buf[at : at+n : at+n], nil
}
