package bridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Frames are a 4-byte big-endian length prefix followed by the body. The
// prefix counts the body only.

var errFrameTooLarge = errors.New("frame exceeds size limit")

func isFrameTooLarge(err error) bool {
	return errors.Is(err, errFrameTooLarge)
}

func writeFrame(w io.Writer, body []byte) error {
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func readFrame(r io.Reader, maxBytes uint32) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(prefix[:])
	if n > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", errFrameTooLarge, n, maxBytes)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
