package common

import (
	"bytes"
	"encoding/binary"
)

type FileID uint64

type PageID uint64

// FrameID addresses a slot of the in-memory frame pool. Valid ids are
// small dense integers bounded by the pool capacity.
type FrameID uint64

type PageIdentity struct {
	FileID FileID
	PageID PageID
}

func (p PageIdentity) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, p.FileID)
	_ = binary.Write(buf, binary.BigEndian, p.PageID)

	return buf.Bytes(), nil
}
