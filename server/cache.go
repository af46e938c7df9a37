package server

import (
	"github.com/golang/protobuf/proto"
)

// CachedBlob is a cached body along with its modification time, stored in
// the groupcache as a protocol buffer.
type CachedBlob struct {
	ModTime []byte `protobuf:"bytes,1,opt,name=mod_time,json=modTime,proto3" json:"mod_time,omitempty"`
	Buffer  []byte `protobuf:"bytes,2,opt,name=buffer,proto3" json:"buffer,omitempty"`
}

func (m *CachedBlob) Reset()         { *m = CachedBlob{} }
func (m *CachedBlob) String() string { return proto.CompactTextString(m) }
func (*CachedBlob) ProtoMessage()    {}

// GetModTime returns the binary encoded modification time.
func (m *CachedBlob) GetModTime() []byte {
	if m != nil {
		return m.ModTime
	}
	return nil
}

// GetBuffer returns the cached body.
func (m *CachedBlob) GetBuffer() []byte {
	if m != nil {
		return m.Buffer
	}
	return nil
}
