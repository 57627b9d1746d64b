// Package rpc defines the daemon API: request and response types, the gRPC
// service descriptors and the typed clients used by disatui and disactl.
//
// Messages are plain structs carried by a JSON codec registered under the
// "json" content-subtype.
package rpc

import (
	"github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype of every daemon call.
const CodecName = "json"

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (codec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(codec{})
}
