package grpcserver

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// The service speaks JSON over gRPC instead of compiled protobuf stubs: the
// message set is small and callers are in-house. Clients select the codec
// with grpc.CallContentSubtype(JSONCodecName).
const JSONCodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
