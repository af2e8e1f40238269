// Package vaultgrpc exposes the vault dispatcher over gRPC, using
// cramberry for deterministic binary serialization.
//
// No protobuf code generation is required. Request and response
// messages are plain structs with cramberry struct tags.
package vaultgrpc

import (
	"github.com/blockberries/cramberry/pkg/cramberry"
	"google.golang.org/grpc/encoding"
)

const codecName = "cramberry"

// CramberryCodec implements grpc/encoding.Codec for the vault wire
// messages. Failures wrap ErrCodec and name the message type.
type CramberryCodec struct{}

func (CramberryCodec) Marshal(v any) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, ErrCodec.Wrapf("marshal %T: %v", v, err)
	}
	return data, nil
}

func (CramberryCodec) Unmarshal(data []byte, v any) error {
	if err := cramberry.Unmarshal(data, v); err != nil {
		return ErrCodec.Wrapf("unmarshal %T (%d bytes): %v", v, len(data), err)
	}
	return nil
}

func (CramberryCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(CramberryCodec{})
}
