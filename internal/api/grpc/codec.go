package grpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName content-subtype кодека: application/grpc+json
const CodecName = "json"

// jsonCodec кодирует сообщения NotesService в JSON.
// Сообщения protobuf (emptypb и т.п.) идут через protojson.
// Неизвестные поля и данные после сообщения отклоняются, как и в REST API
type jsonCodec struct{}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON message")
	}
	return nil
}

func (jsonCodec) Name() string {
	return CodecName
}
