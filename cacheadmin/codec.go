package cacheadmin

import "encoding/json"

// jsonCodec 以普通 Go 结构体收发 Connect 消息，替换 Connect 默认的 protojson 编解码
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
