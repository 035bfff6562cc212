package telemetry

import "github.com/IBM/sarama"

// HeadersCarrier adapts Kafka record headers to an OpenTelemetry TextMapCarrier.
type HeadersCarrier struct {
	Headers *[]sarama.RecordHeader
}

func NewHeadersCarrier(headers *[]sarama.RecordHeader) HeadersCarrier {
	return HeadersCarrier{Headers: headers}
}

func (c HeadersCarrier) Get(key string) string {
	for _, h := range *c.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set replaces an existing header with the same key.
func (c HeadersCarrier) Set(key string, value string) {
	for i, h := range *c.Headers {
		if string(h.Key) == key {
			(*c.Headers)[i].Value = []byte(value)
			return
		}
	}
	*c.Headers = append(*c.Headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
}

func (c HeadersCarrier) Keys() []string {
	out := make([]string, 0, len(*c.Headers))
	for _, h := range *c.Headers {
		out = append(out, string(h.Key))
	}
	return out
}
