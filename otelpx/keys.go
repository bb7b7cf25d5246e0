package otelpx

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	ContainerFormatKey = attribute.Key("px.container.format")
	InputSizeKey       = attribute.Key("px.size.input")
	OutputSizeKey      = attribute.Key("px.size.output")
)

// ContainerFormat attribute.
func ContainerFormat(v string) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   ContainerFormatKey,
		Value: attribute.StringValue(v),
	}
}

// InputSize attribute.
func InputSize(v int) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   InputSizeKey,
		Value: attribute.IntValue(v),
	}
}

// OutputSize attribute.
func OutputSize(v int) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   OutputSizeKey,
		Value: attribute.IntValue(v),
	}
}
