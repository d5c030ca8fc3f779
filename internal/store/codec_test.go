package store

import "testing"

func TestFieldsCodec(t *testing.T) {
	data, err := EncodeFields(map[string]string{"healthy_pods": `{"a":[]}`})
	if err != nil {
		t.Fatalf("EncodeFields failed: %v", err)
	}
	fields, err := DecodeFields(data)
	if err != nil {
		t.Fatalf("DecodeFields failed: %v", err)
	}
	if fields["healthy_pods"] != `{"a":[]}` {
		t.Fatalf("unexpected fields %v", fields)
	}

	if data, _ := EncodeFields(nil); string(data) != "{}" {
		t.Errorf("expect nil fields to encode as {}, got %s", data)
	}
	if fields, err := DecodeFields(nil); err != nil || len(fields) != 0 {
		t.Errorf("expect empty value to decode as empty fields, got %v %v", fields, err)
	}
	if _, err := DecodeFields([]byte(`["x"]`)); err == nil {
		t.Error("expect error for non-object value")
	}
}
