// Package snapshot holds the healthy-address mapping handed from the prober
// to dispatchers through the shared store, and its wire format: a JSON object
// mapping service name to an array of address strings.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed is wrapped by every Decode failure.
var ErrMalformed = errors.New("malformed snapshot")

// Snapshot maps a service name to the addresses that passed the probe cycle
// which produced it, in enumeration order.
type Snapshot map[string][]string

// Empty returns a snapshot with no services.
func Empty() Snapshot {
	return Snapshot{}
}

// Healthy returns the address list for a service, nil when absent.
func (s Snapshot) Healthy(service string) []string {
	return s[service]
}

// Total returns the number of addresses across all services.
func (s Snapshot) Total() int {
	n := 0
	for _, addrs := range s {
		n += len(addrs)
	}
	return n
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Encode serializes the snapshot. Services with no healthy members encode as
// an empty array, never null.
func Encode(s Snapshot) (string, error) {
	out := make(map[string][]string, len(s))
	for k, v := range s {
		if v == nil {
			v = []string{}
		}
		out[k] = v
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data), nil
}

// Decode parses and validates a serialized snapshot. The top level must be an
// object, every value an array of non-empty strings, and nothing may follow
// the object.
func Decode(raw string) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))

	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}

	s := make(Snapshot, len(fields))
	for service, value := range fields {
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, fmt.Errorf("%w: service %q is not an array", ErrMalformed, service)
		}
		var addrs []string
		if err := json.Unmarshal(trimmed, &addrs); err != nil {
			return nil, fmt.Errorf("%w: service %q: %v", ErrMalformed, service, err)
		}
		for i, a := range addrs {
			if a == "" {
				return nil, fmt.Errorf("%w: service %q has empty address at %d", ErrMalformed, service, i)
			}
		}
		if addrs == nil {
			addrs = []string{}
		}
		s[service] = addrs
	}
	return s, nil
}
