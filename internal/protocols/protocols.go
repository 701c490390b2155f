// Package protocols registers every built-in protocol description.
package protocols

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/protocols/artnet"
	"firestige.xyz/dissector/internal/protocols/dmx"
	"firestige.xyz/dissector/internal/protocols/rdm"
)

// Options holds free-form per-protocol settings keyed by protocol name, as
// read from the protocols section of the configuration.
type Options map[string]map[string]any

// RegisterAll registers the built-in protocols on reg. Settings for a
// protocol are decoded into its options struct on top of its defaults.
func RegisterAll(reg *decoder.Registry, opts Options) error {
	artOpts := artnet.DefaultOptions()
	if err := decode(opts[artnet.Name], &artOpts); err != nil {
		return fmt.Errorf("%s options: %w", artnet.Name, err)
	}
	for _, p := range []*decoder.Protocol{
		artnet.New(artOpts),
		artnet.NewVLC(),
		rdm.New(),
		dmx.New(),
	} {
		if err := reg.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in protocols.
func NewRegistry(opts Options) (*decoder.Registry, error) {
	reg := decoder.NewRegistry()
	if err := RegisterAll(reg, opts); err != nil {
		return nil, err
	}
	return reg, nil
}

func decode(in map[string]any, out any) error {
	if len(in) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
