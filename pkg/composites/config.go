package composites

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeConfig decodes raw into out, a pointer to a struct already holding
// the defaults. Keys missing from raw keep their default; unknown keys are
// an error.
func DecodeConfig(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
