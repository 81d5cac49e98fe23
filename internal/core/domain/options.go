package domain

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Recognized build option keys. Unknown keys are carried through and fingerprinted.
const (
	OptionVerbose  = "verbose"
	OptionForce    = "force"
	OptionInPlace  = "inplace"
	OptionTags     = "tags"
	OptionGCFlags  = "gcflags"
	OptionLDFlags  = "ldflags"
	OptionTrimPath = "trimpath"
	OptionRace     = "race"
	OptionGoBinary = "go"
)

// BuildOptions is a string-keyed option mapping merged key-wise from process
// defaults, per-invocation overrides and customization sidecars.
type BuildOptions map[string]string

// MergeOptions merges layers shallowly. Later layers win on key collision.
func MergeOptions(layers ...BuildOptions) BuildOptions {
	merged := make(BuildOptions)
	for _, layer := range layers {
		maps.Copy(merged, layer)
	}
	return merged
}

// Get returns the value for key or the empty string.
func (o BuildOptions) Get(key string) string {
	return o[key]
}

// Bool interprets the value for key as a boolean. Missing or malformed values are false.
func (o BuildOptions) Bool(key string) bool {
	v, ok := o[key]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// Keys returns the option keys in sorted order.
func (o BuildOptions) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

// Affects reports whether key changes the compiled output.
func Affects(key string) bool {
	switch key {
	case OptionVerbose, OptionForce:
		return false
	default:
		return true
	}
}
