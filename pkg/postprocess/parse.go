package postprocess

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownFilter is returned by Parse for a filter name it does not know
var ErrUnknownFilter = errors.New("unknown filter")

type filterSpec struct {
	args  int // Required argument count
	build func(args []float64) Filter
}

var filterSpecs = map[string]filterSpec{
	"blur":       {1, func(a []float64) Filter { return Blur(a[0]) }},
	"sharpen":    {1, func(a []float64) Filter { return Sharpen(a[0]) }},
	"grayscale":  {0, func([]float64) Filter { return Grayscale() }},
	"brighten":   {1, func(a []float64) Filter { return Brighten(a[0]) }},
	"contrast":   {1, func(a []float64) Filter { return Contrast(a[0]) }},
	"saturation": {1, func(a []float64) Filter { return Saturation(a[0]) }},
	"gamma":      {1, func(a []float64) Filter { return Gamma(a[0]) }},
	"invert":     {0, func([]float64) Filter { return Invert() }},
	"edges":      {0, func([]float64) Filter { return EdgeDetect() }},
	"crop": {4, func(a []float64) Filter {
		return Crop(int(a[0]), int(a[1]), int(a[2]), int(a[3]))
	}},
	"rotate":   {1, func(a []float64) Filter { return Rotate(a[0]) }},
	"scale":    {2, func(a []float64) Filter { return Scale(a[0], a[1]) }},
	"quantize": {1, func(a []float64) Filter { return Quantize(int(a[0])) }},
	"dither":   {1, func(a []float64) Filter { return FloydSteinberg(int(a[0])) }},
}

var channelNames = map[string]int{"red": 0, "green": 1, "blue": 2}

// Parse reads a comma-separated filter chain such as
// "blur:1.5,grayscale,scale:0.5:0.5". Arguments follow the filter name,
// separated by colons. An empty string yields no filters.
func Parse(chain string) ([]Filter, error) {
	var filters []Filter
	for _, item := range strings.Split(chain, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		name, rawArgs := strings.ToLower(parts[0]), parts[1:]

		if name == "channel" {
			if len(rawArgs) != 1 {
				return nil, fmt.Errorf("filter %q: expected 1 argument, got %d", name, len(rawArgs))
			}
			ch, ok := channelNames[strings.ToLower(rawArgs[0])]
			if !ok {
				return nil, fmt.Errorf("filter %q: unknown channel %q", name, rawArgs[0])
			}
			filters = append(filters, Channel(ch))
			continue
		}

		spec, ok := filterSpecs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
		}
		if len(rawArgs) != spec.args {
			return nil, fmt.Errorf("filter %q: expected %d arguments, got %d", name, spec.args, len(rawArgs))
		}
		args := make([]float64, len(rawArgs))
		for i, raw := range rawArgs {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("filter %q argument %d: %w", name, i+1, err)
			}
			args[i] = v
		}
		filters = append(filters, spec.build(args))
	}
	return filters, nil
}

// Names returns the filter names Parse accepts, sorted
func Names() []string {
	names := []string{"channel"}
	for name := range filterSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
