package frontmatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
)

// lookup finds name in raw. An exact match wins; otherwise keys are compared
// case-insensitively in sorted order so the choice is stable.
func lookup(raw map[string]any, name string) (string, any, bool) {
	if v, ok := raw[name]; ok {
		return name, v, true
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		if strings.EqualFold(k, name) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", nil, false
	}
	sort.Strings(keys)
	return keys[0], raw[keys[0]], true
}

func stringValue(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// listValue accepts a sequence or a comma separated string.
func listValue(v any) ([]string, error) {
	var items []string
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case string:
		items = strings.Split(vv, ",")
	case []any, []string:
		s, err := cast.ToStringSliceE(vv)
		if err != nil {
			return nil, err
		}
		items = s
	default:
		s, err := cast.ToStringE(vv)
		if err != nil {
			return nil, err
		}
		items = strings.Split(s, ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// yamlBools holds the YAML 1.1 spellings older headers still use.
var yamlBools = map[string]bool{
	"y": true, "yes": true, "on": true,
	"n": false, "no": false, "off": false,
}

// boolValue returns present=false for missing, null and blank values.
func boolValue(v any) (value bool, present bool, err error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return false, false, nil
		}
		if b, ok := yamlBools[strings.ToLower(s)]; ok {
			return b, true, nil
		}
		v = s
	}
	if v == nil {
		return false, false, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, false, err
	}
	return b, true, nil
}

// timeValue converts a decoded header value into a timestamp. Values without
// a zone are taken to be in local time.
func timeValue(v any) (*time.Time, error) {
	var t time.Time
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		t = vv
	case toml.LocalDateTime:
		t = vv.AsTime(time.Local)
	case toml.LocalDate:
		t = vv.AsTime(time.Local)
	case string:
		s := strings.TrimSpace(vv)
		if s == "" {
			return nil, nil
		}
		parsed, err := dateparse.ParseIn(s, time.Local)
		if err != nil {
			return nil, err
		}
		t = parsed
	default:
		return nil, fmt.Errorf("unsupported timestamp value of type %T", v)
	}
	return &t, nil
}
