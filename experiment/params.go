package experiment

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/maxpv/expman/pkg/errors"
)

// Tuple is a fixed-size tuple of values. It canonicalizes distinctly from
// a plain sequence: Tuple{3, 3} and []any{3, 3} produce different
// fingerprints, as does the string "3,3".
type Tuple []any

// maxExactInt bounds the integral-float normalization: float64 represents
// integers exactly only up to 2^53.
const maxExactInt = 1 << 53

// canonicalBytes renders a parameter group into its canonical byte form:
// mapping keys recursively sorted, every scalar prefixed with a type tag.
// The rendering depends only on structure and values, never on map
// iteration order or process identity, so equal groups hash equally across
// runs and machines.
//
// Value kinds are a closed set: nil, bool, integers, floats, strings,
// sequences, Tuple and nested string-keyed mappings. Anything else fails
// with UnsupportedValueKindError. NaN and infinite floats are rejected
// rather than normalized. Integral floats within ±2^53 render as ints so
// that parameters decoded from JSON (where every number is a float64)
// fingerprint identically to hand-built ones.
func canonicalBytes(group map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, "", group); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, path string, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("z")
	case bool:
		fmt.Fprintf(buf, "b:%t", val)
	case int:
		writeCanonicalInt(buf, int64(val))
	case int8:
		writeCanonicalInt(buf, int64(val))
	case int16:
		writeCanonicalInt(buf, int64(val))
	case int32:
		writeCanonicalInt(buf, int64(val))
	case int64:
		writeCanonicalInt(buf, val)
	case uint:
		writeCanonicalUint(buf, uint64(val))
	case uint8:
		writeCanonicalUint(buf, uint64(val))
	case uint16:
		writeCanonicalUint(buf, uint64(val))
	case uint32:
		writeCanonicalUint(buf, uint64(val))
	case uint64:
		writeCanonicalUint(buf, val)
	case float32:
		return writeCanonicalFloat(buf, path, float64(val))
	case float64:
		return writeCanonicalFloat(buf, path, val)
	case string:
		buf.WriteString("s:")
		buf.WriteString(strconv.Quote(val))
	case Tuple:
		buf.WriteString("t(")
		for i, item := range val {
			if i > 0 {
				buf.WriteString(",")
			}
			if err := writeCanonical(buf, elemPath(path, i), item); err != nil {
				return err
			}
		}
		buf.WriteString(")")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteString("m{")
		for i, k := range keys {
			if i > 0 {
				buf.WriteString(",")
			}
			buf.WriteString(strconv.Quote(k))
			buf.WriteString("=")
			if err := writeCanonical(buf, keyPath(path, k), val[k]); err != nil {
				return err
			}
		}
		buf.WriteString("}")
	default:
		return writeCanonicalReflect(buf, path, v)
	}
	return nil
}

// writeCanonicalReflect handles typed sequences ([]int, []float64,
// []string, ...) that callers build without going through []any.
func writeCanonicalReflect(buf *bytes.Buffer, path string, v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		buf.WriteString("l[")
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				buf.WriteString(",")
			}
			if err := writeCanonical(buf, elemPath(path, i), rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		buf.WriteString("]")
		return nil
	default:
		return errors.NewUnsupportedValueKindError(path, fmt.Sprintf("%T", v))
	}
}

func writeCanonicalInt(buf *bytes.Buffer, v int64) {
	buf.WriteString("i:")
	buf.WriteString(strconv.FormatInt(v, 10))
}

func writeCanonicalUint(buf *bytes.Buffer, v uint64) {
	buf.WriteString("i:")
	buf.WriteString(strconv.FormatUint(v, 10))
}

func writeCanonicalFloat(buf *bytes.Buffer, path string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.NewUnsupportedValueKindError(path, fmt.Sprintf("float64 (%v)", v))
	}
	if v == math.Trunc(v) && math.Abs(v) < maxExactInt {
		writeCanonicalInt(buf, int64(v))
		return nil
	}
	buf.WriteString("f:")
	buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	return nil
}

func keyPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func elemPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
