// Package json decodes SODA resource responses into raw records.
//
// A resource response is a top-level JSON array of flat objects:
//
//	[ {"unique_key":"1","created_date":"2020-01-05T10:00:00.000", ...}, ... ]
//
// Objects are sparse; a field absent from one object may be present in the
// next. The decoder walks the array token by token so a large page never has
// to be materialized as []any first. Each object becomes a records.Record whose
// values are strings:
//
//   - JSON strings are kept as-is.
//   - Numbers keep their literal text (json.Number).
//   - Booleans become "true"/"false".
//   - Nested objects and arrays (e.g. "location") become compact JSON text.
//   - null drops the key, so downstream code sees it as missing.
package json

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"nypd311/pkg/records"
)

// DecodeRows reads a JSON array of objects from r and calls emit for each
// decoded record in input order. An empty body or an empty array produces no
// records and no error. Decoding stops at the first malformed element or when
// ctx is canceled.
func DecodeRows(ctx context.Context, r io.Reader, emit func(records.Record) error) (int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("json: read opening token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return 0, fmt.Errorf("json: want top-level array, got %v", tok)
	}

	n := 0
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err != nil {
			return n, fmt.Errorf("json: element %d: %w", n, err)
		}
		rec, err := toRecord(obj)
		if err != nil {
			return n, fmt.Errorf("json: element %d: %w", n, err)
		}
		if err := emit(rec); err != nil {
			return n, err
		}
		n++
	}

	if _, err := dec.Token(); err != nil {
		return n, fmt.Errorf("json: read closing token: %w", err)
	}
	return n, nil
}

// DecodeAll is DecodeRows collecting into a slice.
func DecodeAll(ctx context.Context, r io.Reader) ([]records.Record, error) {
	var out []records.Record
	_, err := DecodeRows(ctx, r, func(rec records.Record) error {
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func toRecord(obj map[string]json.RawMessage) (records.Record, error) {
	rec := make(records.Record, len(obj))
	for k, raw := range obj {
		s, ok, err := scalarText(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		if ok {
			rec[k] = s
		}
	}
	return rec, nil
}

// scalarText renders one raw JSON value as the string stored in a record.
// ok is false for null.
func scalarText(raw json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false, nil
	}
	switch trimmed[0] {
	case 'n':
		return "", false, nil
	case '"':
		s, err := strconv.Unquote(string(trimmed))
		if err != nil {
			// strconv does not accept every JSON escape (e.g. \/); fall back.
			var v string
			if jerr := json.Unmarshal(trimmed, &v); jerr != nil {
				return "", false, jerr
			}
			return v, true, nil
		}
		return s, true, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", false, err
		}
		return buf.String(), true, nil
	default:
		// number, true, false
		return string(trimmed), true, nil
	}
}
