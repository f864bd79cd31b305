package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CreateInputFromPatch reads a create body loosely. Creation never rejects a
// field for its type: string fields take the text of any value, is_published is
// truthy unless false, 0, "" or null, and sort_order falls back to 0 when it
// is not a number. Keys without a typed field are dropped.
func CreateInputFromPatch(body Patch) CreateInput {
	return CreateInput{
		Title:              looseString(body["title"]),
		Description:        looseString(body["description"]),
		Src:                looseString(body["src"]),
		CloudinaryPublicID: looseString(body["cloudinary_public_id"]),
		WhatsApp:           looseString(body["whatsapp"]),
		IsPublished:        truthy(body["is_published"]),
		SortOrder:          looseNumber(body["sort_order"]),
	}
}

func decodeLoose(raw json.RawMessage) (any, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// looseString maps falsy values to "" so defaults apply to them.
func looseString(raw json.RawMessage) string {
	v, ok := decodeLoose(raw)
	if !ok || !truthyValue(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return string(bytes.TrimSpace(raw))
	}
}

func truthy(raw json.RawMessage) bool {
	v, ok := decodeLoose(raw)
	return ok && truthyValue(v)
}

func truthyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	default:
		return true
	}
}

func looseNumber(raw json.RawMessage) float64 {
	v, ok := decodeLoose(raw)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	case bool:
		if t {
			return 1
		}
	}
	return 0
}
