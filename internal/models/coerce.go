package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/claude/carga/internal/numeric"
)

// Kg is a weight in kilograms. It decodes from a JSON number or a numeric
// string; null, garbage and negative values decode as 0.
type Kg float64

func (k *Kg) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		*k = 0
		return nil
	}
	*k = Kg(numeric.ParseNonNegative(raw, 0))
	return nil
}

// RepCount is the free-form rep text typed by the user ("10", "8-12").
// Numbers decode to their decimal text.
type RepCount string

func (r *RepCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RepCount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*r = ""
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		*r = ""
		return nil
	}
	*r = RepCount(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

type logAlias Log

// UnmarshalJSON decodes a log document. Timestamps may be RFC3339 strings,
// epoch milliseconds, or {seconds, nanoseconds} objects as written by
// Firestore exports. cargaAcumulada is kept only when it is a JSON number.
func (l *Log) UnmarshalJSON(data []byte) error {
	aux := struct {
		*logAlias
		StartedAt    json.RawMessage `json:"horarioInicio"`
		FinishedAt   json.RawMessage `json:"horarioFim"`
		CachedVolume json.RawMessage `json:"cargaAcumulada"`
	}{logAlias: (*logAlias)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.StartedAt = parseTimestamp(aux.StartedAt)
	l.FinishedAt = parseTimestamp(aux.FinishedAt)
	l.CachedVolume = nil
	if raw := bytes.TrimSpace(aux.CachedVolume); len(raw) > 0 && string(raw) != "null" {
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			l.CachedVolume = &f
		}
	}
	return nil
}

type bodyweightAlias BodyweightEntry

func (b *BodyweightEntry) UnmarshalJSON(data []byte) error {
	aux := struct {
		*bodyweightAlias
		Date json.RawMessage `json:"data"`
	}{bodyweightAlias: (*bodyweightAlias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Date = time.Time{}
	if t := parseTimestamp(aux.Date); t != nil {
		b.Date = *t
	}
	return nil
}

// parseTimestamp returns nil for absent, null or unrecognised values.
func parseTimestamp(raw json.RawMessage) *time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		return nil
	case '{':
		var ts struct {
			Seconds      *int64 `json:"seconds"`
			Nanoseconds  int64  `json:"nanoseconds"`
			USeconds     *int64 `json:"_seconds"`
			UNanoseconds int64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(raw, &ts); err != nil {
			return nil
		}
		var t time.Time
		switch {
		case ts.Seconds != nil:
			t = time.Unix(*ts.Seconds, ts.Nanoseconds).UTC()
		case ts.USeconds != nil:
			t = time.Unix(*ts.USeconds, ts.UNanoseconds).UTC()
		default:
			return nil
		}
		return &t
	default:
		ms, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return nil
		}
		t := time.UnixMilli(int64(ms)).UTC()
		return &t
	}
}
