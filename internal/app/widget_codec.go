package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/EcMscS/Footnote/internal/domain"
)

// ReferenceDate is the epoch of widget timestamps. The widget extension
// decodes dates as seconds since this instant.
var ReferenceDate = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// WidgetEncoder turns widget entries into the bytes written to shared storage.
type WidgetEncoder interface {
	Encode(entries []domain.WidgetContent) ([]byte, error)
}

// WidgetCodec is the wire format shared with the widget reader: a compact
// JSON array of {"date","text","title","author"} objects in that key order.
// Equal input always produces equal bytes.
type WidgetCodec struct{}

type widgetWire struct {
	Date   float64 `json:"date"`
	Text   string  `json:"text"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
}

// Encode implements WidgetEncoder.
func (WidgetCodec) Encode(entries []domain.WidgetContent) ([]byte, error) {
	wire := make([]widgetWire, len(entries))
	for i, e := range entries {
		wire[i] = widgetWire{
			Date:   secondsSinceReference(e.Date),
			Text:   e.Text,
			Title:  e.Title,
			Author: e.Author,
		}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(wire); err != nil {
		return nil, fmt.Errorf("encode widget content: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses bytes produced by Encode.
func (WidgetCodec) Decode(data []byte) ([]domain.WidgetContent, error) {
	var wire []widgetWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode widget content: %w", err)
	}

	out := make([]domain.WidgetContent, len(wire))
	for i, w := range wire {
		out[i] = domain.WidgetContent{
			Date:   timeFromReference(w.Date),
			Text:   w.Text,
			Title:  w.Title,
			Author: w.Author,
		}
	}

	return out, nil
}

// secondsSinceReference works on Unix seconds rather than time.Sub, whose
// Duration result saturates about 292 years from the reference date.
func secondsSinceReference(t time.Time) float64 {
	return float64(t.Unix()-ReferenceDate.Unix()) + float64(t.Nanosecond())/1e9
}

// timeFromReference rounds to the microsecond, the precision a float64
// second count keeps for present-day dates.
func timeFromReference(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	nanos := math.Round(frac*1e6) * 1e3

	return time.Unix(ReferenceDate.Unix()+int64(whole), int64(nanos)).UTC()
}
