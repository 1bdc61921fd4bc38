package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/subcal/internal/model"
)

// PayloadVersion is written into exported payloads.
const PayloadVersion = 1

// Record is the persisted shape of a subscription.
type Record struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Price     Amount `json:"price" yaml:"price"`
	Currency  string `json:"currency" yaml:"currency"`
	Cycle     string `json:"cycle" yaml:"cycle"`
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Link      string `json:"link,omitempty" yaml:"link,omitempty"`
	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Payload is the export envelope. Decoders also accept a bare list of
// records and a {"data": {"subscriptions": [...]}} wrapper.
type Payload struct {
	Version       int      `json:"version" yaml:"version"`
	ExportedAt    string   `json:"exportedAt,omitempty" yaml:"exportedAt,omitempty"`
	Subscriptions []Record `json:"subscriptions" yaml:"subscriptions"`
}

// Amount is a price that decodes from either a number or a numeric string.
// The raw text is kept so validation can report what was supplied.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// MarshalJSON writes numeric amounts as JSON numbers.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.isNumber() {
		return []byte(a), nil
	}
	return json.Marshal(string(a))
}

func (a Amount) isNumber() bool {
	s := string(a)
	if s == "" || !(s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("price: expected a scalar at line %d", node.Line)
	}
	*a = Amount(node.Value)
	return nil
}

// MarshalYAML writes numeric amounts as YAML numbers.
func (a Amount) MarshalYAML() (any, error) {
	if a.isNumber() {
		if f, err := strconv.ParseFloat(string(a), 64); err == nil {
			return f, nil
		}
	}
	return string(a), nil
}

// NewRecord converts a subscription into its persisted shape.
func NewRecord(s model.Subscription) Record {
	in := InputFrom(s)
	return Record{
		ID:        in.ID,
		Name:      in.Name,
		Price:     Amount(in.Price),
		Currency:  in.Currency,
		Cycle:     in.Cycle,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Color:     in.Color,
		Link:      in.Link,
		CreatedAt: in.CreatedAt,
	}
}

// NewPayload wraps subscriptions in an export envelope.
func NewPayload(subs []model.Subscription, exportedAt time.Time) Payload {
	p := Payload{
		Version:       PayloadVersion,
		ExportedAt:    exportedAt.UTC().Format(time.RFC3339),
		Subscriptions: make([]Record, 0, len(subs)),
	}
	for _, s := range subs {
		p.Subscriptions = append(p.Subscriptions, NewRecord(s))
	}
	return p
}

// Input returns the record as raw input. Imported files fill a missing
// currency with USD and a missing cycle with monthly.
func (r Record) Input() Input {
	currency := strings.TrimSpace(r.Currency)
	if currency == "" {
		currency = "USD"
	}
	cycle := strings.TrimSpace(r.Cycle)
	if cycle == "" {
		cycle = string(model.CycleMonthly)
	}
	return Input{
		ID:        r.ID,
		Name:      r.Name,
		Price:     string(r.Price),
		Currency:  currency,
		Cycle:     cycle,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Color:     r.Color,
		Link:      r.Link,
		CreatedAt: r.CreatedAt,
	}
}

type wrapped struct {
	Subscriptions *[]Record `json:"subscriptions" yaml:"subscriptions"`
	Data          *struct {
		Subscriptions *[]Record `json:"subscriptions" yaml:"subscriptions"`
	} `json:"data" yaml:"data"`
}

func (w wrapped) records() ([]Record, error) {
	switch {
	case w.Subscriptions != nil:
		return *w.Subscriptions, nil
	case w.Data != nil && w.Data.Subscriptions != nil:
		return *w.Data.Subscriptions, nil
	}
	return nil, fmt.Errorf("no subscriptions list found")
}

// DecodeJSON reads records from any of the accepted JSON layouts.
func DecodeJSON(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []Record
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decoding json list: %w", err)
		}
		return list, nil
	}
	var w wrapped
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return w.records()
}

// DecodeYAML reads records from any of the accepted YAML layouts.
func DecodeYAML(data []byte) ([]Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("decoding yaml: empty document")
	}
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var list []Record
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("decoding yaml list: %w", err)
		}
		return list, nil
	}
	var w wrapped
	if err := root.Decode(&w); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return w.records()
}
