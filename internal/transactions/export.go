package transactions

import (
	"bytes"
	"encoding/csv"
	"encoding/json"

	"gopkg.in/yaml.v3"

	apperrors "expensely/internal/errors"
)

// Encoder renders a collection in one export format.
type Encoder interface {
	ContentType() string
	Extension() string
	Encode(records []Record) ([]byte, error)
}

// EncoderFor returns the encoder registered for format.
func EncoderFor(format string) (Encoder, error) {
	switch format {
	case "csv":
		return CSVEncoder{}, nil
	case "json", "":
		return JSONEncoder{}, nil
	case "yaml", "yml":
		return YAMLEncoder{}, nil
	}
	return nil, apperrors.ErrUnsupportedFormat
}

// Export renders records in format (csv, json or yaml).
func Export(records []Record, format string) ([]byte, Encoder, error) {
	enc, err := EncoderFor(format)
	if err != nil {
		return nil, nil, err
	}
	out, err := enc.Encode(records)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return out, enc, nil
}

// CSVEncoder writes id,date,category,amount,notes,receipt rows with a header.
type CSVEncoder struct{}

func (CSVEncoder) ContentType() string { return "text/csv" }
func (CSVEncoder) Extension() string   { return "csv" }

func (CSVEncoder) Encode(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "date", "category", "amount", "notes", "has_receipt"}); err != nil {
		return nil, err
	}
	for _, r := range records {
		hasReceipt := "false"
		if r.ReceiptURL != "" {
			hasReceipt = "true"
		}
		row := []string{r.ID, string(r.Date), r.Category, r.Amount.String(), r.Notes, hasReceipt}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// JSONEncoder writes the collection exactly as it is stored.
type JSONEncoder struct{}

func (JSONEncoder) ContentType() string { return "application/json" }
func (JSONEncoder) Extension() string   { return "json" }

func (JSONEncoder) Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}

type recordYAML struct {
	ID       string `yaml:"id"`
	Date     string `yaml:"date"`
	Category string `yaml:"category"`
	Amount   string `yaml:"amount"`
	Notes    string `yaml:"notes,omitempty"`
	Receipt  bool   `yaml:"has_receipt"`
}

// YAMLEncoder writes a YAML sequence; receipts are reduced to a flag.
type YAMLEncoder struct{}

func (YAMLEncoder) ContentType() string { return "application/yaml" }
func (YAMLEncoder) Extension() string   { return "yaml" }

func (YAMLEncoder) Encode(records []Record) ([]byte, error) {
	out := make([]recordYAML, 0, len(records))
	for _, r := range records {
		out = append(out, recordYAML{
			ID:       r.ID,
			Date:     string(r.Date),
			Category: r.Category,
			Amount:   r.Amount.String(),
			Notes:    r.Notes,
			Receipt:  r.ReceiptURL != "",
		})
	}
	return yaml.Marshal(out)
}
