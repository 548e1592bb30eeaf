// Package parser reads attack scenarios (secret, error rate, seed) for the driver.
package parser

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Scenario is one oracle configuration to attack.
type Scenario struct {
	Secret    []uint8
	ErrorRate float64
	Seed      uint64
	HasSeed   bool
}

// ParseBits parses a bit string. Accepted forms: "10110", "1,0,1,1,0",
// "[1 0 1 1 0]" and "1 0 1 1 0".
func ParseBits(s string) ([]uint8, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty bit string")
	}

	var fields []string
	if strings.ContainsAny(s, ", \t") {
		fields = strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
	} else {
		fields = strings.Split(s, "")
	}

	bits := make([]uint8, 0, len(fields))
	for i, f := range fields {
		switch f {
		case "0":
			bits = append(bits, 0)
		case "1":
			bits = append(bits, 1)
		default:
			return nil, fmt.Errorf("invalid bit %q at position %d", f, i)
		}
	}
	return bits, nil
}

// ParseScenariosFromJSON parses a JSON file holding one scenario object or an
// array of them.
//
// Expected format:
//
//	[
//	  {"secret": "10110", "error_rate": 0.125, "seed": 7},
//	  {"secret": [1, 0, 1], "error_rate": "0.1"}
//	]
func ParseScenariosFromJSON(jsonFile string) ([]*Scenario, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	return DecodeScenarios(file)
}

// DecodeScenarios is ParseScenariosFromJSON for an arbitrary reader.
func DecodeScenarios(r io.Reader) ([]*Scenario, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber() // Keep seeds exact

	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var items []map[string]interface{}
	switch v := raw.(type) {
	case map[string]interface{}:
		items = []map[string]interface{}{v}
	case []interface{}:
		for i, it := range v {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("scenario %d: expected object, got %T", i, it)
			}
			items = append(items, m)
		}
	default:
		return nil, fmt.Errorf("expected object or array, got %T", raw)
	}

	scenarios := make([]*Scenario, 0, len(items))
	for i, item := range items {
		var err error
		sc := &Scenario{}

		secretVal, ok := item["secret"]
		if !ok {
			return nil, fmt.Errorf("scenario %d: missing secret field", i)
		}
		sc.Secret, err = parseSecret(secretVal)
		if err != nil {
			return nil, fmt.Errorf("scenario %d: failed to parse secret: %w", i, err)
		}

		rateVal, ok := item["error_rate"]
		if !ok {
			return nil, fmt.Errorf("scenario %d: missing error_rate field", i)
		}
		sc.ErrorRate, err = parseFloat(rateVal)
		if err != nil {
			return nil, fmt.Errorf("scenario %d: failed to parse error_rate: %w", i, err)
		}

		if seedVal, ok := item["seed"]; ok {
			sc.Seed, err = parseUint(seedVal)
			if err != nil {
				return nil, fmt.Errorf("scenario %d: failed to parse seed: %w", i, err)
			}
			sc.HasSeed = true
		}

		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// ParseScenariosFromCSV parses a CSV file with a header row containing
// "secret" and "error_rate" and optionally "seed".
func ParseScenariosFromCSV(csvFile string) ([]*Scenario, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	secretIdx, rateIdx, seedIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "secret":
			secretIdx = i
		case "error_rate":
			rateIdx = i
		case "seed":
			seedIdx = i
		}
	}
	if secretIdx == -1 || rateIdx == -1 {
		return nil, fmt.Errorf("missing required columns: secret or error_rate")
	}

	var scenarios []*Scenario
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		sc := &Scenario{}
		if sc.Secret, err = ParseBits(record[secretIdx]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse secret: %w", line, err)
		}
		if sc.ErrorRate, err = strconv.ParseFloat(strings.TrimSpace(record[rateIdx]), 64); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse error_rate: %w", line, err)
		}
		if seedIdx >= 0 && strings.TrimSpace(record[seedIdx]) != "" {
			if sc.Seed, err = strconv.ParseUint(strings.TrimSpace(record[seedIdx]), 10, 64); err != nil {
				return nil, fmt.Errorf("line %d: failed to parse seed: %w", line, err)
			}
			sc.HasSeed = true
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// parseSecret accepts a bit string or a JSON array of 0/1 numbers.
func parseSecret(val interface{}) ([]uint8, error) {
	switch v := val.(type) {
	case string:
		return ParseBits(v)
	case []interface{}:
		bits := make([]uint8, len(v))
		for i, e := range v {
			n, err := parseUint(e)
			if err != nil {
				return nil, err
			}
			if n > 1 {
				return nil, fmt.Errorf("invalid bit %d at position %d", n, i)
			}
			bits[i] = uint8(n)
		}
		return bits, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}

func parseFloat(val interface{}) (float64, error) {
	switch v := val.(type) {
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("unsupported type: %T", val)
	}
}

func parseUint(val interface{}) (uint64, error) {
	switch v := val.(type) {
	case json.Number:
		return strconv.ParseUint(string(v), 10, 64)
	case string:
		return strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return 0, fmt.Errorf("invalid unsigned integer: %v", v)
		}
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("unsupported type: %T", val)
	}
}
