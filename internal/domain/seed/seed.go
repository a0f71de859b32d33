// Package seed holds the activity dataset the registry starts from.
//
// The dataset is a JSON object mapping activity name to its record. It is
// validated against an embedded JSON Schema before use, whether it comes
// from the binary or from an operator-supplied file.
package seed

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/okian/mergington/internal/domain/types"
	"github.com/xeipuuv/gojsonschema"
)

// Sentinel kinds for seed errors.
var (
	ErrInvalidSeed = errors.New("invalid seed dataset")
	ErrReadSeed    = errors.New("read seed dataset failed")
)

//go:embed activities.json
var defaultDataset []byte

//go:embed activities.schema.json
var schemaDocument []byte

// Dataset maps activity name to its record.
type Dataset map[string]types.Activity

// Default returns a fresh copy of the embedded dataset.
func Default() Dataset {
	ds, err := Parse(defaultDataset)
	if err != nil {
		panic(fmt.Sprintf("embedded seed dataset is invalid: %v", err))
	}
	return ds
}

// Load reads and validates a dataset file.
func Load(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadSeed, err)
	}
	return Parse(raw)
}

// Parse validates raw against the dataset schema and decodes it.
func Parse(raw []byte) (Dataset, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaDocument),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidSeed, strings.Join(errs, "; "))
	}

	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	for name, a := range ds {
		if a.Participants == nil {
			a.Participants = []string{}
			ds[name] = a
		}
	}
	return ds, nil
}

