package orders

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"robotorder/lib/textutil"
	"strings"
)

// Order is one row of the order file.
type Order struct {
	Number  string
	Head    string
	Body    string
	Legs    string
	Address string
}

const (
	ColumnNumber  = "Order number"
	ColumnHead    = "Head"
	ColumnBody    = "Body"
	ColumnLegs    = "Legs"
	ColumnAddress = "Address"
)

// Columns is the fixed column set every order file must carry.
var Columns = []string{ColumnNumber, ColumnHead, ColumnBody, ColumnLegs, ColumnAddress}

var ErrMissingColumn = errors.New("order file is missing a required column")

// ErrInvalidNumber is returned for order numbers that cannot name a file,
// the number ends up in the receipt and preview file names.
var ErrInvalidNumber = errors.New("order number is not a valid file name")

func checkNumber(number string) error {
	if strings.ContainsAny(number, `/\`) || strings.Contains(number, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidNumber, number)
	}
	return nil
}

// Parse reads a header row followed by order rows. Extra columns are
// ignored, rows keep the order in which they appear.
func Parse(r io.Reader) ([]Order, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty order file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	positions := map[string]int{}
	for i, name := range header {
		key := textutil.NormalizeName(name)
		if _, seen := positions[key]; seen {
			continue
		}
		positions[key] = i
	}

	index := make([]int, len(Columns))
	for i, column := range Columns {
		pos, ok := positions[textutil.NormalizeName(column)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
		}
		index[i] = pos
	}

	var result []Order
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(result)+1, err)
		}
		err = checkNumber(record[index[0]])
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(result)+1, err)
		}
		result = append(result, Order{
			Number:  record[index[0]],
			Head:    record[index[1]],
			Body:    record[index[2]],
			Legs:    record[index[3]],
			Address: record[index[4]],
		})
	}
	return result, nil
}

// ReadCSV parses the order file at `path`.
func ReadCSV(path string) ([]Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
