package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// LoadCSV reads a labeled dataset from a CSV file with one sample per
// row:
//
//	label,feature0,feature1,...
//
// A leading header row is skipped when its first field is not an
// integer. Labels must lie in [0, numClasses) and become one-hot
// targets. When scale is nonzero, every feature is divided by it
// (e.g. 255 to normalize 8-bit pixel data to [0, 1]).
func LoadCSV(path string, numClasses int, scale float64) (Dataset, error) {
	if numClasses <= 0 {
		return nil, fmt.Errorf("numClasses must be positive, got %d", numClasses)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	// Header detection: a non-numeric first field means column names.
	if _, err := strconv.Atoi(records[0][0]); err != nil {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	data := make(Dataset, 0, len(records))
	width := len(records[0]) - 1
	for i, record := range records {
		if len(record) != width+1 {
			return nil, fmt.Errorf("row %d: got %d fields, want %d", i+1, len(record), width+1)
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid label: %w", i+1, err)
		}
		if label < 0 || label >= numClasses {
			return nil, fmt.Errorf("row %d: label %d out of range [0, %d)", i+1, label, numClasses)
		}

		input := make([]float64, width)
		for j := 0; j < width; j++ {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w", i+1, j+1, err)
			}
			if scale != 0 {
				v /= scale
			}
			input[j] = v
		}

		data = append(data, Sample{Input: input, Target: OneHot(label, numClasses)})
	}

	return data, nil
}
