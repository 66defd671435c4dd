package tuning

import (
	"encoding/csv"
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

// LoadSettings returns the default config overlaid by the "Field,value"
// records of each CSV file in turn, clamped to range. Missing files and bad
// records are reported through warn and skipped.
func LoadSettings(warn func(string), paths ...string) Config {
	c := DefaultConfig()
	for _, path := range paths {
		if records, err := readCSV(path); err == nil {
			applyRecords(&c, records, warn)
		} else {
			warn(err.Error())
		}
	}
	return c.Clamp()
}

// apply CSV records
func applyRecords(c *Config, records [][]string, warn func(string)) {
	v := reflect.ValueOf(c).Elem()
	for _, rec := range records {
		success := false
		if len(rec) == 2 {
			if field := v.FieldByName(rec[0]); field.IsValid() {
				switch field.Kind() {
				case reflect.Float64:
					if f, err := strconv.ParseFloat(rec[1], 64); err == nil {
						field.SetFloat(f)
						success = true
					}
				case reflect.Int:
					if i, err := strconv.Atoi(rec[1]); err == nil {
						field.SetInt(int64(i))
						success = true
					}
				case reflect.Bool:
					if b, err := strconv.ParseBool(rec[1]); err == nil {
						field.SetBool(b)
						success = true
					}
				}
			}
		}
		if !success {
			warn(fmt.Sprintf("bad settings record: %v", rec))
		}
	}
}

// WriteSettings saves every field of c as a CSV record.
func WriteSettings(path string, c Config) error {
	v := reflect.ValueOf(c)
	records := make([][]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		records = append(records, []string{v.Type().Field(i).Name, fmt.Sprint(v.Field(i).Interface())})
	}
	return errors.Wrap(writeCSV(path, records), "writing settings")
}

// read records from a CSV file
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.Comment = '#'
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// write records to a CSV file
func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return csv.NewWriter(f).WriteAll(records)
}
