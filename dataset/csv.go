package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

// DiagnosisLabels は診断ラベルから数値クラスへの対応表です。
var DiagnosisLabels = map[string]float64{
	"M": 1, // malignant
	"B": 0, // benign
}

// missingValues are the cell spellings treated as a missing value.
var missingValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

// LoadData はCSVファイルを読み込み、Datasetを返します。
//
// 末尾カンマによる空列 "Unnamed: 32" は削除され、diagnosis 列は M→1, B→0 に
// 変換されます。それ以外の値は NaN となり DataConversionWarning が発行されます。
// ファイルが存在しない場合のエラーは errors.Is(err, os.ErrNotExist) で判定できます。
func LoadData(path string) (*Dataset, error) {
	logger := log.GetLoggerWithName("dataset")

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load data from %s", path)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load data from %s", path)
	}

	r, c := ds.Dims()
	logger.Info("Loaded dataset",
		log.PathKey, path,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return ds, nil
}

// ReadCSV parses a header-first CSV stream into a Dataset, applying the same
// cleaning rules as LoadData.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrEmptyData, "csv has no header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	columns := headerNames(header)

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv record")
		}
		records = append(records, rec)
	}

	targetCol := lo.IndexOf(columns, TargetColumn)
	unmapped := map[string]int{}

	var data *mat.Dense
	if len(records) > 0 {
		data = mat.NewDense(len(records), len(columns), nil)
	}
	for i, rec := range records {
		for j, cell := range rec {
			cell = strings.TrimSpace(cell)
			if j == targetCol {
				v, ok := DiagnosisLabels[cell]
				if !ok {
					v = math.NaN()
					unmapped[cell]++
				}
				data.Set(i, j, v)
				continue
			}
			if lo.Contains(missingValues, cell) {
				data.Set(i, j, math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				// 行番号はヘッダーを含めた1始まり
				return nil, errors.NewValueErrorf("dataset.ReadCSV", "line %d, column %q: %v", i+2, columns[j], err)
			}
			data.Set(i, j, v)
		}
	}

	if len(unmapped) > 0 {
		errors.Warn(errors.NewDataConversionWarning("string", "float64",
			"diagnosis values outside {M, B} were set to NaN: "+formatCounts(unmapped)))
	}

	ds, err := New(columns, data, nil)
	if err != nil {
		return nil, err
	}
	if ds.HasColumn(SpuriousColumn) {
		return ds.Drop(SpuriousColumn)
	}
	return ds, nil
}

// headerNames names empty header cells "Unnamed: <pos>".
func headerNames(header []string) []string {
	return lo.Map(header, func(name string, i int) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return "Unnamed: " + strconv.Itoa(i)
		}
		return name
	})
}

func formatCounts(counts map[string]int) string {
	keys := lo.Keys(counts)
	slices.Sort(keys)
	parts := lo.Map(keys, func(k string, _ int) string {
		return strconv.Quote(k) + "×" + strconv.Itoa(counts[k])
	})
	return strings.Join(parts, ", ")
}
