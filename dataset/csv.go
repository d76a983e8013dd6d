package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/recall"
)

var ratingsHeader = []string{"consumer_id", "association_id", "rating"}

// ReadRatingsCSV 读取长格式评分：consumer_id,association_id,rating。
// 首行为表头；列数不符或数值无法解析属于配置错误。
// 取值（1..5 的整数）由 recall.NewUtilityMatrix 校验，不合法的评分在那里被丢弃。
func ReadRatingsCSV(r io.Reader) ([]recall.RatingRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(ratingsHeader)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []recall.RatingRecord{}, nil
	}
	if err != nil {
		return nil, invalidCSV(err)
	}
	for i, col := range ratingsHeader {
		if strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")) != col {
			return nil, invalidCSV(fmt.Errorf("unexpected header %v", header))
		}
	}

	out := make([]recall.RatingRecord, 0, 1024)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalidCSV(err)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, invalidCSV(fmt.Errorf("line %d: association_id: %w", line, err))
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, invalidCSV(fmt.Errorf("line %d: rating: %w", line, err))
		}
		out = append(out, recall.RatingRecord{
			ConsumerID:    strings.TrimSpace(rec[0]),
			AssociationID: id,
			Rating:        rating,
		})
	}
	return out, nil
}

// WriteRatingsCSV 以 ReadRatingsCSV 可读的格式写出评分。
func WriteRatingsCSV(w io.Writer, records []recall.RatingRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ratingsHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ConsumerID,
			strconv.FormatInt(r.AssociationID, 10),
			strconv.FormatFloat(r.Rating, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func invalidCSV(err error) error {
	return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "dataset: ratings csv: "+err.Error())
}
