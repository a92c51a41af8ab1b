package normalize

import (
	"marketintel/adapters/excel"
	"marketintel/domain/apps"
)

// Google Play dump column headers
const (
	colApp           = "App"
	colCategory      = "Category"
	colRating        = "Rating"
	colReviews       = "Reviews"
	colSize          = "Size"
	colInstalls      = "Installs"
	colType          = "Type"
	colPrice         = "Price"
	colContentRating = "Content Rating"
	colLastUpdated   = "Last Updated"
	colCurrentVer    = "Current Ver"
	colAndroidVer    = "Android Ver"
)

var androidColumns = []struct {
	header string
	field  apps.Field
}{
	{colCategory, apps.FieldCategory},
	{colRating, apps.FieldRating},
	{colReviews, apps.FieldReviewCount},
	{colSize, apps.FieldSize},
	{colInstalls, apps.FieldInstalls},
	{colType, apps.FieldType},
	{colPrice, apps.FieldPrice},
	{colContentRating, apps.FieldContentRating},
	{colLastUpdated, apps.FieldLastUpdated},
	{colCurrentVer, apps.FieldCurrentVersion},
	{colAndroidVer, apps.FieldVersion},
}

// Android normalizes the packaged Google Play file. Columns missing from
// the file are left out of the table's field set.
func (n *Normalizer) Android(data *excel.ExcelData) apps.Table {
	table := apps.NewTable(apps.PlatformAndroid)
	if data == nil || !data.HasColumn(colApp) {
		n.logger.Warn("[Normalizer] android input has no %q column, returning empty table", colApp)
		return table
	}

	table.Fields[apps.FieldAppName] = true
	for _, c := range androidColumns {
		if data.HasColumn(c.header) {
			table.Fields[c.field] = true
		}
	}

	rows := make([]excel.RawRowData, 0, len(data.Rows))
	for _, row := range data.Rows {
		if row[colApp] == SentinelAppName {
			continue
		}
		rows = append(rows, row)
	}
	sentinels := len(data.Rows) - len(rows)
	rows = apps.DedupLast(rows, func(r excel.RawRowData) string { return r[colApp] })

	records := make([]apps.AppRecord, len(rows))
	var ratingSum float64
	var ratingCount int
	for i, row := range rows {
		records[i] = androidRecord(row)
		if v, ok := records[i].Rating.Get(); ok {
			ratingSum += v
			ratingCount++
		}
	}

	if ratingCount > 0 {
		mean := ratingSum / float64(ratingCount)
		for i := range records {
			if !records[i].Rating.Valid {
				records[i].Rating = apps.Some(mean)
			}
		}
	}

	table, dropped := finish(table, records)
	n.logger.Info("[Normalizer] android: %d rows in, %d records out (sentinel=%d, unnamed=%d)",
		len(data.Rows), table.Len(), sentinels, dropped)
	return table
}

func androidRecord(row excel.RawRowData) apps.AppRecord {
	rec := apps.AppRecord{
		RawName:        row[colApp],
		Category:       row[colCategory],
		Rating:         ParseRating(row[colRating]),
		ReviewCount:    ParseCount(row[colReviews]),
		Installs:       ParseInstalls(row[colInstalls]),
		Price:          ParsePrice(row[colPrice]),
		SizeMB:         ParseSize(row[colSize]),
		Type:           row[colType],
		ContentRating:  row[colContentRating],
		Version:        row[colAndroidVer],
		CurrentVersion: row[colCurrentVer],
		LastUpdated:    ParseDate(row[colLastUpdated]),
		Platform:       apps.PlatformAndroid,
	}
	if rec.Type == "" || rec.Type == "NaN" {
		rec.Type = apps.TypeFree
	}
	if rec.ContentRating == "" {
		rec.ContentRating = apps.DefaultContentRating
	}
	return rec
}
