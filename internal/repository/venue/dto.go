package venue

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/kailas-cloud/manara/internal/db"
	"github.com/kailas-cloud/manara/internal/domain"
)

// Metadata hash fields. Everything else on the hash lands in VenueMetadata.Extra.
const (
	fieldName       = "name"
	fieldCategory   = "category"
	fieldLocation   = "location"
	fieldRating     = "rating"
	fieldPriceRange = "price_range"
	fieldEntryFee   = "entry_fee"
)

// buildHashFields flattens a venue and its embedding into HSET fields.
func buildHashFields(v domain.VenueRecord, vector []float32) map[string]string {
	m := make(map[string]string, 8+len(v.Metadata.Extra))
	for k, val := range v.Metadata.Extra {
		m[k] = val
	}
	m[db.FieldDocument] = v.Document
	m[db.FieldVector] = vectorToBytes(vector)
	setIf(m, fieldName, v.Metadata.Name)
	setIf(m, fieldCategory, v.Metadata.Category)
	setIf(m, fieldLocation, v.Metadata.Location)
	setIf(m, fieldPriceRange, v.Metadata.PriceRange)
	setIf(m, fieldEntryFee, v.Metadata.EntryFee)
	if v.Metadata.HasRating {
		m[fieldRating] = strconv.FormatFloat(v.Metadata.Rating, 'f', -1, 64)
	}
	return m
}

func setIf(m map[string]string, k, v string) {
	if v != "" {
		m[k] = v
	}
}

// parseHashFields rebuilds document and metadata from search entry fields.
func parseHashFields(fields map[string]string) (string, domain.VenueMetadata) {
	var doc string
	var md domain.VenueMetadata
	for k, v := range fields {
		switch k {
		case db.FieldDocument:
			doc = v
		case db.FieldVector, db.FieldVectorScore:
		case fieldName:
			md.Name = v
		case fieldCategory:
			md.Category = v
		case fieldLocation:
			md.Location = v
		case fieldPriceRange:
			md.PriceRange = v
		case fieldEntryFee:
			md.EntryFee = v
		case fieldRating:
			if r, err := strconv.ParseFloat(v, 64); err == nil {
				md.Rating = r
				md.HasRating = true
			}
		default:
			if md.Extra == nil {
				md.Extra = make(map[string]string)
			}
			md.Extra[k] = v
		}
	}
	return doc, md
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
