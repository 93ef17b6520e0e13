// Package codec turns a user's records into downloadable artifacts and parses
// previously exported JSON documents back into an import payload. Nothing in
// this package performs I/O; the export time is always passed in.
package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/hikmacash/internal/domain"
)

// Format names an export representation.
type Format string

const (
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
)

// DefaultEnterpriseName prefixes artifact file names when the user has no
// enterprise name. Kept for compatibility with earlier exports.
const DefaultEnterpriseName = "HikmaCash"

const (
	ContentTypeJSON = "application/json"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const isoDate = "2006-01-02"

// Artifact is an encoded export ready to be stored.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ParseFormat validates a requested format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatExcel:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFormat, s)
	}
}

// Build encodes snap in the given format and names the result.
func Build(format Format, snap domain.Snapshot, exportedAt time.Time) (*Artifact, error) {
	switch format {
	case FormatJSON:
		data, err := EncodeJSON(snap)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			FileName:    JSONFileName(snap.EnterpriseName, exportedAt),
			ContentType: ContentTypeJSON,
			Data:        data,
		}, nil
	case FormatExcel:
		data, err := EncodeExcel(snap, exportedAt)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			FileName:    ExcelFileName(snap.EnterpriseName, exportedAt),
			ContentType: ContentTypeXLSX,
			Data:        data,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, string(format))
	}
}

// JSONFileName returns "{name}_export_{YYYY-MM-DD}.json".
func JSONFileName(enterpriseName string, exportedAt time.Time) string {
	return fmt.Sprintf("%s_export_%s.json", filePrefix(enterpriseName), exportedAt.Format(isoDate))
}

// ExcelFileName returns "{name}_{YYYY-MM-DD}.xlsx".
func ExcelFileName(enterpriseName string, exportedAt time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", filePrefix(enterpriseName), exportedAt.Format(isoDate))
}

// filePrefix keeps the name usable as a single storage key segment.
func filePrefix(enterpriseName string) string {
	name := strings.TrimSpace(enterpriseName)
	if name == "" {
		return DefaultEnterpriseName
	}
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}
