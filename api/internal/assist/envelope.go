package assist

import "strings"

// Blob is inline binary content with its media type.
type Blob struct {
	Data     []byte
	MIMEType string
}

// Geo is a WGS84 coordinate pair.
type Geo struct {
	Lat float64
	Lng float64
}

// Envelope carries the payload of one call. Only one content mode is
// forwarded to the provider; binary data wins over text.
type Envelope struct {
	Text  string
	Blob  *Blob
	Geo   *Geo
	Query string
}

func (e Envelope) hasBlob() bool { return e.Blob != nil && len(e.Blob.Data) > 0 }

// content picks the single content mode for text/file operations.
func (e Envelope) content(op Operation) (string, *Blob, error) {
	if e.hasBlob() {
		return "", e.Blob, nil
	}
	if t := strings.TrimSpace(e.Text); t != "" {
		return t, nil, nil
	}
	return "", nil, inputError(op, "either text or a file is required")
}

// location picks coordinates or a free-form query for lookups.
func (e Envelope) location(op Operation) (*Geo, string, error) {
	q := strings.TrimSpace(e.Query)
	if e.Geo == nil && q == "" {
		return nil, "", inputError(op, "coordinates or a search query are required")
	}
	return e.Geo, q, nil
}
