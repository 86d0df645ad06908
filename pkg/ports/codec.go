package ports

import "github.com/aretw0/tgadmin/pkg/domain"

// Codec converts between document bytes and Values.
type Codec interface {
	// Parse decodes data written in format.
	// Errors wrap domain.ErrParse or domain.ErrUnsupportedFormat.
	Parse(data []byte, format domain.Format) (domain.Value, error)

	// Serialize encodes v in format.
	// Errors wrap domain.ErrSerialize or domain.ErrUnsupportedFormat.
	Serialize(v domain.Value, format domain.Format) ([]byte, error)
}
