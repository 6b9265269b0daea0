package stealth

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/mr-tron/base58"
)

// MetaAddressPrefix starts every textual meta-address.
const MetaAddressPrefix = "umbra1"

const checksumSize = 4

// MetaAddress is the public spend and view keys of an Identity.
type MetaAddress struct {
	Curve Curve
	Spend Point
	View  Point
}

// Initiate is shorthand for Initiate(m).
func (m *MetaAddress) Initiate() (*InitiatorOutput, error) {
	return Initiate(m)
}

// Equals reports whether both addresses carry the same keys on the same curve.
func (m *MetaAddress) Equals(other *MetaAddress) bool {
	return m.Curve.Name() == other.Curve.Name() &&
		m.Spend.Equals(other.Spend) &&
		m.View.Equals(other.View)
}

// String encodes the address as
// "umbra1" || base58(crc32-le(payload) || payload), where
// payload = curve id || spend || view.
func (m *MetaAddress) String() string {
	id, err := curveID(m.Curve)
	if err != nil {
		panic(err)
	}

	payload := []byte{id}
	payload = append(payload, m.Spend.Encode()...)
	payload = append(payload, m.View.Encode()...)

	b := make([]byte, checksumSize, checksumSize+len(payload))
	binary.LittleEndian.PutUint32(b, crc32.ChecksumIEEE(payload))
	b = append(b, payload...)
	return MetaAddressPrefix + base58.Encode(b)
}

// ParseMetaAddress decodes the output of MetaAddress.String.
func ParseMetaAddress(s string) (*MetaAddress, error) {
	if !strings.HasPrefix(s, MetaAddressPrefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidMetaAddress, MetaAddressPrefix)
	}

	data, err := base58.Decode(strings.TrimPrefix(s, MetaAddressPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMetaAddress, err)
	}

	if len(data) < checksumSize+1 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMetaAddress, errInputBytesTooShort)
	}

	sum := make([]byte, checksumSize)
	binary.LittleEndian.PutUint32(sum, crc32.ChecksumIEEE(data[checksumSize:]))
	if !bytes.Equal(sum, data[:checksumSize]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidMetaAddress)
	}

	reader := bytes.NewBuffer(data[checksumSize:])
	curve, err := curveFromID(reader.Next(1)[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMetaAddress, err)
	}

	pointLen := curve.CompressedPointSize()
	if reader.Len() != 2*pointLen {
		return nil, fmt.Errorf("%w: want %d key bytes, got %d", ErrInvalidMetaAddress, 2*pointLen, reader.Len())
	}

	spend, err := curve.DecodeToPoint(reader.Next(pointLen))
	if err != nil {
		return nil, fmt.Errorf("%w: spend key: %w", ErrInvalidMetaAddress, err)
	}

	view, err := curve.DecodeToPoint(reader.Next(pointLen))
	if err != nil {
		return nil, fmt.Errorf("%w: view key: %w", ErrInvalidMetaAddress, err)
	}

	return &MetaAddress{
		Curve: curve,
		Spend: spend,
		View:  view,
	}, nil
}
