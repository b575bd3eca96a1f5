package encoding

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

const (
	// Bounds of the GMT offset field in 15 minute intervals.
	minOffset15 = -48
	maxOffset15 = 52
)

// MarshalBothByteOrders32 converts a uint32 value into an 8-byte field that
// encodes the value in both little‑endian and big‑endian orders.
func MarshalBothByteOrders32(val uint32) [8]byte {
	var data [8]byte
	binary.LittleEndian.PutUint32(data[0:4], val)
	binary.BigEndian.PutUint32(data[4:8], val)
	return data
}

// UnmarshalUint32LSBMSB decodes an 8-byte both-byte-order field. Only the little-endian
// half is used; the big-endian mirror is ignored because some writers get it wrong.
func UnmarshalUint32LSBMSB(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data[0:4])
}

// MarshalBothByteOrders16 converts a uint16 value into a 4-byte field that
// encodes the value in both little‑endian and big‑endian orders.
// For example, for the value 0x1234, it returns [0x34, 0x12, 0x12, 0x34].
func MarshalBothByteOrders16(val uint16) [4]byte {
	var data [4]byte
	binary.LittleEndian.PutUint16(data[0:2], val)
	binary.BigEndian.PutUint16(data[2:4], val)
	return data
}

// UnmarshalUint16LSBMSB decodes a 4-byte both-byte-order field from its little-endian half.
func UnmarshalUint16LSBMSB(data []byte) uint16 {
	return binary.LittleEndian.Uint16(data[0:2])
}

// MarshalDateTime converts a time.Time into a 17-byte field following ISO9660 8.4.26.1.
// The first 16 bytes contain ASCII digits in the format:
//
//	YYYY MM DD hh mm ss cc
//
// and the 17th byte is the time zone offset (in 15-minute intervals) as a signed integer.
// Note: This format is used in Volume Descriptors
func MarshalDateTime(t time.Time) ([17]byte, error) {
	var out [17]byte

	// If zero time => ASCII '0' x16 + final offset=0 => "unspecified"
	if t.IsZero() {
		for i := 0; i < 16; i++ {
			out[i] = '0'
		}
		return out, nil
	}

	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	hundredths := t.Nanosecond() / 10_000_000
	s := fmt.Sprintf("%04d%02d%02d%02d%02d%02d%02d", y, int(m), d, hh, mm, ss, hundredths)
	copy(out[:16], s)

	_, offsetSec := t.Zone()
	offset15 := offsetSec / 900
	if offset15 < minOffset15 || offset15 > maxOffset15 {
		return [17]byte{}, fmt.Errorf("offset %d out of ISO9660 bounds", offset15)
	}
	out[16] = byte(int8(offset15))
	return out, nil
}

// UnmarshalDateTime converts a 17-byte ISO9660 date/time field into a time.Time.
// It expects the first 16 bytes to be ASCII digits representing
// YYYY MM DD hh mm ss cc, and the 17th byte as the offset in 15-minute intervals.
//
// A field of all '0' digits, all NUL bytes or all spaces is unspecified and yields the zero
// time. Non-digit characters are an integer parse error. Out of range values fall back the same
// way as UnmarshalRecordingDateTime so that a damaged timestamp never fails a mount.
// Note: This format is used in Volume Descriptors
func UnmarshalDateTime(b [17]byte) (time.Time, error) {
	if unspecified(b[:16]) {
		return time.Time{}, nil
	}

	var fields [7]int
	widths := [7]int{4, 2, 2, 2, 2, 2, 2}
	names := [7]string{"year", "month", "day", "hour", "minute", "second", "hundredths"}
	offset := 0
	for i, w := range widths {
		raw := string(b[offset : offset+w])
		for _, c := range raw {
			if c < '0' || c > '9' {
				return time.Time{}, isoerr.IntegerParse("date/time "+names[i], raw, strconv.ErrSyntax)
			}
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return time.Time{}, isoerr.IntegerParse("date/time "+names[i], raw, err)
		}
		fields[i] = v
		offset += w
	}

	return buildTime(
		fields[0], fields[1], fields[2],
		fields[3], fields[4], fields[5], fields[6]*10_000_000,
		int8(b[16]),
	), nil
}

func unspecified(b []byte) bool {
	for _, fill := range []byte{'0', 0x00, ' '} {
		all := true
		for _, c := range b {
			if c != fill {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// MarshalRecordingDateTime converts a time.Time into a 7-byte field according
// to Table 9 – Recording Date and Time. It returns an error if the year is out of range.
// Note: This type format is used in DirectoryRecords
func MarshalRecordingDateTime(t time.Time) ([7]byte, error) {
	var b [7]byte
	if t.IsZero() {
		return b, nil
	}

	year, month, day := t.Date()
	hour, minute, second := t.Clock()

	// The field stores the number of years since 1900, so valid years are 1900–2155.
	if year < 1900 || year > 2155 {
		return b, fmt.Errorf("year %d out of range for Recording Date and Time (must be between 1900 and 2155)", year)
	}
	b[0] = byte(year - 1900)
	b[1] = byte(month)
	b[2] = byte(day)
	b[3] = byte(hour)
	b[4] = byte(minute)
	b[5] = byte(second)

	_, offsetSec := t.Zone()
	offset15 := offsetSec / (15 * 60)
	if offset15 < minOffset15 || offset15 > maxOffset15 {
		return b, fmt.Errorf("time zone offset %d (in 15-minute intervals: %d) is out of allowed range", offsetSec, offset15)
	}
	b[6] = byte(int8(offset15))
	return b, nil
}

// UnmarshalRecordingDateTime converts a 7-byte Recording Date and Time field into a time.Time.
// The fields are interpreted as follows:
//
//	Byte 1: years since 1900,
//	Byte 2: month (1-12),
//	Byte 3: day,
//	Byte 4: hour,
//	Byte 5: minute,
//	Byte 6: second,
//	Byte 7: offset from GMT in 15-minute intervals (as a signed value).
//
// Invalid components never fail: an invalid month reads as January, an impossible date as
// the zero date, an impossible clock as midnight and an out of range offset as UTC. An all
// zero field therefore decodes to the zero time.
// Note: This type format is used in DirectoryRecords
func UnmarshalRecordingDateTime(b [7]byte) time.Time {
	return buildTime(
		int(b[0])+1900, int(b[1]), int(b[2]),
		int(b[3]), int(b[4]), int(b[5]), 0,
		int8(b[6]),
	)
}

func buildTime(year, month, day, hour, minute, second, nsec int, offset15 int8) time.Time {
	if month < 1 || month > 12 {
		month = 1
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		year, month, day = 1, 1, 1
	}
	if hour > 23 || minute > 59 || second > 59 || nsec > 999_999_999 {
		hour, minute, second, nsec = 0, 0, 0, 0
	}

	loc := time.UTC
	if offset15 != 0 && offset15 >= minOffset15 && offset15 <= maxOffset15 {
		loc = time.FixedZone("", int(offset15)*900)
	}
	if year == 1 && month == 1 && day == 1 {
		// The fallback date has no meaningful zone.
		loc = time.UTC
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, nsec, loc)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
