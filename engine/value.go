package engine

import (
	"strconv"
	"strings"
)

// Format is the mpv_format used to read or write a property.
type Format int

const (
	FormatNone      Format = 0
	FormatString    Format = 1
	FormatOSDString Format = 2
	FormatFlag      Format = 3
	FormatInt64     Format = 4
	FormatDouble    Format = 5
	FormatNode      Format = 6
	FormatNodeArray Format = 7
	FormatNodeMap   Format = 8
	FormatByteArray Format = 9
)

// Value is a typed property value. The zero value has FormatNone.
type Value struct {
	Format Format
	flag   bool
	i      int64
	d      float64
	s      string
}

func Flag(b bool) Value       { return Value{Format: FormatFlag, flag: b} }
func Int64(i int64) Value     { return Value{Format: FormatInt64, i: i} }
func Double(d float64) Value  { return Value{Format: FormatDouble, d: d} }
func String(s string) Value   { return Value{Format: FormatString, s: s} }
func (v Value) IsEmpty() bool { return v.Format == FormatNone }

// Bool returns the value as a flag. Strings "yes" and "true" count as set.
func (v Value) Bool() bool {
	switch v.Format {
	case FormatFlag:
		return v.flag
	case FormatInt64:
		return v.i != 0
	case FormatDouble:
		return v.d != 0
	case FormatString, FormatOSDString:
		return v.s == "yes" || v.s == "true"
	default:
		return false
	}
}

// Int returns the value as an integer, truncating doubles.
func (v Value) Int() int64 {
	switch v.Format {
	case FormatInt64:
		return v.i
	case FormatDouble:
		return int64(v.d)
	case FormatFlag:
		if v.flag {
			return 1
		}
		return 0
	case FormatString, FormatOSDString:
		n, _ := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		return n
	default:
		return 0
	}
}

// Float returns the value as a double.
func (v Value) Float() float64 {
	switch v.Format {
	case FormatDouble:
		return v.d
	case FormatInt64:
		return float64(v.i)
	case FormatFlag:
		if v.flag {
			return 1
		}
		return 0
	case FormatString, FormatOSDString:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		return f
	default:
		return 0
	}
}

// String renders the value the way mpv expects it in a string command argument.
func (v Value) String() string {
	switch v.Format {
	case FormatFlag:
		if v.flag {
			return "yes"
		}
		return "no"
	case FormatInt64:
		return strconv.FormatInt(v.i, 10)
	case FormatDouble:
		return strconv.FormatFloat(v.d, 'f', -1, 64)
	case FormatString, FormatOSDString:
		return v.s
	default:
		return ""
	}
}

// Convert returns the value re-expressed in format, used by backends that only carry strings or doubles.
func (v Value) Convert(format Format) Value {
	if v.Format == format || v.Format == FormatNone {
		return v
	}
	switch format {
	case FormatFlag:
		return Flag(v.Bool())
	case FormatInt64:
		return Int64(v.Int())
	case FormatDouble:
		return Double(v.Float())
	case FormatString, FormatOSDString:
		return Value{Format: format, s: v.String()}
	default:
		return v
	}
}
