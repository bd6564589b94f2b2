package ar

import (
	"strconv"
	"strings"

	"github.com/mpkgtools/mpkg/mpkgerr"
)

// Magic is the 8-byte archive header that opens every file this package
// writes and that Open validates before trusting the rest.
const Magic = "!<arch>\n"

const (
	headerSize  = 60
	fieldName   = 16
	fieldDate   = 12
	fieldUid    = 6
	fieldGid    = 6
	fieldMode   = 8
	fieldSize   = 10
	fieldFmag   = 2
	fmagLiteral = "`\n"

	stringTableName = "//"
)

// formatField left-justifies s within width, space-padding the remainder.
// It is a programmer error for s to already exceed width: that would mean
// a name, uid, or size overran the fixed-width ASCII encoding the spec
// mandates, and should have been caught earlier (long names route through
// the string table instead of this call).
func formatField(s string, width int) (string, error) {
	if len(s) > width {
		return "", mpkgerr.Programmer("ar: field %q exceeds width %d", s, width)
	}
	return s + strings.Repeat(" ", width-len(s)), nil
}

// encodeHeader renders a 60-byte fixed-width ASCII header. nameField is the
// already-resolved name encoding: "<name>/", "/<offset>", or "//".
func encodeHeader(nameField string, e Entry) ([headerSize]byte, error) {
	var buf [headerSize]byte

	name, err := formatField(nameField, fieldName)
	if err != nil {
		return buf, err
	}
	date, err := formatField(strconv.FormatInt(e.ModTime.Unix(), 10), fieldDate)
	if err != nil {
		return buf, err
	}
	uid, err := formatField(strconv.Itoa(e.Uid), fieldUid)
	if err != nil {
		return buf, err
	}
	gid, err := formatField(strconv.Itoa(e.Gid), fieldGid)
	if err != nil {
		return buf, err
	}
	mode, err := formatField(strconv.FormatUint(uint64(e.Mode), 10), fieldMode)
	if err != nil {
		return buf, err
	}
	size, err := formatField(strconv.FormatInt(e.Size, 10), fieldSize)
	if err != nil {
		return buf, err
	}

	copy(buf[0:], name)
	copy(buf[fieldName:], date)
	copy(buf[fieldName+fieldDate:], uid)
	copy(buf[fieldName+fieldDate+fieldUid:], gid)
	copy(buf[fieldName+fieldDate+fieldUid+fieldGid:], mode)
	copy(buf[fieldName+fieldDate+fieldUid+fieldGid+fieldMode:], size)
	copy(buf[fieldName+fieldDate+fieldUid+fieldGid+fieldMode+fieldSize:], fmagLiteral)
	return buf, nil
}

// decodedHeader is the raw, still name-unresolved view of a header: the
// reader resolves rawName against the string table (or trims it directly)
// one layer up.
type decodedHeader struct {
	rawName string
	modTime int64
	uid     int
	gid     int
	mode    uint32
	size    int64
}

func decodeHeader(path string, buf [headerSize]byte) (decodedHeader, error) {
	var d decodedHeader

	fmag := string(buf[fieldName+fieldDate+fieldUid+fieldGid+fieldMode+fieldSize:])
	if fmag != fmagLiteral {
		return d, mpkgerr.Format(path, 0, "bad entry trailer %q", fmag)
	}

	d.rawName = strings.TrimRight(string(buf[0:fieldName]), " ")

	date := strings.TrimSpace(string(buf[fieldName : fieldName+fieldDate]))
	modTime, err := strconv.ParseInt(date, 10, 64)
	if err != nil {
		return d, mpkgerr.Format(path, 0, "bad ar_date %q", date)
	}
	d.modTime = modTime

	uidField := strings.TrimSpace(string(buf[fieldName+fieldDate : fieldName+fieldDate+fieldUid]))
	uid, err := strconv.Atoi(uidField)
	if err != nil {
		return d, mpkgerr.Format(path, 0, "bad ar_uid %q", uidField)
	}
	d.uid = uid

	gidField := strings.TrimSpace(string(buf[fieldName+fieldDate+fieldUid : fieldName+fieldDate+fieldUid+fieldGid]))
	gid, err := strconv.Atoi(gidField)
	if err != nil {
		return d, mpkgerr.Format(path, 0, "bad ar_gid %q", gidField)
	}
	d.gid = gid

	modeField := strings.TrimSpace(string(buf[fieldName+fieldDate+fieldUid+fieldGid : fieldName+fieldDate+fieldUid+fieldGid+fieldMode]))
	mode, err := strconv.ParseUint(modeField, 10, 32)
	if err != nil {
		return d, mpkgerr.Format(path, 0, "bad ar_mode %q", modeField)
	}
	d.mode = uint32(mode)

	sizeField := strings.TrimSpace(string(buf[fieldName+fieldDate+fieldUid+fieldGid+fieldMode : fieldName+fieldDate+fieldUid+fieldGid+fieldMode+fieldSize]))
	size, err := strconv.ParseInt(sizeField, 10, 64)
	if err != nil {
		return d, mpkgerr.Format(path, 0, "bad ar_size %q", sizeField)
	}
	if size < 0 {
		return d, mpkgerr.Programmer("ar: negative entry size %d", size)
	}
	d.size = size

	return d, nil
}
