package graph

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxLabelLength bounds every label and literal value.
const MaxLabelLength = 8164

var (
	ErrBlankLabel      = errors.New("label must not be blank")
	ErrLabelTooLong    = errors.New("label exceeds maximum length")
	ErrMultilineLabel  = errors.New("label must not contain line breaks")
	ErrInvalidDatatype = errors.New("invalid datatype")
	ErrInvalidValue    = errors.New("value does not match datatype")
)

var datatypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:[^\s]+$`)

// NormalizeLabel trims surrounding whitespace from a title or resource label
// and checks the label rules.
func NormalizeLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", ErrBlankLabel
	}
	if strings.ContainsAny(label, "\r\n") {
		return "", ErrMultilineLabel
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return "", ErrLabelTooLong
	}
	return label, nil
}

// NormalizeDatatype returns the datatype to store, defaulting to xsd:string.
func NormalizeDatatype(datatype string) (string, error) {
	datatype = strings.TrimSpace(datatype)
	if datatype == "" {
		return DatatypeString, nil
	}
	if !datatypePattern.MatchString(datatype) {
		return "", ErrInvalidDatatype
	}
	return datatype, nil
}

// ValidateLiteral checks a literal value against its datatype. Literal values
// may be empty or multi-line but are length bounded.
func ValidateLiteral(value, datatype string) error {
	if utf8.RuneCountInString(value) > MaxLabelLength {
		return ErrLabelTooLong
	}
	var err error
	switch datatype {
	case DatatypeInteger:
		_, err = strconv.ParseInt(value, 10, 64)
	case DatatypeDecimal, DatatypeFloat:
		_, err = strconv.ParseFloat(value, 64)
	case DatatypeBoolean:
		switch value {
		case "true", "false", "1", "0":
		default:
			err = ErrInvalidValue
		}
	case DatatypeDate:
		_, err = time.Parse("2006-01-02", value)
	case DatatypeAnyURI:
		var u *url.URL
		u, err = url.Parse(value)
		if err == nil && u.Scheme == "" {
			err = ErrInvalidValue
		}
	}
	if err != nil {
		return ErrInvalidValue
	}
	return nil
}
