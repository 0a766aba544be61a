package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// enum maps a closed set of integer codes to their stable names. The slice
// index is the wire code, the name is what gets persisted.
type enum[T ~int] struct {
	field string
	names []string
}

func (e enum[T]) name(v T) (string, bool) {
	if int(v) < 0 || int(v) >= len(e.names) {
		return "", false
	}
	return e.names[v], true
}

// parse accepts either the name (case-insensitive) or the integer code.
func (e enum[T]) parse(raw string) (T, error) {
	raw = strings.TrimSpace(raw)
	for i, n := range e.names {
		if strings.EqualFold(n, raw) {
			return T(i), nil
		}
	}
	if code, err := strconv.Atoi(raw); err == nil {
		if _, ok := e.name(T(code)); ok {
			return T(code), nil
		}
	}
	return 0, NewValidationError(e.field, raw,
		fmt.Sprintf("%s must be one of %s", e.field, strings.Join(e.names, ", ")))
}

func (e enum[T]) decodeJSON(b []byte) (T, error) {
	var code int
	if err := json.Unmarshal(b, &code); err == nil {
		if _, ok := e.name(T(code)); ok {
			return T(code), nil
		}
		return 0, NewValidationError(e.field, code, fmt.Sprintf("unknown %s code %d", e.field, code))
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return 0, NewValidationError(e.field, string(b), fmt.Sprintf("%s must be an integer code or a name", e.field))
	}
	return e.parse(name)
}

func (e enum[T]) value(v T) (driver.Value, error) {
	n, ok := e.name(v)
	if !ok {
		return nil, fmt.Errorf("invalid %s %d", e.field, int(v))
	}
	return n, nil
}

func (e enum[T]) scan(src any) (T, error) {
	switch v := src.(type) {
	case string:
		return e.parse(v)
	case []byte:
		return e.parse(string(v))
	case int64:
		if _, ok := e.name(T(v)); ok {
			return T(v), nil
		}
	}
	return 0, fmt.Errorf("cannot scan %T (%v) into %s", src, src, e.field)
}

// LibraryStatus is the reading state of a library entry.
type LibraryStatus int

const (
	LibraryStatusPlanning LibraryStatus = iota
	LibraryStatusReading
	LibraryStatusFinished
)

var libraryStatuses = enum[LibraryStatus]{
	field: "status",
	names: []string{"PLANNING", "READING", "FINISHED"},
}

// ParseLibraryStatus accepts a status name or its integer code.
func ParseLibraryStatus(raw string) (LibraryStatus, error) {
	return libraryStatuses.parse(raw)
}

func (s LibraryStatus) String() string {
	if n, ok := libraryStatuses.name(s); ok {
		return n
	}
	return "LibraryStatus(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is a known status.
func (s LibraryStatus) Valid() bool {
	_, ok := libraryStatuses.name(s)
	return ok
}

func (s LibraryStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(s))
}

func (s *LibraryStatus) UnmarshalJSON(b []byte) error {
	v, err := libraryStatuses.decodeJSON(b)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s LibraryStatus) Value() (driver.Value, error) {
	return libraryStatuses.value(s)
}

func (s *LibraryStatus) Scan(src any) error {
	v, err := libraryStatuses.scan(src)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// BanReason classifies why a ban was issued. New reasons are appended to the
// table so existing codes never move.
type BanReason int

const (
	BanReasonInappropriateBehavior BanReason = iota
)

var banReasons = enum[BanReason]{
	field: "reason",
	names: []string{"INAPPROPRIATE_BEHAVIOR"},
}

// ParseBanReason accepts a reason name or its integer code.
func ParseBanReason(raw string) (BanReason, error) {
	return banReasons.parse(raw)
}

func (r BanReason) String() string {
	if n, ok := banReasons.name(r); ok {
		return n
	}
	return "BanReason(" + strconv.Itoa(int(r)) + ")"
}

// Valid reports whether r is a known reason.
func (r BanReason) Valid() bool {
	_, ok := banReasons.name(r)
	return ok
}

func (r BanReason) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(r))
}

func (r *BanReason) UnmarshalJSON(b []byte) error {
	v, err := banReasons.decodeJSON(b)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (r BanReason) Value() (driver.Value, error) {
	return banReasons.value(r)
}

func (r *BanReason) Scan(src any) error {
	v, err := banReasons.scan(src)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
