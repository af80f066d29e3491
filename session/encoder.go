package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

const profileFormatVersion = 1

// ErrCorruptRecord is returned when a persisted session value cannot be decoded.
var ErrCorruptRecord = errors.New("session: corrupt record")

// EncodeProfile serialises p as a version byte followed by JSON.
func EncodeProfile(p *Profile) (string, error) {
	if p == nil {
		return "", errors.New("session: nil profile")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	buf := make([]byte, 0, len(body)+1)
	buf = append(buf, profileFormatVersion)
	buf = append(buf, body...)
	return string(buf), nil
}

// DecodeProfile parses a value written by EncodeProfile.
func DecodeProfile(raw string) (*Profile, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty profile", ErrCorruptRecord)
	}
	if raw[0] != profileFormatVersion {
		return nil, fmt.Errorf("%w: unsupported profile format version %d", ErrCorruptRecord, raw[0])
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw[1:]), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &p, nil
}
