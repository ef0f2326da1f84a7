package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bft-labs/appstate/internal/domain"
)

// MaxEncodedSize is an upper bound on the length of an encoded Persisted.
const MaxEncodedSize = 512

// fileRecord is the JSON shape of the state file.
type fileRecord struct {
	FormatVersion                      *int  `json:"format_version"`
	CrashedLastLaunch                  bool  `json:"crashed_last_launch"`
	ActiveDurationSinceLastCrashNs     int64 `json:"active_duration_since_last_crash_ns"`
	BackgroundDurationSinceLastCrashNs int64 `json:"background_duration_since_last_crash_ns"`
	LaunchesSinceLastCrash             int64 `json:"launches_since_last_crash"`
	SessionsSinceLastCrash             int64 `json:"sessions_since_last_crash"`
}

// AppendEncode appends the encoding of p to dst and returns the extended buffer.
// Key order matches fileRecord.
func AppendEncode(dst []byte, p Persisted) []byte {
	dst = append(dst, `{"format_version":`...)
	dst = strconv.AppendInt(dst, FormatVersion, 10)
	dst = append(dst, `,"crashed_last_launch":`...)
	dst = strconv.AppendBool(dst, p.CrashedLastLaunch)
	dst = append(dst, `,"active_duration_since_last_crash_ns":`...)
	dst = strconv.AppendInt(dst, int64(p.ActiveDurationSinceLastCrash), 10)
	dst = append(dst, `,"background_duration_since_last_crash_ns":`...)
	dst = strconv.AppendInt(dst, int64(p.BackgroundDurationSinceLastCrash), 10)
	dst = append(dst, `,"launches_since_last_crash":`...)
	dst = strconv.AppendInt(dst, p.LaunchesSinceLastCrash, 10)
	dst = append(dst, `,"sessions_since_last_crash":`...)
	dst = strconv.AppendInt(dst, p.SessionsSinceLastCrash, 10)
	dst = append(dst, '}', '\n')
	return dst
}

// Encode returns the encoding of p in a fresh buffer.
func Encode(p Persisted) []byte {
	return AppendEncode(make([]byte, 0, MaxEncodedSize), p)
}

// Decode parses a state file. On any problem it returns a zero Persisted and
// an error wrapping domain.ErrCorruptState or domain.ErrVersionMismatch.
func Decode(data []byte) (Persisted, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Persisted{}, fmt.Errorf("%w: empty file", domain.ErrCorruptState)
	}

	var fr fileRecord
	if err := json.Unmarshal(data, &fr); err != nil {
		return Persisted{}, fmt.Errorf("%w: %v", domain.ErrCorruptState, err)
	}
	if fr.FormatVersion == nil {
		return Persisted{}, fmt.Errorf("%w: missing format_version", domain.ErrCorruptState)
	}
	if *fr.FormatVersion != FormatVersion {
		return Persisted{}, fmt.Errorf("%w: got %d, want %d", domain.ErrVersionMismatch, *fr.FormatVersion, FormatVersion)
	}

	p := Persisted{
		CrashedLastLaunch:                fr.CrashedLastLaunch,
		ActiveDurationSinceLastCrash:     time.Duration(fr.ActiveDurationSinceLastCrashNs),
		BackgroundDurationSinceLastCrash: time.Duration(fr.BackgroundDurationSinceLastCrashNs),
		LaunchesSinceLastCrash:           fr.LaunchesSinceLastCrash,
		SessionsSinceLastCrash:           fr.SessionsSinceLastCrash,
	}
	if !p.Valid() {
		return Persisted{}, fmt.Errorf("%w: negative counter or duration", domain.ErrCorruptState)
	}
	return p, nil
}
