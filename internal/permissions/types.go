package permissions

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrNotFound means no record exists for the requested channel id or handle.
var ErrNotFound = errors.New("permission record not found")

// Level is the closed set of permission levels. The zero value is invalid so
// an absent field can never bind to a grant.
type Level int

const (
	// LevelUnknown is the zero value; it never validates and is never persisted.
	LevelUnknown Level = iota
	LevelYes
	LevelYesWithDelay
	LevelNo
)

// levelNames is the explicit bidirectional mapping between Level and its
// persisted textual form (the Postgres "permission" enum labels).
var levelNames = map[Level]string{
	LevelYes:          "yes",
	LevelYesWithDelay: "yes_with_delay",
	LevelNo:           "no",
}

// ParseLevel maps the persisted textual form back to a Level. The match is
// exact; no case folding.
func ParseLevel(s string) (Level, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown permission level %q", s)
}

// Valid reports whether the level is a member of the closed set.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON serializes the level in its persisted textual form.
func (l Level) MarshalJSON() ([]byte, error) {
	name, ok := levelNames[l]
	if !ok {
		return nil, fmt.Errorf("invalid permission level %d", int(l))
	}
	return json.Marshal(name)
}

// UnmarshalJSON parses the persisted textual form.
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseLevel(name)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Record is the stored permission settings for one channel.
type Record struct {
	ChannelID           string    `json:"channel_id"`
	ChannelTitle        string    `json:"channel_title"`
	CustomURL           string    `json:"custom_url"`
	CanReactLive        Level     `json:"can_react_live"`
	LiveReactionDelay   *string   `json:"live_reaction_delay"`
	CanUploadReaction   Level     `json:"can_upload_reaction"`
	UploadReactionDelay *string   `json:"upload_reaction_delay"`
	LastUpdatedAt       time.Time `json:"last_updated_at"`
}

// UpsertParams are the caller-supplied mutable fields of a record.
type UpsertParams struct {
	CanReactLive        Level
	LiveReactionDelay   string
	CanUploadReaction   Level
	UploadReactionDelay string
}

// BuildDelay concatenates a delay magnitude and unit token into the stored
// free-text duration form, e.g. (3, "d") -> "3d". The unit domain is not
// validated and the delay is not cleared for levels other than
// yes_with_delay; both stay open product decisions.
func BuildDelay(value int, unit string) string {
	return strconv.Itoa(value) + unit
}
