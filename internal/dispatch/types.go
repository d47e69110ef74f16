package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Well-known action labels. Action is free text; these are the values the
// upstream triage services send today.
const (
	ActionAmbulance     = "ambulance"
	ActionDispatch      = "dispatch"
	ActionSendCaretaker = "send_caretaker"
)

// Profile keys, in display order.
const (
	ProfileName             = "Name"
	ProfileAge              = "Age"
	ProfileBloodType        = "Blood Type"
	ProfileAllergies        = "Allergies"
	ProfileHistory          = "History"
	ProfileMeds             = "Meds"
	ProfileDisability       = "Disability"
	ProfileEmergencyContact = "Emergency Contact"
	ProfileLocation         = "Location"
)

// ProfileKeys lists the well-known profile fields in the order dashboards render them.
var ProfileKeys = []string{
	ProfileName,
	ProfileAge,
	ProfileBloodType,
	ProfileAllergies,
	ProfileHistory,
	ProfileMeds,
	ProfileDisability,
	ProfileEmergencyContact,
	ProfileLocation,
}

// NotAvailable is rendered in place of a missing profile field.
const NotAvailable = "N/A"

// Profile is the patient summary produced by the upstream triage service.
// Its contents are relayed as-is; only the well-known keys are interpreted.
type Profile map[string]interface{}

// Field returns the printable value of key, or NotAvailable when the key is
// absent, null or empty.
func (p Profile) Field(key string) string {
	if p == nil {
		return NotAvailable
	}
	v, ok := p[key]
	if !ok || v == nil {
		return NotAvailable
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return NotAvailable
		}
		return t
	case []interface{}:
		if len(t) == 0 {
			return NotAvailable
		}
		parts := make([]string, 0, len(t))
		for _, it := range t {
			parts = append(parts, fmt.Sprint(it))
		}
		return strings.Join(parts, ", ")
	case float64:
		// JSON numbers decode as float64; ages are whole numbers.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

// Clone returns a shallow copy of the profile map.
func (p Profile) Clone() Profile {
	if p == nil {
		return Profile{}
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Urgency is a severity label assigned by dashboard operators.
type Urgency string

// Urgency levels. The zero value is Unset.
const (
	UrgencyUnset  Urgency = ""
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// ErrInvalidUrgency is returned by ParseUrgency for unknown labels.
var ErrInvalidUrgency = errors.New("invalid urgency")

// ParseUrgency accepts High, Medium, Low (any case) and "", "unset" or
// "none" for Unset.
func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unset", "none", "unlabelled":
		return UrgencyUnset, nil
	case "high":
		return UrgencyHigh, nil
	case "medium":
		return UrgencyMedium, nil
	case "low":
		return UrgencyLow, nil
	}
	return UrgencyUnset, fmt.Errorf("%w: %q", ErrInvalidUrgency, s)
}

// Rank orders urgencies for display: unlabelled items need triage and come first.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 3
	default:
		return 0
	}
}

// Label is the human readable form.
func (u Urgency) Label() string {
	if u == UrgencyUnset {
		return "Unlabelled"
	}
	return string(u)
}

// MarshalJSON encodes Unset as null.
func (u Urgency) MarshalJSON() ([]byte, error) {
	if u == UrgencyUnset {
		return []byte("null"), nil
	}
	return json.Marshal(string(u))
}

// UnmarshalJSON accepts null or one of the labels.
func (u *Urgency) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*u = UrgencyUnset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseUrgency(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Record is a single dispatch item as held by the Store and relayed to dashboards.
type Record struct {
	ID              string    `json:"id"`
	Service         string    `json:"service"`
	Action          string    `json:"action"`
	Status          string    `json:"status"`
	Profile         Profile   `json:"profile"`
	Highlights      []string  `json:"highlights"`
	Recommendations []string  `json:"recommendations"`
	Medications     []string  `json:"medications"`
	Urgency         Urgency   `json:"urgency"`
	Archived        bool      `json:"archived"`
	Timestamp       time.Time `json:"timestamp"`
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	out := r
	out.Profile = r.Profile.Clone()
	out.Highlights = cloneStrings(r.Highlights)
	out.Recommendations = cloneStrings(r.Recommendations)
	out.Medications = cloneStrings(r.Medications)
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
