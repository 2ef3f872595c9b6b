// Package provider handles everything that touches external fulfillment
// partners: the user-input identifier format shared with them, outbound
// order forwarding, and mapping their webhook statuses onto ours.
package provider

import (
	"errors"
	"strings"
)

// OrderInput is the structured form of the identifier a customer attaches
// to an order. The legacy wire format is a single string with optional
// pipe-delimited suffixes ("1234|zone:5|server:eu"); it is decoded here,
// once, instead of being re-split everywhere it is needed.
type OrderInput struct {
	PlayerID string `json:"player_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Zone     string `json:"zone"`
	Server   string `json:"server"`
}

var ErrEmptyInput = errors.New("order input identifier is empty")

// Validate checks the input against the service group's input type.
func (in OrderInput) Validate(inputType string) error {
	switch inputType {
	case "email":
		if in.Email == "" || !strings.Contains(in.Email, "@") {
			return errors.New("a valid email is required for this service")
		}
	case "credentials":
		if in.Username == "" || in.Password == "" {
			return errors.New("a username and password are required for this service")
		}
	default: // 'player_id' and anything unconfigured
		if in.PlayerID == "" {
			return errors.New("a player id is required for this service")
		}
	}
	return nil
}

// Encode flattens the input into the composite string stored on the order
// and sent to partners.
func (in OrderInput) Encode() string {
	base := in.PlayerID
	if base == "" {
		base = in.Email
	}
	if base == "" && in.Username != "" {
		base = in.Username + ":" + in.Password
	}

	var b strings.Builder
	b.WriteString(base)
	if in.Zone != "" {
		b.WriteString("|zone:" + in.Zone)
	}
	if in.Server != "" {
		b.WriteString("|server:" + in.Server)
	}
	return b.String()
}

// ParseOrderInput decodes a composite identifier string. It accepts the
// raw form partners send through the v1 API.
func ParseOrderInput(raw string) (OrderInput, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return OrderInput{}, ErrEmptyInput
	}

	var in OrderInput
	for i, part := range strings.Split(raw, "|") {
		switch {
		case strings.HasPrefix(part, "zone:"):
			in.Zone = strings.TrimPrefix(part, "zone:")
		case strings.HasPrefix(part, "server:"):
			in.Server = strings.TrimPrefix(part, "server:")
		case i == 0:
			if strings.Contains(part, "@") {
				in.Email = part
			} else if user, pass, ok := strings.Cut(part, ":"); ok {
				in.Username = user
				in.Password = pass
			} else {
				in.PlayerID = part
			}
		}
	}

	if in.PlayerID == "" && in.Email == "" && in.Username == "" {
		return OrderInput{}, ErrEmptyInput
	}
	return in, nil
}
