package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// State travels through the provider round trip in the OAuth state
// parameter.
type State struct {
	CameFrom string `json:"came_from,omitempty"`
}

type encodedState struct {
	CameFrom string `json:"came_from,omitempty"`
	Nonce    string `json:"nonce"`
}

func (s *State) Encode(nonce string) (string, error) {
	if nonce == "" {
		return "", errors.New("nonce is required")
	}
	raw, err := json.Marshal(encodedState{CameFrom: s.CameFrom, Nonce: nonce})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// ParseState decodes a state parameter produced by Encode, returning the
// state and its nonce.
func ParseState(param string) (*State, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(param)
	if err != nil {
		return nil, "", fmt.Errorf("state is not valid base64: %w", err)
	}
	var decoded encodedState
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, "", fmt.Errorf("state is not valid JSON: %w", err)
	}
	if decoded.Nonce == "" {
		return nil, "", errors.New("state has no nonce")
	}
	return &State{CameFrom: decoded.CameFrom}, decoded.Nonce, nil
}
