package protocol

import (
	"encoding/json"
	"fmt"
)

// A command name carried in a message envelope.
type Command string

const (
	CmdBuild    Command = "build"    // Execute a pipeline manifest.
	CmdStatus   Command = "status"   // Query daemon status.
	CmdShutdown Command = "shutdown" // Request daemon shutdown.
	CmdOK       Command = "ok"       // Successful response.
	CmdError    Command = "error"    // Failed response.
)

// State of a stage container as reported by the runtime.
type ContainerState string

const (
	ContainerRunning    ContainerState = "running"
	ContainerStopped    ContainerState = "stopped"
	ContainerNotCreated ContainerState = "not-created"
)

// The wire framing for a single message.
//
// Messages are newline-delimited JSON: one envelope per line, with the
// command-specific payload nested as raw JSON.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Serializes a command and payload into an envelope.
//
// A nil payload produces an envelope without a payload field.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", cmd, err)
		}
		env.Payload = raw
	}

	return json.Marshal(env)
}

// Parses a single message line into its envelope and raw payload.
func Decode(line []byte) (Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Command == "" {
		return Envelope{}, nil, fmt.Errorf("envelope has no command")
	}
	return env, env.Payload, nil
}

// Parses a raw payload into a concrete payload type.
func DecodePayload[T any](raw json.RawMessage) (*T, error) {
	var payload T
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &payload, nil
}
