package server

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/forgebuild/forged/internal/protocol"
)

func TestContextWithDisconnect(t *testing.T) {
	r, w := io.Pipe()

	ctx, cancel := contextWithDisconnect(context.Background(), r)
	defer cancel()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled while connection open")
	case <-time.After(50 * time.Millisecond):
	}

	w.Close()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after disconnect")
	}
}

func TestRespond(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	s := &Server{}
	go func() {
		defer srv.Close()
		s.respond(srv, protocol.CmdError, &protocol.ErrorResult{Message: "bad manifest"})
	}()

	data, err := io.ReadAll(client)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Fatalf("response not newline-terminated: %q", data)
	}

	env, payload, err := protocol.Decode(data)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Command != protocol.CmdError {
		t.Errorf("command = %q, want %q", env.Command, protocol.CmdError)
	}

	result, err := protocol.DecodePayload[protocol.ErrorResult](payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if result.Message != "bad manifest" {
		t.Errorf("message = %q", result.Message)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	s := &Server{}
	go func() {
		defer srv.Close()
		s.dispatch(context.Background(), srv, protocol.Command("bogus"), nil)
	}()

	data, err := io.ReadAll(client)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	env, payload, err := protocol.Decode(data)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Command != protocol.CmdError {
		t.Fatalf("command = %q, want %q", env.Command, protocol.CmdError)
	}

	result, err := protocol.DecodePayload[protocol.ErrorResult](payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if result.Message != "unknown command: bogus" {
		t.Errorf("message = %q", result.Message)
	}
}
