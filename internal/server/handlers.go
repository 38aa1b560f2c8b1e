package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/forgebuild/forged/internal"
	"github.com/forgebuild/forged/internal/manifest"
	"github.com/forgebuild/forged/internal/pipeline"
	"github.com/forgebuild/forged/internal/protocol"
)

// Handles a build command.
//
// Loads and validates the pipeline manifest, then executes it against
// the container runtime. The build is cancelled if the client
// disconnects before it completes.
func (s *Server) handleBuild(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	p, err := manifest.Load(req.Manifest)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}
	if err := p.Validate(); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	id := uuid.NewString()
	slog.Info("build started", "id", id, "pipeline", p.Name)

	result, err := pipeline.Run(ctx, s.runtime, pipeline.Options{
		Pipeline:  p,
		Resource:  req.Resource,
		Output:    req.Output,
		Root:      req.Root,
		Params:    req.Params,
		Platforms: req.Platforms,
	})
	if err != nil {
		slog.Error("build failed", "id", id, "error", err)
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.builds++
	s.mu.Unlock()

	slog.Info("build complete", "id", id, "output", result.Output)
	s.respond(conn, protocol.CmdOK, &protocol.BuildResult{ID: id, Output: result.Output})
}

// Handles a status command.
func (s *Server) handleStatus(conn net.Conn) {
	s.mu.Lock()
	builds := s.builds
	s.mu.Unlock()

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running: true,
		Version: internal.VersionString(),
		Pid:     os.Getpid(),
		Uptime:  uptime.String(),
		Builds:  builds,
	})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
