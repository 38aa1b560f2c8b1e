// Package runtime manages stage containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and starts containers for
// pipeline stages, either from OCI archives on the host or from tags
// already present in the image store. Archives are imported, tagged
// with a deterministic content hash, and unpacked for the target
// platform into an overlayfs snapshot.
//
// Each [Container] wraps a running containerd task. Commands execute as
// additional execs against that task, files move in and out as tar
// streams, and the final filesystem state can be committed and exported
// as a new OCI archive with an entrypoint and environment applied. A
// container should be destroyed when no longer needed to release its
// snapshot and task.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "forged")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartFromArchive(ctx, "images/rust.tar", "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "cargo build --release", nil, "/app")
//	if err != nil {
//	    return err
//	}
//
//	if err := ctr.Export(ctx, "dist", []string{"/usr/local/bin/rust_api"}, nil); err != nil {
//	    return err
//	}
package runtime
