package runtime

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"

	"github.com/forgebuild/forged/internal/errwrap"
)

const (

	// Snapshotter used for stage container filesystems. fuse-overlayfs
	// provides overlay semantics without mount(2), so the daemon can run
	// as a regular user.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for stage containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Provides image and container operations backed by containerd.
type Runtime struct {
	client *containerd.Client
}

// Connects to the containerd socket at the given address.
//
// All operations are scoped to the given namespace. The runtime must be
// closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, errwrap.Wrap(ErrRuntime, err)
	}
	return &Runtime{client: client}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Starts a stage container from an OCI archive on the host.
//
// The archive is imported into containerd's content store, tagged with a
// name derived from its path, and its layers for the target platform are
// unpacked into the snapshotter. A container is then created with a fresh
// snapshot and a long-running task so later Exec calls have a process to
// attach to. Building for a platform other than the host requires
// QEMU / binfmt_misc support in the kernel.
func (rt *Runtime) StartFromArchive(ctx context.Context, path, id, platform string) (*Container, error) {
	tag := archiveTag(path)

	imported, err := rt.importArchive(ctx, path)
	if err != nil {
		return nil, errwrap.Wrap(ErrRuntime, err)
	}

	if err := rt.tagImage(ctx, imported, tag); err != nil {
		return nil, errwrap.Wrap(ErrRuntime, err)
	}

	return rt.start(ctx, tag, id, platform)
}

// Starts a stage container from a tag already present in the containerd
// image store.
//
// The image must have been imported or pulled beforehand; only the layer
// unpack for the target platform is performed here.
func (rt *Runtime) StartFromImage(ctx context.Context, tag, id, platform string) (*Container, error) {
	if _, err := rt.client.ImageService().Get(ctx, tag); err != nil {
		if errdefs.IsNotFound(err) {
			return nil, errwrap.Wrapf(ErrImageNotFound, "%s", tag)
		}
		return nil, errwrap.Wrap(ErrRuntime, err)
	}

	return rt.start(ctx, tag, id, platform)
}

// Unpacks a tagged image and starts a stage container from it.
//
// Any stale container left behind by a previous build with the same ID
// is removed first.
func (rt *Runtime) start(ctx context.Context, tag, id, platform string) (*Container, error) {
	image, err := rt.resolveImage(ctx, tag, platform)
	if err != nil {
		return nil, errwrap.Wrap(ErrRuntime, err)
	}

	if err := image.Unpack(ctx, snapshotter); err != nil {
		return nil, errwrap.Wrap(ErrRuntime, err)
	}

	c := &Container{
		client:   rt.client,
		id:       id,
		platform: platform,
	}
	c.remove(ctx)

	ctr, err := c.create(ctx, image)
	if err != nil {
		return nil, errwrap.Wrap(ErrRuntime, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, errwrap.Wrap(ErrRuntime, err)
	}

	slog.Debug("container started", "id", id, "image", tag)

	return c, nil
}

// Imports an OCI archive into the content store.
//
// The archive must contain exactly one image. A multi-platform archive
// counts as one image: a single OCI index whose per-platform manifests
// are selected later via resolveImage. Multiple index entries would mean
// unrelated images, which is not supported.
func (rt *Runtime) importArchive(ctx context.Context, path string) (images.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return images.Image{}, err
	}
	defer fh.Close()

	imported, err := rt.client.Import(ctx, fh)
	if err != nil {
		return images.Image{}, err
	}

	if len(imported) == 0 {
		return images.Image{}, ErrEmptyArchive
	} else if len(imported) > 1 {
		return images.Image{}, ErrMultipleImages
	}

	return imported[0], nil
}

// Records an imported image under a deterministic tag.
//
// An existing record under the tag is updated in place. The import's own
// record is deleted when its name differs, so repeated imports of the
// same archive do not accumulate duplicates.
func (rt *Runtime) tagImage(ctx context.Context, source images.Image, tag string) error {
	is := rt.client.ImageService()

	img := images.Image{
		Name:   tag,
		Target: source.Target,
	}

	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return err
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return err
		}
	}

	if source.Name != tag {
		_ = is.Delete(ctx, source.Name)
	}

	return nil
}

// Looks up a tagged image narrowed to a single platform.
//
// Multi-platform images carry manifests for several architectures; all
// subsequent operations on the returned image target only the manifest
// matching the given platform.
func (rt *Runtime) resolveImage(ctx context.Context, tag, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}

	img, err := rt.client.ImageService().Get(ctx, tag)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(rt.client, img, platforms.Only(p)), nil
}

// Derives a containerd image tag from an archive path.
//
// The path is hashed so the tag is always a valid OCI reference
// regardless of which characters the path contains, and so the same
// archive always maps to the same tag.
func archiveTag(path string) string {
	h := sha256.Sum256([]byte(path))
	return fmt.Sprintf("import/%s:latest", hex.EncodeToString(h[:]))
}
