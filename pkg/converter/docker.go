// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package converter

import (
	"context"
	"log/slog"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"

	"github.com/NVIDIA/blobpush/pkg/defaults"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/oci"
)

// DockerProbe checks the local Docker daemon for an image before conversion.
type DockerProbe struct {
	client  *client.Client
	timeout time.Duration
}

// NewDockerProbe connects to the daemon described by the environment
// (DOCKER_HOST and friends). Extra client options are applied after the
// defaults.
func NewDockerProbe(opts ...client.Opt) (*DockerProbe, error) {
	all := append([]client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}, opts...)
	cli, err := client.NewClientWithOpts(all...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeToolMissing, "failed to create docker client", err)
	}
	return NewDockerProbeWithClient(cli), nil
}

// NewDockerProbeWithClient wraps an existing client.
func NewDockerProbeWithClient(cli *client.Client) *DockerProbe {
	return &DockerProbe{client: cli, timeout: defaults.DockerProbeTimeout}
}

// Ping verifies the daemon is reachable.
func (p *DockerProbe) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.client.Ping(ctx); err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeToolMissing,
			"docker daemon is not reachable", err,
			map[string]any{"host": p.client.DaemonHost()})
	}
	return nil
}

// ImageExists returns a CONVERSION error when ref is not present locally.
func (p *DockerProbe) ImageExists(ctx context.Context, ref oci.ImageReference) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	inspect, err := p.client.ImageInspect(ctx, ref.String())
	if err != nil {
		if errdefs.IsNotFound(err) {
			return apperrors.NewWithContext(apperrors.ErrCodeConversion,
				"image not found in local docker daemon",
				map[string]any{"image": ref.String()})
		}
		return apperrors.WrapWithContext(apperrors.ErrCodeConversion,
			"failed to inspect image", err,
			map[string]any{"image": ref.String()})
	}

	slog.Debug("image present in daemon", "image", ref.String(), "id", inspect.ID)
	return nil
}

// Close releases the client's idle connections.
func (p *DockerProbe) Close() error {
	return p.client.Close()
}

// WithImageCheck wraps c so that Check also pings the daemon and Convert
// first confirms the image exists locally.
func WithImageCheck(c Converter, probe *DockerProbe) Converter {
	return &probed{Converter: c, probe: probe}
}

type probed struct {
	Converter
	probe *DockerProbe
}

func (p *probed) Check(ctx context.Context) error {
	if err := p.Converter.Check(ctx); err != nil {
		return err
	}
	return p.probe.Ping(ctx)
}

func (p *probed) Convert(ctx context.Context, ref oci.ImageReference, dest string) error {
	if err := p.probe.ImageExists(ctx, ref); err != nil {
		return err
	}
	return p.Converter.Convert(ctx, ref, dest)
}
