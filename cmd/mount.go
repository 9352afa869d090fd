// Copyright 2026 The kvfsfuse Authors.
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

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kvfsfuse/kvfsfuse/cfg"
	"github.com/kvfsfuse/kvfsfuse/clock"
	"github.com/kvfsfuse/kvfsfuse/internal/kvstore/memstore"
	"github.com/kvfsfuse/kvfsfuse/internal/logger"
	"github.com/kvfsfuse/kvfsfuse/internal/metrics"
	"github.com/kvfsfuse/kvfsfuse/internal/mount"
)

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Mount the filesystem at the given mountpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		if err := mountConfig.Validate(); err != nil {
			return err
		}
		return runMount(cmd.Context(), args[0], &mountConfig)
	},
}

// runMount wires the configuration into a kvstore.Store, an internal/mount
// gateway, and a real FUSE mount, following the shape of the teacher's
// mountWithStorageHandle but without any of the GCS-specific bucket
// plumbing.
//
// The KV store itself is an opaque, out-of-scope collaborator (spec.md
// §1): no network KV driver ships here, so every mount runs against a
// fresh in-memory store. --kv-endpoint is still accepted and logged so a
// deployment wiring in a real driver has a natural place to read it from.
func runMount(ctx context.Context, mountPoint string, cfg *cfg.Config) error {
	logger.SetFormat(cfg.Logging.Format)
	logger.SetLevel(cfg.Logging.Severity)
	logger.Infof("starting kvfsfuse against kv-endpoint %q", cfg.KV.Endpoint)

	store := memstore.New()
	registry := prometheus.NewRegistry()
	metricHandle := metrics.NewHandle(registry)

	fs, err := mount.New(ctx, store, mount.Config{
		Clock:      clock.RealClock{},
		Metrics:    metricHandle,
		RootMode:   uint32(cfg.FileSystem.RootMode),
		DefaultUID: uint32(cfg.FileSystem.Uid),
		DefaultGID: uint32(cfg.FileSystem.Gid),
		MaxOpen:    cfg.FileSystem.MaxOpenFiles,
	})
	if err != nil {
		return fmt.Errorf("mount.New: %w", err)
	}

	server := fuseutil.NewFileSystemServer(fs)

	options := make(map[string]string)
	for _, o := range cfg.FileSystem.MountOptions {
		options[o] = ""
	}

	mfs, err := fuse.Mount(mountPoint, server, &fuse.MountConfig{
		FSName:     "kvfsfuse",
		Subtype:    "kvfsfuse",
		VolumeName: "kvfsfuse",
		Options:    options,
	})
	if err != nil {
		return fmt.Errorf("fuse.Mount: %w", err)
	}

	logger.Infof("mounted at %s", mountPoint)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logger.Infof("received interrupt, unmounting %s", mountPoint)
		if err := fuse.Unmount(mountPoint); err != nil {
			logger.Errorf("unmount: %v", err)
		}
	}()

	return mfs.Join(ctx)
}
