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

package cfg

import (
	"fmt"
	"math/bits"

	"github.com/kvfsfuse/kvfsfuse/internal/block"
)

// Validate rejects configurations that would violate the core's geometry
// invariants before a mount is ever attempted.
func (c *Config) Validate() error {
	if c.KV.Endpoint == "" {
		return fmt.Errorf("kv-endpoint must be set")
	}
	if c.FileSystem.MaxOpenFiles <= 0 {
		return fmt.Errorf("max-open-files must be positive, got %d", c.FileSystem.MaxOpenFiles)
	}
	if c.FileSystem.RootMode&^0777 != 0 {
		return fmt.Errorf("root-mode must be a 9-bit permission value, got %o", c.FileSystem.RootMode)
	}
	if c.FileSystem.BlockSize <= 0 || bits.OnesCount(uint(c.FileSystem.BlockSize)) != 1 {
		return fmt.Errorf("block-size must be a power of two, got %d", c.FileSystem.BlockSize)
	}
	if c.FileSystem.MaxBlocks <= 0 {
		return fmt.Errorf("max-blocks must be positive, got %d", c.FileSystem.MaxBlocks)
	}
	maxSize := int64(c.FileSystem.BlockSize) * int64(c.FileSystem.MaxBlocks)
	if maxSize/int64(c.FileSystem.BlockSize) != int64(c.FileSystem.MaxBlocks) {
		return fmt.Errorf("block-size * max-blocks overflows int64")
	}
	if c.FileSystem.BlockSize != block.BlockSize || c.FileSystem.MaxBlocks != block.MaxBlocks {
		return fmt.Errorf("block-size/max-blocks must match the compiled-in %d/%d, got %d/%d",
			block.BlockSize, block.MaxBlocks, c.FileSystem.BlockSize, c.FileSystem.MaxBlocks)
	}
	switch c.Logging.Severity {
	case "TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF":
	default:
		return fmt.Errorf("log-severity must be one of TRACE, DEBUG, INFO, WARNING, ERROR, OFF, got %q", c.Logging.Severity)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log-format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}
