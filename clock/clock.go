// Copyright 2025 Google LLC
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

// Package clock provides an injectable notion of time, so that the FCB
// atime/mtime/ctime fields (spec.md §3) can be tested deterministically.
package clock

import "time"

// Clock is the interface through which the rest of the tree reads the
// current time. RealClock is used in production; SimulatedClock stands in
// during tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}
