// Copyright 2024 PatternFS Authors
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

package common

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Log output is discarded until the CLI (or an embedder) picks a sink.
func init() {
	log.SetOutput(io.Discard)
}

// PermString renders the permission bits of mode as "rwxr-xr-x".
func PermString(mode os.FileMode) string {
	return mode.Perm().String()[1:]
}
