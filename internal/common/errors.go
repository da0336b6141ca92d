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

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrExists      = errors.New("already exists")
	ErrUnsupported = errors.New("operation not supported on leaf")
	ErrInvalidName = errors.New("invalid name")
	ErrInvalidNode = errors.New("invalid node")
	ErrInvalidPath = errors.New("invalid path")
	ErrAttached    = errors.New("node already has a parent")
	ErrCycle       = errors.New("container cannot contain itself")
	ErrNotDir      = errors.New("not a directory")
	ErrIsDir       = errors.New("is a directory")
	ErrNotEmpty    = errors.New("directory not empty")
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrReadOnly    = errors.New("read-only filesystem")
)
