// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package tabular

import "fmt"

// Frame is a rectangular cell matrix extracted from one table. Frames are
// returned in document order and empty frames keep their index so callers
// can address "the 6th table" stably regardless of page decoration.
type Frame struct {
	// Index is the frame's position in document order.
	Index int

	// Headers holds the header row when the table carries one.
	Headers []string

	// Rows holds the data cells, one slice per row. Cells are raw text;
	// interpretation belongs to the normalizer.
	Rows [][]string
}

// Empty reports whether the frame has no data rows.
func (frame *Frame) Empty() bool {
	return len(frame.Rows) == 0
}

// Cell returns the raw text at (row, col).
func (frame *Frame) Cell(row, col int) (string, error) {
	if row >= len(frame.Rows) || row < 0 {
		return "", &ShapeError{Frame: frame.Index, Detail: fmt.Sprintf("row %d out of range (%d rows)", row, len(frame.Rows))}
	}

	if col >= len(frame.Rows[row]) || col < 0 {
		return "", &ShapeError{Frame: frame.Index, Detail: fmt.Sprintf("col %d out of range (%d cols)", col, len(frame.Rows[row]))}
	}

	return frame.Rows[row][col], nil
}

// Column returns the index of the named header, or a ShapeError when the
// header is missing.
func (frame *Frame) Column(name string) (int, error) {
	for idx, header := range frame.Headers {
		if header == name {
			return idx, nil
		}
	}

	return 0, &ShapeError{Frame: frame.Index, Detail: fmt.Sprintf("no column named %q", name)}
}

// ShapeError reports a frame that is missing or structurally different from
// what a scraper expects. Callers usually skip the unit of work.
type ShapeError struct {
	Frame  int
	Detail string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tabular: frame %d: %s", e.Frame, e.Detail)
}
