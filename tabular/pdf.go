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

import (
	"math"
	"sort"

	"github.com/ledongthuc/pdf"
)

// columnGap is the horizontal distance, in PDF points, that separates two
// cells on the same baseline. Issuer layouts drift, but line-item labels and
// their figures sit far enough apart that a fixed gap works in stream mode.
const columnGap = 18.0

// rowTolerance merges glyphs whose baselines differ by less than this many
// points into one row.
const rowTolerance = 2.5

// ParsePDF reads every page of the document at path and returns candidate
// frames, one per page. Stream mode: glyphs are grouped into rows by
// baseline and split into cells at horizontal gaps. Frames for pages with
// no text are retained at their index.
func ParsePDF(path string) ([]*Frame, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	frames := make([]*Frame, 0, reader.NumPage())

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		frame := &Frame{Index: pageNum - 1}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			frames = append(frames, frame)
			continue
		}

		frame.Rows = pageRows(page.Content().Text)
		frames = append(frames, frame)
	}

	return frames, nil
}

// pageRows clusters positioned text into row/cell structure.
func pageRows(texts []pdf.Text) [][]string {
	if len(texts) == 0 {
		return nil
	}

	// Sort top-to-bottom then left-to-right. PDF origin is bottom-left so
	// larger Y values come first.
	sort.Slice(texts, func(i, j int) bool {
		if math.Abs(texts[i].Y-texts[j].Y) > rowTolerance {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	var (
		rows    [][]string
		cells   []string
		cell    string
		lastY   = texts[0].Y
		lastEnd = texts[0].X
	)

	flushCell := func() {
		if cell != "" {
			cells = append(cells, cell)
			cell = ""
		}
	}

	flushRow := func() {
		flushCell()
		if len(cells) > 0 {
			rows = append(rows, cells)
			cells = nil
		}
	}

	for _, glyph := range texts {
		if math.Abs(glyph.Y-lastY) > rowTolerance {
			flushRow()
			lastY = glyph.Y
		} else if glyph.X-lastEnd > columnGap {
			flushCell()
		}

		if glyph.S != " " || cell != "" {
			cell += glyph.S
		}
		lastEnd = glyph.X + glyph.W
	}
	flushRow()

	return rows
}
