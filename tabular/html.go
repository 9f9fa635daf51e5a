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
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page bundles the extracted frames with the parsed DOM so scrapers can do
// targeted text lookups (select options, marquee text, headings) alongside
// positional table access.
type Page struct {
	Doc    *goquery.Document
	Frames []*Frame
}

// ParseHTML converts a page into its ordered list of table frames plus the
// DOM. Cells are whitespace-trimmed but otherwise uninterpreted.
func ParseHTML(body string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var frames []*Frame

	doc.Find("table").Each(func(tableIdx int, table *goquery.Selection) {
		frame := &Frame{Index: tableIdx}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			headerCells := row.Find("th")
			if headerCells.Length() > 0 && frame.Headers == nil {
				headerCells.Each(func(_ int, cell *goquery.Selection) {
					frame.Headers = append(frame.Headers, cellText(cell))
				})
				return
			}

			dataCells := row.Find("td")
			if dataCells.Length() == 0 {
				return
			}

			cells := make([]string, 0, dataCells.Length())
			dataCells.Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cellText(cell))
			})
			frame.Rows = append(frame.Rows, cells)
		})

		frames = append(frames, frame)
	})

	return &Page{Doc: doc, Frames: frames}, nil
}

// FrameAt returns the frame at the given document-order index.
func (page *Page) FrameAt(idx int) (*Frame, error) {
	if idx < 0 || idx >= len(page.Frames) {
		return nil, &ShapeError{Frame: idx, Detail: "frame not present in document"}
	}

	return page.Frames[idx], nil
}

func cellText(sel *goquery.Selection) string {
	text := strings.ReplaceAll(sel.Text(), " ", " ")
	return strings.Join(strings.Fields(text), " ")
}
