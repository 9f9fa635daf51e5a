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

import "testing"

const twoTablePage = `<html><body>
<div class="wrapper">
  <table>
    <tr><th>Index</th><th>Value</th></tr>
    <tr><td>Composite Index</td><td>1,234.56</td></tr>
  </table>
</div>
<p>some prose between tables</p>
<table>
  <tr><th>Symbol</th><th>Close</th></tr>
  <tr><td>AGL</td><td>25.00</td></tr>
  <tr><td>CIF</td><td>28.50</td></tr>
</table>
</body></html>`

// Same tables, different incidental markup. Frame indices must not move.
const twoTablePageReformatted = `<html><body>
<!-- banner markup changed in a site redesign -->

	<table>
		<tr><th>Index</th><th>Value</th></tr>

		<tr><td>Composite&nbsp;Index</td><td> 1,234.56 </td></tr>
	</table>
<table><tr><th>Symbol</th><th>Close</th></tr><tr><td>AGL</td><td>25.00</td></tr><tr><td>CIF</td><td>28.50</td></tr></table>
</body></html>`

func TestParseHTMLFrameOrder(t *testing.T) {
	for _, body := range []string{twoTablePage, twoTablePageReformatted} {
		page, err := ParseHTML(body)
		if err != nil {
			t.Fatalf("ParseHTML returned error: %v", err)
		}

		if len(page.Frames) != 2 {
			t.Fatalf("got %d frames, want 2", len(page.Frames))
		}

		indices, err := page.FrameAt(0)
		if err != nil {
			t.Fatal(err)
		}
		if got, _ := indices.Cell(0, 0); got != "Composite Index" {
			t.Errorf("frame 0 cell (0,0) = %q, want Composite Index", got)
		}

		shares, err := page.FrameAt(1)
		if err != nil {
			t.Fatal(err)
		}
		if len(shares.Rows) != 2 {
			t.Fatalf("frame 1 has %d rows, want 2", len(shares.Rows))
		}
		if got, _ := shares.Cell(1, 0); got != "CIF" {
			t.Errorf("frame 1 cell (1,0) = %q, want CIF", got)
		}
	}
}

func TestParseHTMLHeaders(t *testing.T) {
	page, err := ParseHTML(twoTablePage)
	if err != nil {
		t.Fatal(err)
	}

	frame := page.Frames[1]
	col, err := frame.Column("Close")
	if err != nil {
		t.Fatalf("Column(Close) returned error: %v", err)
	}
	if col != 1 {
		t.Errorf("Column(Close) = %d, want 1", col)
	}
}

func TestFrameAtOutOfRange(t *testing.T) {
	page, err := ParseHTML("<html><body><p>no tables here</p></body></html>")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := page.FrameAt(0); err == nil {
		t.Error("FrameAt on a table-less page should error")
	}
}
