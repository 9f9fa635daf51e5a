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
package derive

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/trinistats/ttsetl/data"
)

func buy(quantity int64, price float64) *data.PortfolioTransaction {
	return &data.PortfolioTransaction{Type: data.TransactionBuy, Quantity: quantity,
		Price: decimal.NewFromFloat(price)}
}

func sell(quantity int64, price float64) *data.PortfolioTransaction {
	return &data.PortfolioTransaction{Type: data.TransactionSell, Quantity: quantity,
		Price: decimal.NewFromFloat(price)}
}

func TestPositionBookCost(t *testing.T) {
	current := &position{}
	current.apply(buy(100, 10))
	current.apply(buy(100, 20))

	if current.shares != 200 || current.bought != 200 {
		t.Fatalf("shares = %d bought = %d, want 200 and 200", current.shares, current.bought)
	}
	if current.book.String() != "3000" {
		t.Fatalf("book = %s, want 3000", current.book)
	}

	// Sells reduce the share count only. Book cost stays the sum of buys
	// so average cost is book over shares bought.
	current.apply(sell(100, 25))
	if current.shares != 100 {
		t.Errorf("shares after sell = %d, want 100", current.shares)
	}
	if current.book.String() != "3000" {
		t.Errorf("book after sell = %s, want 3000", current.book)
	}
	if current.bought != 200 {
		t.Errorf("bought after sell = %d, want 200", current.bought)
	}
}

func TestPositionSellKeepsBook(t *testing.T) {
	current := &position{}
	current.apply(buy(100, 10))
	current.apply(sell(50, 12))

	if current.shares != 50 {
		t.Errorf("shares = %d, want 50", current.shares)
	}
	if current.book.String() != "1000" {
		t.Errorf("book = %s, want 1000", current.book)
	}
}

func TestPositionOversellClamps(t *testing.T) {
	current := &position{}
	current.apply(buy(50, 10))
	current.apply(sell(80, 12))

	if current.shares != 0 {
		t.Errorf("shares = %d, want clamp at 0", current.shares)
	}
	if current.book.String() != "500" {
		t.Errorf("book = %s, want 500", current.book)
	}

	// A sell against an empty position is a no-op.
	current.apply(sell(10, 12))
	if current.shares != 0 {
		t.Error("sell on empty position should change nothing")
	}
}
