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
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Library is the handle to the market-data database. All scrapers and
// derivations share one Library and its connection pool; scopes acquire
// connections and release them on every exit path.
type Library struct {
	DBUrl string
	Pool  *pgxpool.Pool
}

// NewFromDB connects the library to the given database.
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Library{DBUrl: dbURL, Pool: pool}, nil
}

// Close the database pool.
func (myLibrary *Library) Close() {
	myLibrary.Pool.Close()
}
