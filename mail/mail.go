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

// Package mail sends operator notifications through the local sendmail
// binary. Error records accumulate in a buffer during a run and flush as a
// single summary message, so operators get one email per run rather than a
// page per flaky upstream request.
package mail

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mailer pipes messages to sendmail.
type Mailer struct {
	SendmailPath string
	From         string
	To           string
}

// Send writes one message through the sendmail pipe. A missing recipient
// disables mailing silently so development runs do not need a local MTA.
func (mailer *Mailer) Send(subject, body string) error {
	if mailer.To == "" || mailer.SendmailPath == "" {
		log.Debug().Str("Subject", subject).Msg("mail disabled, dropping message")
		return nil
	}

	message := fmt.Sprintf("To: %s\nFrom: %s\nSubject: %s\n\n%s\n",
		mailer.To, mailer.From, subject, body)

	cmd := exec.Command(mailer.SendmailPath, "-t")
	cmd.Stdin = strings.NewReader(message)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mail: sendmail pipe failed: %w", err)
	}

	log.Info().Str("Subject", subject).Str("To", mailer.To).Msg("sent mail")
	return nil
}

// ErrorBuffer is a zerolog hook that collects ERROR-and-above records for
// the end-of-run summary email. Safe under concurrent writers.
type ErrorBuffer struct {
	mu      sync.Mutex
	records []string
}

// Run implements zerolog.Hook.
func (buffer *ErrorBuffer) Run(_ *zerolog.Event, level zerolog.Level, message string) {
	if level < zerolog.ErrorLevel {
		return
	}

	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	buffer.records = append(buffer.records, fmt.Sprintf("[%s] %s", level, message))
}

// Len returns the number of buffered records.
func (buffer *ErrorBuffer) Len() int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	return len(buffer.records)
}

// Flush emails the buffered records (if any) and clears the buffer.
func (buffer *ErrorBuffer) Flush(mailer *Mailer, runLabel string) error {
	buffer.mu.Lock()
	records := buffer.records
	buffer.records = nil
	buffer.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	subject := fmt.Sprintf("ttsetl %s: %d error(s)", runLabel, len(records))
	return mailer.Send(subject, strings.Join(records, "\n"))
}
