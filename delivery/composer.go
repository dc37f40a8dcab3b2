// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

// NoSubjectPlaceholder substitutes for an absent subject line, keeping
// the two-paragraph message shape intact so the reader can always tell
// subject from body.
const NoSubjectPlaceholder = "No Subject"

// Compose formats an email's subject and body into the message text
// posted to the room: subject and body joined by a blank line. Pure —
// no error conditions.
func Compose(subject, body string) string {
	if subject == "" {
		subject = NoSubjectPlaceholder
	}
	return subject + "\n\n" + body
}
