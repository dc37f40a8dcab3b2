// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

// Package mailparse extracts a subject and text body from an RFC 5322
// email document. This is the boundary between the mail subsystem's
// world (MIME trees, transfer encodings, header folding) and the
// delivery pipeline, which only ever sees two strings.
package mailparse

import (
	"bytes"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/TheFlipside/matrix-mta/lib/netutil"
)

// Content is the extracted email content. Transient — it exists only
// within one process run.
type Content struct {
	Subject string
	Body    string
}

// Parse reads one RFC 5322 email from reader and extracts the subject
// and a plain-text body.
//
// For multipart messages the first text/plain inline part wins; when
// no text/plain part exists, the first text/html part is used verbatim
// (a chat transcript with raw markup beats a silently empty message).
// Attachments are ignored. Input that go-message cannot parse at all
// is treated as a headerless plain-text body — mail subsystems do feed
// this program bare text, and delivery must not fail on it.
func Parse(reader io.Reader) (Content, error) {
	raw, err := io.ReadAll(io.LimitReader(reader, netutil.MaxResponseSize))
	if err != nil {
		return Content{}, err
	}

	messageReader, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return Content{Body: string(raw)}, nil
	}
	defer messageReader.Close()

	subject, err := messageReader.Header.Subject()
	if err != nil {
		// Undecodable subject header (broken encoded-word). The raw
		// error text is useless in a chat message; fall back to the
		// placeholder the composer substitutes for empty subjects.
		subject = ""
	}

	var textBody, htmlBody string
	for {
		part, err := messageReader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		partBody, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && textBody == "":
			textBody = string(partBody)
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = string(partBody)
		}
	}

	body := textBody
	if body == "" {
		body = htmlBody
	}

	return Content{
		Subject: subject,
		Body:    body,
	}, nil
}

// FromBody builds Content from a caller-supplied subject and a raw
// body, bypassing MIME parsing entirely. This serves the --subject
// invocation path, where the whole stdin input is the body verbatim.
func FromBody(subject string, reader io.Reader) (Content, error) {
	raw, err := io.ReadAll(io.LimitReader(reader, netutil.MaxResponseSize))
	if err != nil {
		return Content{}, err
	}
	return Content{
		Subject: subject,
		Body:    string(raw),
	}, nil
}
