// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package drivedb loads smartmontools-style drive database files and
// matches a drive's model/firmware strings against them, merging default,
// matched and user-supplied SMART attribute presets. The textual
// drivedb.h grammar itself is peripheral; only the produced Entry schema
// and matching semantics are specified here.
package drivedb

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// Entry is one drivedb.h record: a brace-delimited 5-tuple of quoted
// strings, { family, model_regex, firmware_regex, warning, presets }.
type Entry struct {
	Family   string
	Model    string
	Firmware string
	Warning  string
	Presets  string
}

// ParseDatabase tokenizes a drivedb.h-style document (brace-delimited
// 5-tuples of possibly-concatenated quoted string literals, with C and C++
// style comments treated as whitespace) into its entries. Entries whose
// family begins with "$" are dropped, per the drivedb.h grammar's own
// convention for marking a record inactive.
func ParseDatabase(src string) ([]Entry, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	s.Error = func(_ *scanner.Scanner, msg string) {
		// text/scanner already calls back into ErrorCount; surfaced via the
		// final "unexpected token" check below instead of here.
		_ = msg
	}

	var entries []Entry

	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		if tok != '{' {
			return nil, fmt.Errorf("drivedb: expected '{', got %q", scanner.TokenString(tok))
		}

		fields := make([]string, 0, 5)
		for i := 0; i < 5; i++ {
			field, err := scanConcatenatedString(&s)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)

			if i < 4 {
				if c := s.Scan(); c != ',' {
					return nil, fmt.Errorf("drivedb: expected ',' after field %d, got %q", i, scanner.TokenString(c))
				}
			}
		}

		if c := s.Scan(); c != '}' {
			return nil, fmt.Errorf("drivedb: expected '}', got %q", scanner.TokenString(c))
		}

		// Trailing comma between records is optional; consume it if present.
		if s.Peek() == ',' {
			s.Scan()
		}

		entry := Entry{
			Family:   fields[0],
			Model:    fields[1],
			Firmware: fields[2],
			Warning:  fields[3],
			Presets:  fields[4],
		}
		if !strings.HasPrefix(entry.Family, "$") {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// scanConcatenatedString reads one or more adjacent quoted string literals
// (C's implicit string-literal concatenation, used throughout drivedb.h to
// wrap long regexes and presets lists across lines) and returns their
// unescaped, joined value. Literals separated by whitespace are joined; a
// comment between two literals is not skipped here, so a record that
// splits a field that way is rejected as malformed.
func scanConcatenatedString(s *scanner.Scanner) (string, error) {
	var b strings.Builder

	tok := s.Scan()
	if tok != scanner.String {
		return "", fmt.Errorf("drivedb: expected string literal, got %q", scanner.TokenString(tok))
	}
	lit, err := strconv.Unquote(s.TokenText())
	if err != nil {
		return "", fmt.Errorf("drivedb: invalid string literal %s: %w", s.TokenText(), err)
	}
	b.WriteString(lit)

	for {
		// Peek does not skip whitespace, so step over it by hand before
		// checking for the next literal.
		for p := s.Peek(); p >= 0 && p < 64 && s.Whitespace&(1<<uint(p)) != 0; p = s.Peek() {
			s.Next()
		}
		if s.Peek() != '"' {
			break
		}
		tok = s.Scan()
		if tok != scanner.String {
			break
		}
		lit, err := strconv.Unquote(s.TokenText())
		if err != nil {
			return "", fmt.Errorf("drivedb: invalid string literal %s: %w", s.TokenText(), err)
		}
		b.WriteString(lit)
	}

	return b.String(), nil
}
