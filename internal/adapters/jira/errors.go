/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "errors"
    "fmt"
)

// Kind classifies a client failure. Callers branch on the kind to pick a
// user-facing message; only KindUnreachable and KindServer are ever retried.
type Kind int

const (
    KindUnknown Kind = iota
    KindUnreachable
    KindAuth
    KindForbidden
    KindHTML
    KindJQLSyntax
    KindServer
    KindBadResponse
)

const htmlDiagnostic = "JIRA returned an HTML page instead of JSON. This usually means: " +
    "authentication failed (check your JIRA_PAT_TOKEN), the JIRA URL is wrong " +
    "(check your JIRA_URL), or the token lacks permission for this filter/query."

type Error struct {
    Kind    Kind
    Status  int
    Message string
    cause   error
}

func (e *Error) Error() string {
    if e.cause != nil { return fmt.Sprintf("%s: %v", e.Message, e.cause) }
    return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf returns the classification of err, or KindUnknown for errors that
// did not originate in this package.
func KindOf(err error) Kind {
    var e *Error
    if errors.As(err, &e) { return e.Kind }
    return KindUnknown
}
