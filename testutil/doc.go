// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil holds fixtures shared by the HTTP and router tests:
// a throwaway sqlite archive, a test configuration, auth headers, and
// request/response assertions.
package testutil
