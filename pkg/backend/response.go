// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// maxErrorBodyBytes bounds how much of an error response body is read for
// diagnostics. Backends occasionally return full HTML error pages.
const maxErrorBodyBytes = 8 * 1024

// CheckStatus validates that the response carries a 2xx status.
//
// # Description
//
// Reads and logs (a bounded prefix of) the body for non-2xx responses and
// returns a descriptive error. The body is consumed on error; on success
// it is untouched and remains the caller's responsibility.
//
// # Inputs
//
//   - requestID: Correlation id for logging.
//   - resp: Response to validate.
//
// # Outputs
//
//   - error: Non-nil when status is outside 200-299.
func CheckStatus(requestID string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		slog.Error("backend returned error status (body unreadable)",
			"request_id", requestID,
			"status_code", resp.StatusCode,
			"read_error", err,
		)
		return fmt.Errorf("server error (%d): failed to read response body", resp.StatusCode)
	}

	slog.Error("backend returned error status",
		"request_id", requestID,
		"status_code", resp.StatusCode,
		"response_body", string(bodyBytes),
	)
	return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(bodyBytes))
}

// DecodeJSON decodes the response body into v and closes the body.
//
// Intended for the common "validate then decode" sequence:
//
//	resp, err := client.Get(ctx, url)
//	if err != nil { return err }
//	if err := backend.CheckStatus(reqID, resp); err != nil {
//	    resp.Body.Close()
//	    return err
//	}
//	var out listResponse
//	if err := backend.DecodeJSON(resp, &out); err != nil { return err }
func DecodeJSON(resp *http.Response, v any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "error", err)
		}
	}()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ReadAll reads the full response body and closes it.
//
// Used for binary payloads such as exported reports.
func ReadAll(resp *http.Response) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "error", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
