/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package version holds build information injected at link time, e.g.
//
//	go build -ldflags "-X github.com/microsoft/devtools-rdp/internal/version.ProductVersion=1.2.0"
package version

import (
	"bytes"
	"strconv"
	"time"
)

const (
	DevelopmentVersion = "dev"
)

var (
	ProductVersion = DevelopmentVersion
	CommitHash     = ""
	BuildTimestamp = "" // Unix seconds or RFC 3339
)

// BuildTime marshals as an RFC 3339 string, or null when the build time is unknown.
type BuildTime struct {
	time.Time
}

func (t BuildTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return []byte("\"" + t.Format(time.RFC3339) + "\""), nil
}

func (t *BuildTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	parsed, err := time.Parse("\""+time.RFC3339+"\"", string(data))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

type VersionOutput struct {
	Version    string    `json:"version"`
	CommitHash string    `json:"commitHash,omitempty"`
	BuildTime  BuildTime `json:"buildTimestamp"`
}

func Version() VersionOutput {
	productVersion := ProductVersion
	if productVersion == "" {
		productVersion = DevelopmentVersion
	}

	return VersionOutput{
		Version:    productVersion,
		CommitHash: CommitHash,
		BuildTime:  BuildTime{parseBuildTimestamp(BuildTimestamp)},
	}
}

func parseBuildTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC()
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed
	}
	return time.Time{}
}
