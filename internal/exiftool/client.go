package exiftool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"geotag/internal/coords"
	"geotag/internal/faults"
)

// GPSTimestampLayout is the layout ExifTool expects for GPS date/time tags.
const GPSTimestampLayout = "2006:01:02 15:04:05Z"

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout overrides the per-call deadline set by New.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client wraps ExifTool CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs an ExifTool client. A non-positive timeout disables the
// per-call deadline.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("exiftool binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string { return c.binary }

// WriteRequest describes one metadata update.
type WriteRequest struct {
	// Path is the image file. When Sidecar is set the sidecar is written
	// instead.
	Path    string
	Sidecar string
	// Location to write; unset deletes the GPS tags.
	Location coords.Location
	// GPSTimestamp, when non-zero, is written as the GPS date and time.
	GPSTimestamp time.Time
	// UpdateFileModTime copies DateTimeOriginal into the file modification date.
	UpdateFileModTime bool
}

// Target returns the file ExifTool will modify.
func (r WriteRequest) Target() string {
	if strings.TrimSpace(r.Sidecar) != "" {
		return r.Sidecar
	}
	return r.Path
}

// Write updates the GPS tags of one file in place.
func (c *Client) Write(ctx context.Context, req WriteRequest) error {
	if strings.TrimSpace(req.Target()) == "" {
		return errors.New("exiftool write: path required")
	}
	return c.run(ctx, "write", writeArgs(req), nil)
}

// Version returns the ExifTool version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	err := c.run(ctx, "version", []string{"-ver"}, func(line string) {
		if trimmed := strings.TrimSpace(line); trimmed != "" && version == "" {
			version = trimmed
		}
	})
	if err != nil {
		return "", err
	}
	return version, nil
}

func (c *Client) run(ctx context.Context, operation string, args []string, onStdout func(string)) error {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if onStdout == nil {
		onStdout = func(string) {}
	}
	err := c.exec.Run(callCtx, c.binary, args, onStdout)
	if err == nil {
		return nil
	}
	return classify(ctx, callCtx, "exiftool "+operation, err)
}

// classify maps executor failures onto fault markers. The parent context
// decides between cancellation and a per-call timeout.
func classify(parent, call context.Context, operation string, err error) error {
	switch {
	case parent.Err() != nil:
		return faults.Wrap(faults.ErrCancelled, operation, "", err)
	case errors.Is(call.Err(), context.DeadlineExceeded):
		return faults.Wrap(faults.ErrTimeout, operation, "", err)
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

func writeArgs(req WriteRequest) []string {
	var lat, lon, alt, altRef string
	if req.Location.IsSet() {
		lat = coords.Format(req.Location.Latitude, coords.Latitude)
		lon = coords.Format(req.Location.Longitude, coords.Longitude)
		if ele := req.Location.Elevation; ele.IsSet() {
			meters := ele.Value()
			altRef = "0"
			if meters < 0 {
				altRef = "1"
				meters = -meters
			}
			alt = coords.FormatElevation(coords.Meters(meters))
		}
	}
	args := []string{
		"-q",
		"-m",
		"-overwrite_original_in_place",
		"-GPSLatitude=" + lat,
		"-GPSLatitudeRef=" + lat,
		"-GPSLongitude=" + lon,
		"-GPSLongitudeRef=" + lon,
		"-GPSAltitude=" + alt,
		"-GPSAltitudeRef=" + altRef,
	}
	if req.UpdateFileModTime {
		args = append(args, "-FileModifyDate<DateTimeOriginal")
	}
	if !req.GPSTimestamp.IsZero() {
		stamp := req.GPSTimestamp.UTC().Format(GPSTimestampLayout)
		if req.Target() != req.Path {
			args = append(args, "-GPSDateTime="+stamp)
		} else {
			date, clock, _ := strings.Cut(stamp, " ")
			args = append(args, "-GPSDateStamp="+date, "-GPSTimeStamp="+clock)
		}
	}
	return append(args, "-GPSStatus=", req.Target())
}
