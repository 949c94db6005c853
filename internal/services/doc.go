// Package services defines context helpers shared by the save engine, the
// working-set facade and the CLI.
//
// The helpers stamp batch identifiers, image paths and correlation
// identifiers onto a context so logging.WithContext can surface them as
// structured fields without threading loggers through every call.
package services
