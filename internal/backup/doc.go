// Package backup copies an image aside immediately before ExifTool rewrites
// it, either next to the file with a ".original" suffix or into a backup
// folder with "name-N.ext" de-duplication.
package backup
