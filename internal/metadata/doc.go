// Package metadata reads the embedded location and capture timestamp of an
// image file.
//
// EXIFReader decodes EXIF in-process with goexif; ExifTool-backed readers
// live in the exiftool package and are combined with it through Chain. The
// package also knows which file types ExifTool can write, where XMP sidecars
// live, and whether an image decodes for preview.
package metadata
