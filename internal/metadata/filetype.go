package metadata

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// writableExtensions lists file extensions ExifTool can update. PNG is left
// out: ExifTool writes it, but many viewers ignore the resulting metadata.
var writableExtensions = map[string]struct{}{}

func init() {
	for _, ext := range []string{
		"360", "3g2", "3gp", "aax", "ai", "arq", "arw", "avif", "cr2", "cr3",
		"crm", "crw", "cs1", "dcp", "dng", "dr4", "dvb", "eps", "erf", "exif",
		"exv", "f4a", "f4v", "fff", "flif", "gif", "gpr", "hdp", "heic", "heif",
		"icc", "iiq", "ind", "insp", "jng", "jp2", "jpeg", "jpg", "jpe", "lrv",
		"m4a", "m4v", "mef", "mie", "mng", "mos", "mov", "mp4", "mpo", "mqv",
		"mrw", "nef", "nrw", "orf", "ori", "pbm", "pdf", "pef", "pgm", "ppm",
		"ps", "psb", "psd", "qtif", "raf", "raw", "rw2", "rwl", "sr2", "srw",
		"thm", "tif", "tiff", "vrd", "wdp", "x3f", "xmp",
	} {
		writableExtensions[ext] = struct{}{}
	}
}

// Writable reports whether ExifTool can write metadata into path, judged by
// its extension.
func Writable(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	_, ok := writableExtensions[ext]
	return ok
}

// Loadable reports whether the image header decodes with one of the
// registered decoders. RAW and HEIC files are not loadable here even when
// their metadata is readable.
func Loadable(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()
	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return false
	}
	return cfg.Width > 0 && cfg.Height > 0
}
