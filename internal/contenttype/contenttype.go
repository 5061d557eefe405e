// Package contenttype infers a content type from a file name extension and
// decides whether that content can be stored inline as text.
package contenttype

import (
	"fmt"
	"strings"
)

var byExtension = map[string]string{
	"html": "text/html", "htm": "text/html",
	"xhtml": "application/xhtml+xml",
	"txt":   "text/plain", "md": "text/plain", "ini": "text/plain",
	"ts": "application/typescript", "tsx": "application/typescript",
	"js": "text/javascript", "mjs": "text/javascript", "cjs": "text/javascript", "jsx": "text/javascript",
	"json":  "application/json",
	"csv":   "text/csv",
	"tsv":   "text/tab-separated-values",
	"css":   "text/css",
	"scss":  "text/x-scss",
	"sass":  "text/x-sass",
	"rtf":   "application/rtf",
	"rss":   "application/rss+xml",
	"atom":  "application/atom+xml",
	"yaml":  "application/x-yaml", "yml": "application/x-yaml",
	"xml":  "application/xml",
	"ico":  "image/x-icon",
	"jpg":  "image/jpeg", "jpeg": "image/jpeg",
	"png":  "image/png",
	"apng": "image/apng",
	"webp": "image/webp",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml", "svgz": "image/svg+xml",
	"tiff": "image/tiff", "tif": "image/tiff",
	"mp3": "audio/mpeg",
	"mid": "audio/midi", "midi": "audio/midi",
	"wav": "audio/wav", "wave": "audio/wav",
	"ogg":   "audio/ogg",
	"aac":   "audio/aac",
	"flac":  "audio/flac",
	"m4a":   "audio/mp4",
	"mp4":   "video/mp4",
	"webm":  "video/webm",
	"avi":   "video/x-msvideo",
	"ogv":   "video/ogg",
	"mkv":   "video/x-matroska",
	"ttf":   "application/x-font-ttf",
	"otf":   "application/x-font-opentype",
	"woff":  "application/font-woff",
	"woff2": "application/font-woff2",
	"sfnt":  "application/font-sfnt",
	"pdf":   "application/pdf",
	"epub":  "application/epub+zip",
	"doc":   "application/msword", "docx": "application/msword",
	"xls": "application/vnd.ms-excel", "xlsx": "application/vnd.ms-excel",
	"ppt": "application/vnd.ms-powerpoint", "pptx": "application/vnd.ms-powerpoint",
	"zip": "application/zip",
	"7z":  "application/x-7z-compressed",
	"rar": "application/vnd.rar",
	"tar": "application/x-tar",
	"gz":  "application/gzip",
	"bz2": "application/x-bzip2",
	"exe": "application/x-msdownload",
	"dll": "application/x-msdownload",
}

// application/* types that are still text
var textApplication = []string{
	"application/json",
	"application/xml",
	"application/javascript",
	"application/typescript",
	"application/rtf",
	"application/x-html",
	"application/x-yaml",
	"application/rss",
	"application/atom",
}

// FromExtension returns the content type for a bare extension such as "pdf".
func FromExtension(ext string) (string, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ct, ok := byExtension[ext]; ok {
		return ct, nil
	}
	return "", fmt.Errorf("unrecognized file type: %q", ext)
}

// FromName returns the content type for a file name. The extension is the text
// after the last dot; a name without a dot is looked up as a whole.
func FromName(name string) (string, error) {
	ext := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		ext = name[i+1:]
	}
	if ext == "" {
		return "", fmt.Errorf("unrecognized file type for: %q", name)
	}
	return FromExtension(ext)
}

// IsTextFile reports whether a file with this name holds text content.
// Unknown extensions are not text.
func IsTextFile(name string) bool {
	ct, err := FromName(name)
	if err != nil {
		return false
	}
	switch {
	case strings.HasPrefix(ct, "text/"):
		return true
	case strings.HasPrefix(ct, "application/"):
		for _, prefix := range textApplication {
			if strings.HasPrefix(ct, prefix) {
				return true
			}
		}
	}
	return false
}
