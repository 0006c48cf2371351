// Package sniff determines the true format of an uploaded file from its
// leading bytes. Client-declared content types are never trusted; callers
// must treat an unrecognized signature as a rejection.
package sniff

import (
	"bytes"

	"fittrack-api/internal/domain"
)

// HeaderSize is the number of leading bytes Detect needs at most.
const HeaderSize = 16

// Result holds the verified media type of a recognized file.
type Result struct {
	MimeType string
	Category domain.MediaCategory
}

type prefixSignature struct {
	prefix []byte
	result Result
}

// Fixed-prefix signatures checked in order.
var prefixSignatures = []prefixSignature{
	{[]byte{0xFF, 0xD8, 0xFF}, Result{"image/jpeg", domain.MediaCategoryImage}},
	{[]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, Result{"image/png", domain.MediaCategoryImage}},
	{[]byte("GIF87a"), Result{"image/gif", domain.MediaCategoryImage}},
	{[]byte("GIF89a"), Result{"image/gif", domain.MediaCategoryImage}},
	// EBML header shared by WebM and Matroska; treated as WebM here
	{[]byte{0x1A, 0x45, 0xDF, 0xA3}, Result{"video/webm", domain.MediaCategoryVideo}},
}

// ISO-BMFF major brands (bytes 8-11 when bytes 4-7 spell "ftyp").
var ftypBrands = map[string]Result{
	"isom": {"video/mp4", domain.MediaCategoryVideo},
	"iso2": {"video/mp4", domain.MediaCategoryVideo},
	"mp41": {"video/mp4", domain.MediaCategoryVideo},
	"mp42": {"video/mp4", domain.MediaCategoryVideo},
	"avc1": {"video/mp4", domain.MediaCategoryVideo},
	"dash": {"video/mp4", domain.MediaCategoryVideo},
	"qt  ": {"video/quicktime", domain.MediaCategoryVideo},
	"heic": {"image/heic", domain.MediaCategoryImage},
	"heix": {"image/heic", domain.MediaCategoryImage},
	"mif1": {"image/heic", domain.MediaCategoryImage},
	"msf1": {"image/heic", domain.MediaCategoryImage},
}

// Compatibility groups for declared types that differ from the detected one
// without indicating spoofing. Keyed by detected mime.
var compatibleDeclared = map[string]map[string]bool{
	// Some clients report MOV containers as video/mp4 and vice versa
	"video/quicktime": {"video/mp4": true},
	"video/mp4":       {"video/quicktime": true},
	// Legacy spelling still sent by some browsers
	"image/jpeg": {"image/jpg": true},
	// HEIC shot in sequence mode
	"image/heic": {"image/heif": true},
}

// Detect inspects head (at most the first HeaderSize bytes are needed) and
// returns the verified media type. The second return value is false when no
// known signature matches.
func Detect(head []byte) (Result, bool) {
	for _, sig := range prefixSignatures {
		if bytes.HasPrefix(head, sig.prefix) {
			return sig.result, true
		}
	}

	// RIFF container: "RIFF" at 0-3, format tag at 8-11
	if len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) {
		if bytes.Equal(head[8:12], []byte("WEBP")) {
			return Result{"image/webp", domain.MediaCategoryImage}, true
		}
		return Result{}, false
	}

	// ISO Base Media File Format: "ftyp" at 4-7, major brand at 8-11
	if len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp")) {
		if res, ok := ftypBrands[string(head[8:12])]; ok {
			return res, true
		}
		return Result{}, false
	}

	return Result{}, false
}

// MatchesDeclared reports whether the client-declared mime type is acceptable
// for the detected result: either an exact match or a member of a small
// whitelist of compatible spellings. Anything else is treated as spoofing.
func MatchesDeclared(detected Result, declared string) bool {
	if declared == detected.MimeType {
		return true
	}
	return compatibleDeclared[detected.MimeType][declared]
}
