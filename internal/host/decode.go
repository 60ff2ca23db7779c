package host

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/models"
)

const encodingBase64 = "base64"

// ErrUndecodableBlob is returned for blobs that are not base64 or whose payload is corrupt.
var ErrUndecodableBlob = common.WrapError(common.ErrMalformedPayload, "undecodable blob")

// DecodeContent reverses the transport encoding of blob and interprets the bytes
// as UTF-8. The host wraps base64 at fixed width, so line breaks are removed first.
// Invalid UTF-8 sequences are replaced with U+FFFD rather than failing.
func DecodeContent(blob *models.Blob) (string, error) {
	if blob == nil {
		return "", ErrUndecodableBlob
	}
	if !strings.EqualFold(blob.Encoding, encodingBase64) {
		return "", common.WrapErrorf(ErrUndecodableBlob, "unsupported encoding %q", blob.Encoding)
	}

	compact := strings.NewReplacer("\n", "", "\r", "").Replace(blob.EncodedContent)
	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return "", common.WrapErrorf(ErrUndecodableBlob, "base64: %v", err)
	}

	if !utf8.Valid(raw) {
		return strings.ToValidUTF8(string(raw), "\uFFFD"), nil
	}
	return string(raw), nil
}
