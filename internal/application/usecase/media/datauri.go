package media

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const base64Encoding = "base64"

func EncodeBase64(file []byte) string {
	return base64.StdEncoding.EncodeToString(file)
}

// BuildDataURI renders data:<mime>;<encoding>,<data>.
func BuildDataURI(mimeType, encoding, data string) string {
	return fmt.Sprintf("data:%s;%s,%s", mimeType, encoding, data)
}

// resolveMIME keeps the caller's type and only sniffs the bytes when none was sent.
func resolveMIME(file []byte, declared string) string {
	if declared != "" {
		return declared
	}
	sniffed, _, _ := strings.Cut(mimetype.Detect(file).String(), ";")
	return strings.TrimSpace(sniffed)
}

func fileURI(file []byte, mimeType string) string {
	return BuildDataURI(resolveMIME(file, mimeType), base64Encoding, EncodeBase64(file))
}
