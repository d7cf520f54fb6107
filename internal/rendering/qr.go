package rendering

import (
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRCaption accompanies the QR image wherever it is shown.
const QRCaption = "Scan to view interactive resume (placeholder)"

// DefaultQRModulePixels is the pixel size of one QR module.
const DefaultQRModulePixels = 10

// EncodeQR renders data as a PNG QR code with low error correction, a
// four-module quiet zone and modulePx pixels per module.
func EncodeQR(data string, modulePx int) ([]byte, error) {
	if modulePx < 1 {
		modulePx = DefaultQRModulePixels
	}

	q, err := qrcode.New(data, qrcode.Low)
	if err != nil {
		return nil, &QRError{Data: data, Cause: err}
	}

	// A negative size tells the encoder to use a fixed pixel count per module.
	png, err := q.PNG(-modulePx)
	if err != nil {
		return nil, &QRError{Data: data, Cause: err}
	}
	return png, nil
}

// ProfileURL builds the URL encoded in the QR image from the profile's
// LinkedIn value. Anything that is not already an http(s) URL is treated as a
// handle and appended to base. Full URLs are passed through instead of being
// appended, so a pasted profile link never becomes base + "https://...".
func ProfileURL(base, linkedin string) string {
	lower := strings.ToLower(linkedin)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return linkedin
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(linkedin, "/")
}
