package lib

import (
	"fmt"
	"log"
	"os"

	"github.com/yeqown/go-qrcode"
)

// QRCodeJPEG renders text as a QR code and returns the JPEG bytes.
func QRCodeJPEG(text string) ([]byte, error) {
	qrc, err := qrcode.New(text)
	if err != nil {
		return nil, err
	}
	f, err := os.CreateTemp("", "link-*.jpeg")
	if err != nil {
		return nil, fmt.Errorf("could not create temp file: %w", err)
	}
	filepath := f.Name()
	f.Close()
	defer os.Remove(filepath)
	if err = qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return nil, err
	}
	return os.ReadFile(filepath)
}
