package services

import (
	"fmt"

	"booktable-api/apperr"
	"booktable-api/models"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// ReservationPayload is the text encoded in a reservation QR code.
func ReservationPayload(res *models.Reservation) string {
	name := ""
	if res.Restaurant != nil {
		name = res.Restaurant.Name
	}
	return fmt.Sprintf("BOOKTABLE|reservation=%d|restaurant=%s|table=%d|date=%s|time=%s|people=%d",
		res.ID, name, res.TableID, res.Date, res.Time, res.PartySize)
}

// ReservationQRCode renders the reservation payload as a PNG.
func ReservationQRCode(res *models.Reservation) ([]byte, error) {
	png, err := qrcode.Encode(ReservationPayload(res), qrcode.Medium, qrSize)
	if err != nil {
		return nil, apperr.Internal("failed to render qr code", err)
	}
	return png, nil
}
