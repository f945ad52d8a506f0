package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/jpeg" // decoders for rendered candidates and fixtures
	_ "image/png"

	"platewise/internal/core/barcode"
	perr "platewise/internal/platform/errors"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// Local decodes in process with the gozxing UPC/EAN readers
type Local struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewLocal builds the in-process oracle
func NewLocal() *Local {
	return &Local{hints: map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
		gozxing.DecodeHintType_POSSIBLE_FORMATS: []gozxing.BarcodeFormat{
			gozxing.BarcodeFormat_UPC_A,
			gozxing.BarcodeFormat_EAN_13,
			gozxing.BarcodeFormat_EAN_8,
		},
	}}
}

// Decode implements barcode.Oracle
func (l *Local) Decode(ctx context.Context, in barcode.OracleRequest) (barcode.OracleResponse, error) {
	if err := ctx.Err(); err != nil {
		return barcode.OracleResponse{}, perr.Wrap(err, perr.ErrorCodeTimeout, "oracle canceled")
	}
	raw, err := base64.StdEncoding.DecodeString(in.ImageBase64)
	if err != nil {
		return barcode.OracleResponse{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "oracle base64")
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return barcode.OracleResponse{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "oracle image decode")
	}
	return l.DecodeImage(img)
}

// DecodeImage reads one barcode from img; misses and unreadable symbols are not errors
func (l *Local) DecodeImage(img image.Image) (barcode.OracleResponse, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return barcode.OracleResponse{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "oracle bitmap")
	}
	res, err := oned.NewMultiFormatUPCEANReader(l.hints).Decode(bmp, l.hints)
	if err != nil {
		switch err.(type) {
		case gozxing.NotFoundException, gozxing.ChecksumException, gozxing.FormatException:
			return barcode.OracleResponse{}, nil
		}
		return barcode.OracleResponse{}, perr.Wrap(err, perr.ErrorCodeUnknown, "oracle decode")
	}
	return barcode.OracleResponse{Barcode: res.GetText(), Found: res.GetText() != ""}, nil
}
