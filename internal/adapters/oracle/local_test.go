package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"platewise/internal/core/barcode"
	"platewise/internal/core/diag"
	"platewise/internal/platform/logger"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

func ean13Image(t *testing.T, code string, w, h int) image.Image {
	t.Helper()
	bm, err := oned.NewEAN13Writer().Encode(code, gozxing.BarcodeFormat_EAN_13, w, h, nil)
	if err != nil {
		t.Fatalf("encode %s: %v", code, err)
	}
	return bm
}

func pngBase64(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func white(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

func TestLocal_DecodesEAN13(t *testing.T) {
	l := NewLocal()
	resp, err := l.Decode(context.Background(), barcode.OracleRequest{ImageBase64: pngBase64(t, ean13Image(t, "4006381333931", 400, 120))})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !resp.Found || resp.Barcode != "4006381333931" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestLocal_MissIsNotAnError(t *testing.T) {
	resp, err := NewLocal().DecodeImage(white(300, 100))
	if err != nil || resp.Found {
		t.Fatalf("resp = %+v err = %v", resp, err)
	}
}

func TestLocal_BadInput(t *testing.T) {
	l := NewLocal()
	if _, err := l.Decode(context.Background(), barcode.OracleRequest{ImageBase64: "!!!"}); err == nil {
		t.Fatalf("bad base64 should fail")
	}
	if _, err := l.Decode(context.Background(), barcode.OracleRequest{ImageBase64: base64.StdEncoding.EncodeToString([]byte("not an image"))}); err == nil {
		t.Fatalf("bad image should fail")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Decode(ctx, barcode.OracleRequest{}); err == nil {
		t.Fatalf("canceled context should fail")
	}
}

// a barcode in the middle of a photo is read on the first center band pass
func TestLocal_WithDecoder(t *testing.T) {
	canvas := white(600, 400)
	code := ean13Image(t, "0036000291452", 400, 160)
	at := image.Rect(100, 120, 500, 280)
	draw.Draw(canvas, at, code, code.Bounds().Min, draw.Src)

	rec := diag.NewRecorder(diag.DebugConfig{Enabled: true}, diag.WithLogger(logger.Nop()))
	dec := barcode.NewDecoder(NewLocal(), barcode.WithMinEdge(0), barcode.WithBudget(0), barcode.WithRecorder(rec))
	res := dec.Decode(context.Background(), canvas, diag.SessionMeta{RequestID: "local-1"})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Code != "036000291452" || res.Format != barcode.FormatUPCA {
		t.Fatalf("result = %+v", res)
	}
	if res.Attempts != 1 {
		t.Fatalf("attempts = %d", res.Attempts)
	}
}
