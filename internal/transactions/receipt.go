package transactions

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "expensely/internal/errors"
)

// MaxReceiptBytes bounds the size of an uploaded receipt.
const MaxReceiptBytes = 5 << 20

// UploadReceipt reads the receipt content and returns an embeddable data
// URL reference (data:<mime>;base64,<payload>). It does not touch storage;
// the caller stores the reference through Create or Update.
func (r *Repository) UploadReceipt(src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, MaxReceiptBytes+1))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrReceiptUnreadable, err)
	}
	if len(data) == 0 {
		return "", apperrors.WithMessage(apperrors.ErrReceiptUnreadable, "Receipt file is empty")
	}
	if len(data) > MaxReceiptBytes {
		return "", apperrors.WithMessage(apperrors.ErrReceiptUnreadable, "Receipt file is larger than 5 MB")
	}
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
