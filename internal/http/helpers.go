package http

import (
	"errors"
	"net/http"
	"strings"

	"finsmart/internal/core"
	"finsmart/internal/services"
)

// sanitizeInput removes control characters (except tab and newlines) and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

// userMessages maps error sentinels to the text shown on screen. Order
// matters: specific errors come before the classes they wrap.
var userMessages = []struct {
	err error
	msg string
}{
	{services.ErrNoData, "Belum ada transaksi. Tambahkan data untuk analisis AI."},
	{core.ErrDuplicateEmail, "Email sudah terdaftar."},
	{core.ErrUnknownEmail, "Email tidak ditemukan."},
	{core.ErrWrongPassword, "Password salah."},
	{core.ErrMissingField, "Mohon isi semua kolom yang wajib."},
	{core.ErrInvalidCategory, "Kategori tidak valid."},
	{core.ErrInvalidAmount, "Jumlah tidak valid."},
	{core.ErrInvalidDate, "Tanggal tidak valid."},
	{core.ErrInvalidRating, "Rating harus antara 1 dan 5."},
	{core.ErrValidation, "Data tidak valid."},
	{core.ErrStorageUnavailable, "Penyimpanan sedang tidak tersedia, coba lagi nanti."},
	{core.ErrExternalService, "Layanan AI sedang tidak tersedia, coba lagi nanti."},
}

func userMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Terjadi kesalahan, coba lagi nanti."
}

// statusFor maps an error to the HTTP status of the re-rendered screen.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownEmail), errors.Is(err, core.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
