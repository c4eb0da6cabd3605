// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of the screen forms into domain values.
// Bodies may arrive form-encoded (plain forms and HTMX) or as JSON.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
)

// maxBodyBytes bounds every form body; the largest legitimate one is a
// 1000-character review.
const maxBodyBytes = 16 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body of r once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body larger than %d bytes", maxBodyBytes)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized, trimmed value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	return sanitizeInput(p.GetRaw(key))
}

// GetRaw returns a value without sanitizing it. Passwords go through here so
// that no character the user typed is altered.
func (p *RequestBodyParser) GetRaw(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return stringValue(val)
		}
		return ""
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// credentials is the body of the signup and login forms.
type credentials struct {
	Email    string
	Password string
	Budget   decimal.Decimal
}

// parseCredentials reads email and password; withBudget also reads the
// starting budget, where a blank field means zero. The email is kept
// byte for byte since accounts are matched case-sensitively.
func parseCredentials(p *RequestBodyParser, withBudget bool) (credentials, error) {
	c := credentials{
		Email:    p.GetRaw("email"),
		Password: p.GetRaw("password"),
		Budget:   decimal.Zero,
	}
	if !withBudget {
		return c, nil
	}
	if raw := p.Get("budget"); raw != "" {
		b, err := core.ParseAmount(raw)
		if err != nil {
			return c, err
		}
		c.Budget = b
	}
	return c, nil
}

// parseTransaction reads the dashboard form. A blank date means today.
// The amount is signed: positive spends, negative earns.
func parseTransaction(p *RequestBodyParser, user string, now time.Time) (core.Transaction, error) {
	tx := core.Transaction{User: user}

	date, err := parseDateOrToday(p.Get("date"), now)
	if err != nil {
		return tx, err
	}
	tx.Date = date

	if tx.Category, err = core.ParseCategory(p.Get("category")); err != nil {
		return tx, err
	}
	if tx.Amount, err = core.ParseAmount(p.Get("amount")); err != nil {
		return tx, err
	}
	return tx, tx.Validate()
}

func parseDateOrToday(s string, now time.Time) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	return core.ParseDate(s)
}

// parseReview reads the reviews form. Time is stamped by the service.
func parseReview(p *RequestBodyParser) (core.Review, error) {
	r := core.Review{
		Name:  p.Get("name"),
		Email: p.GetRaw("email"),
		Text:  p.Get("text"),
	}
	rating, err := strconv.Atoi(p.Get("rating"))
	if err != nil {
		return r, core.ErrInvalidRating
	}
	r.Rating = rating
	return r, r.Validate()
}
