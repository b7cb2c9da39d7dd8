package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"burnrate/internal/core"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
)

var errBadBody = errors.New("invalid request body")

// decodeJSON reads a single JSON value from a size-limited body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadBody)
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// jsonAmount accepts an amount as a JSON number or string. Empty strings
// and null decode to zero so handlers can report the field as missing.
type jsonAmount struct {
	decimal.Decimal
}

func (a *jsonAmount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	s = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	if s == "" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	a.Decimal = d
	return nil
}

func (a jsonAmount) missing() bool { return a.Decimal.IsZero() }

type assetRequest struct {
	Name     string     `json:"name"`
	Amount   jsonAmount `json:"amount"`
	Date     string     `json:"date"`
	Note     string     `json:"note"`
	Category string     `json:"category"`
}

func (req assetRequest) complete() bool {
	return sanitizeInput(req.Name) != "" && !req.Amount.missing() &&
		strings.TrimSpace(req.Date) != "" && sanitizeInput(req.Category) != ""
}

func (req assetRequest) asset(id int64) core.Asset {
	return core.Asset{
		ID:       id,
		Name:     sanitizeInput(req.Name),
		Amount:   req.Amount.Decimal,
		Date:     strings.TrimSpace(req.Date),
		Note:     sanitizeInput(req.Note),
		Category: sanitizeInput(req.Category),
	}
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// monthlyRequest is the body of both spending and revenue writes.
type monthlyRequest struct {
	Amount     jsonAmount `json:"amount"`
	Date       string     `json:"date"`
	IsAdvanced bool       `json:"is_advanced"`
}

func (req monthlyRequest) complete() bool {
	return !req.Amount.missing() && strings.TrimSpace(req.Date) != ""
}

type forecastRequest struct {
	PredictedExpenses []core.PredictedExpense `json:"predictedExpenses"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// sanitizeInput trims s and drops control characters other than tab,
// newline and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
