package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	xhttp "github.com/rezamoss/expense-ledger/pkg/http"
)

const actorHeader = "X-Actor-Id"

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps the error taxonomy onto status codes. Unrecognized
// errors are reported as 500 without leaking internals.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(ctx, 400, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(ctx, 404, err.Error())
	case errors.Is(err, model.ErrOverpayment):
		writeError(ctx, 409, err.Error())
	case errors.Is(err, model.ErrConcurrency):
		writeError(ctx, 503, err.Error())
	default:
		writeError(ctx, 500, "internal error")
	}
}

func actor(ctx *xhttp.RequestCtx) string {
	return string(ctx.Request.Header.Peek(actorHeader))
}

func pathID(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, ok := ctx.UserValue(name).(string)
	if !ok {
		return 0, errors.New("missing path parameter " + name)
	}
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
